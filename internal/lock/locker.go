package lock

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// Unlock releases a held key.
type Unlock func(ctx context.Context) error

// Locker is a non-blocking per-key mutual exclusion. TryLock returns
// domain.ErrLocked when another holder owns the key. Keys expire after ttl
// so a crashed holder cannot block a key forever.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}

var _ Locker = (*LocalLocker)(nil)

// LocalLocker serializes keys within one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]heldKey
	now  func() time.Time
	seq  uint64
}

type heldKey struct {
	token     uint64
	expiresAt time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held: make(map[string]heldKey),
		now:  time.Now,
	}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return nil, domain.ErrLocked
	}

	l.seq++
	token := l.seq
	l.held[key] = heldKey{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		if h, ok := l.held[key]; ok && h.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
