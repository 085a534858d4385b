package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/lock"
	goredis "github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "domain-alerts:lock"

// releaseScript deletes the key only while it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ lock.Locker = (*KeyLocker)(nil)

// KeyLocker is a SET NX PX try-lock shared across processes.
type KeyLocker struct {
	client   *goredis.Client
	newToken func() string
}

func NewKeyLocker(client *goredis.Client) (*KeyLocker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &KeyLocker{client: client, newToken: uuid.NewString}, nil
}

func (l *KeyLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (lock.Unlock, error) {
	redisKey := lockKeyPrefix + ":" + key
	token := l.newToken()

	err := l.client.SetArgs(ctx, redisKey, token, goredis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
