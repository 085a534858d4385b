package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"golang.org/x/time/rate"
)

const defaultLimitPerSec = 10

var _ RateLimiter = (*LocalRateLimiter)(nil)

// LocalRateLimiter is an in-process token bucket per channel type, used when
// no Redis is configured.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[domain.ChannelType]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewLocalRateLimiter(limitPerSec int) *LocalRateLimiter {
	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	return &LocalRateLimiter{
		limiters: make(map[domain.ChannelType]*rate.Limiter),
		limit:    rate.Limit(limitPerSec),
		burst:    limitPerSec,
	}
}

func (l *LocalRateLimiter) limiter(channelType domain.ChannelType) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[channelType]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[channelType] = limiter
	}
	return limiter
}

func (l *LocalRateLimiter) Allow(_ context.Context, channelType domain.ChannelType) (bool, error) {
	if !channelType.IsValid() {
		return false, fmt.Errorf("%w: invalid channel type %q", domain.ErrValidation, channelType)
	}
	return l.limiter(channelType).Allow(), nil
}

func (l *LocalRateLimiter) Wait(ctx context.Context, channelType domain.ChannelType) error {
	if !channelType.IsValid() {
		return fmt.Errorf("%w: invalid channel type %q", domain.ErrValidation, channelType)
	}
	return l.limiter(channelType).Wait(ctx)
}
