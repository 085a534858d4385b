package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultLimitPerSec int64 = 10
	waitStep                 = 10 * time.Millisecond
	waitMax                  = 100 * time.Millisecond
	windowSeconds            = 1
	rateLimitKeyPrefix       = "domain-alerts:ratelimit"
)

// allowScript counts sends in a one-second window keyed by channel type.
var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window limiter shared by every process sending
// through the same Redis, so concurrent runs share one provider quota.
type RateLimiter struct {
	client      *goredis.Client
	limitPerSec int64
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(client *goredis.Client, limitPerSec int) (*RateLimiter, error) {
	return newRateLimiter(client, int64(limitPerSec), time.Now, sleepWithContext)
}

func newRateLimiter(
	client *goredis.Client,
	limitPerSec int64,
	nowFn func() time.Time,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*RateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	return &RateLimiter{
		client:      client,
		limitPerSec: limitPerSec,
		now:         nowFn,
		sleep:       sleepFn,
	}, nil
}

func (r *RateLimiter) Allow(ctx context.Context, channelType domain.ChannelType) (bool, error) {
	if !channelType.IsValid() {
		return false, fmt.Errorf("%w: invalid channel type %q", domain.ErrValidation, channelType)
	}

	key := fmt.Sprintf("%s:%s:%d", rateLimitKeyPrefix, channelType, r.now().UTC().Unix())
	result, err := allowScript.Run(ctx, r.client, []string{key}, r.limitPerSec, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	return result == 1, nil
}

// Wait blocks until a send slot is free in the current window.
func (r *RateLimiter) Wait(ctx context.Context, channelType domain.ChannelType) error {
	delay := waitStep
	for {
		allowed, err := r.Allow(ctx, channelType)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
		delay = min(delay+waitStep, waitMax)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
