package ratelimit

import (
	"context"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// RateLimiter controls outbound send throughput per channel type.
type RateLimiter interface {
	Allow(ctx context.Context, channelType domain.ChannelType) (bool, error)
	Wait(ctx context.Context, channelType domain.ChannelType) error
}
