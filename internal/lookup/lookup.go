package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"golang.org/x/time/rate"
)

// ErrLookupFailed wraps every resolution failure returned by this package.
var ErrLookupFailed = errors.New("lookup failed")

// Resolver fetches registration data for a domain name. A returned error
// means no snapshot could be obtained.
type Resolver interface {
	Lookup(ctx context.Context, name string) (*domain.LookupSnapshot, error)
}

// RateLimitedResolver throttles calls to the wrapped resolver.
type RateLimitedResolver struct {
	next    Resolver
	limiter *rate.Limiter
}

// NewRateLimitedResolver allows perSecond lookups with the given burst.
// A non-positive rate disables throttling.
func NewRateLimitedResolver(next Resolver, perSecond float64, burst int) *RateLimitedResolver {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimitedResolver{
		next:    next,
		limiter: rate.NewLimiter(limit, max(1, burst)),
	}
}

func (r *RateLimitedResolver) Lookup(ctx context.Context, name string) (*domain.LookupSnapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait for %s: %v", ErrLookupFailed, name, err)
	}
	return r.next.Lookup(ctx, name)
}
