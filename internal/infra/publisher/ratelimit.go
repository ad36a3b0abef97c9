package publisher

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket guarding one platform's API.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing burst requests immediately, then
// refilling at requestsPerSecond.
//
//	limiter := NewRateLimiter(0.5, 3) // Discord webhooks: 30 req/min
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Allow blocks until a token is available or the context is canceled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
