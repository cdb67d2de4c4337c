package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing API requests
type Limiter interface {
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// TokenBucket is a Limiter backed by golang.org/x/time/rate
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows requestsPerMinute sustained requests with bursts of
// up to burst. A non-positive requestsPerMinute disables pacing.
func NewTokenBucket(requestsPerMinute, burst int) Limiter {
	if requestsPerMinute <= 0 {
		return Unlimited{}
	}
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Every(time.Minute / time.Duration(requestsPerMinute))
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

// Unlimited never blocks
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
