// Package ratelimit paces requests to the X API on the client side.
//
// TokenBucket wraps golang.org/x/time/rate so the extractor spreads its page
// requests out instead of burning through the 15 minute window. Server side
// 429 responses are handled separately by the retry package.
//
//	limiter := ratelimit.NewTokenBucket(60, 10)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
