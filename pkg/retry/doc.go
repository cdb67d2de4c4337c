// Package retry runs operations again after transient failures.
//
// A pause is taken from the error itself when it carries a server hint
// (errors.Error.RetryAfter, set from X API rate limit headers) and from the
// configured BackoffStrategy otherwise. MaxWait bounds a single pause so a
// run fails fast instead of blocking past its schedule window.
//
//	cfg := retry.RateLimitConfig(0, 16*time.Minute, log)
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		return client.getOnce(ctx, url, &out)
//	}, cfg)
//
// Sleep is injectable so tests can record pauses without waiting.
package retry
