// Package twitter is a small X API v2 client for reading a user's timeline.
//
// It authenticates with an app-only bearer token, resolves handles to
// account ids and walks the user tweets endpoint page by page:
//
//	client := twitter.NewClient(twitter.ClientConfig{
//		BearerToken: token,
//		Timeout:     30 * time.Second,
//		Limiter:     ratelimit.NewTokenBucket(60, 10),
//		RateLimit:   twitter.RateLimitPolicy{MaxWait: 16 * time.Minute},
//	}, log)
//
//	user, err := client.LookupUser(ctx, "wtfruchss")
//	for tweet, err := range twitter.NewPaginator(client, user.ID, twitter.DefaultPageOptions()).Flatten(ctx, 50) {
//		...
//	}
//
// HTTP 429 responses are waited out using the x-rate-limit-reset header and
// the request is repeated. RateLimitPolicy bounds that wait. Errors are
// reported as *errors.Error from tweetetl/pkg/errors.
package twitter
