package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
	"tweetetl/pkg/ratelimit"
	"tweetetl/pkg/retry"
)

const userAgent = "tweetetl/1.0"

// RateLimitPolicy bounds how the client waits out HTTP 429 responses
type RateLimitPolicy struct {
	// MaxWait is the longest single pause accepted (0 means no bound)
	MaxWait time.Duration
	// MaxAttempts bounds attempts per request (0 means unlimited)
	MaxAttempts int
	// Sleep defaults to retry.Wait
	Sleep retry.SleepFunc
}

// ClientConfig configures an X API client
type ClientConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	// Limiter paces requests before they are sent; nil disables pacing
	Limiter   ratelimit.Limiter
	RateLimit RateLimitPolicy
	// HTTPClient overrides the default client built from Timeout
	HTTPClient *http.Client
}

// Client talks to the X API v2 with an app-only bearer token
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    ratelimit.Limiter
	policy     RateLimitPolicy
	logger     logger.Logger
	now        func() time.Time
}

// NewClient creates a new X API client
func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	policy := cfg.RateLimit
	if policy.Sleep == nil {
		policy.Sleep = retry.Wait
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.BearerToken,
		limiter:    limiter,
		policy:     policy,
		logger:     log.WithField("component", "twitter"),
		now:        time.Now,
	}
}

// LookupUser resolves a handle to its account
func (c *Client) LookupUser(ctx context.Context, handle string) (*User, error) {
	handle = SanitizeHandle(handle)
	if !IsValidHandle(handle) {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: fmt.Sprintf("invalid handle %q", handle),
		}
	}

	var resp userResponse
	if err := c.getJSON(ctx, "users/by/username", UserLookupURL(c.baseURL, handle), &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		// the lookup endpoint answers 200 with an errors array for unknown handles
		c.logger.WarnWithFields("user not found", map[string]interface{}{
			"handle": handle,
		})
		return nil, apiErrorsToError(resp.Errors, fmt.Sprintf("user %q not found", handle))
	}

	c.logger.DebugWithFields("resolved user", map[string]interface{}{
		"handle":  handle,
		"user_id": resp.Data.ID,
	})
	return resp.Data, nil
}

// UserTweetsPage fetches one timeline page. An empty token requests the
// newest page.
func (c *Client) UserTweetsPage(ctx context.Context, userID string, opts PageOptions, token string) (*TweetsPage, error) {
	var resp tweetsResponse
	if err := c.getJSON(ctx, "users/:id/tweets", UserTweetsURL(c.baseURL, userID, opts, token), &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil && len(resp.Errors) > 0 {
		return nil, apiErrorsToError(resp.Errors, fmt.Sprintf("timeline for user %s unavailable", userID))
	}

	c.logger.DebugWithFields("fetched timeline page", map[string]interface{}{
		"user_id":    userID,
		"count":      len(resp.Data),
		"next_token": resp.Meta.NextToken,
	})

	return &TweetsPage{
		Tweets:    resp.Data,
		NextToken: resp.Meta.NextToken,
	}, nil
}

// getJSON performs a GET and decodes the body into target, waiting out rate
// limits according to the client's policy
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, target interface{}) error {
	cfg := retry.RateLimitConfig(c.policy.MaxAttempts, c.policy.MaxWait, c.logger)
	cfg.Sleep = c.policy.Sleep
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.LogRateLimit(c.logger, endpoint, delay, attempt)
	}

	return retry.Do(ctx, func(ctx context.Context) error {
		return c.getJSONOnce(ctx, endpoint, rawURL, target)
	}, cfg)
}

func (c *Client) getJSONOnce(ctx context.Context, endpoint, rawURL string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.WithError(err).WarnWithFields("HTTP request failed", map[string]interface{}{
			"endpoint": endpoint,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"endpoint":     endpoint,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}
	return nil
}

// checkResponseStatus maps non-2xx responses onto the error taxonomy
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := errs.FromStatus(resp.StatusCode, problemMessage(body, resp.Status))
	if apiErr.Type == errs.ErrorTypeRateLimit {
		apiErr.RetryAfter = c.rateLimitWait(resp.Header)
	}
	return apiErr
}

// rateLimitWait derives the pause from x-rate-limit-reset (epoch seconds,
// plus one second of slack) or Retry-After. Zero means no usable hint.
func (c *Client) rateLimitWait(h http.Header) time.Duration {
	if reset := h.Get("x-rate-limit-reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			wait := time.Unix(epoch, 0).Sub(c.now()) + time.Second
			if wait < time.Second {
				wait = time.Second
			}
			return wait
		}
	}

	if ra := h.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
		if t, err := http.ParseTime(ra); err == nil {
			if d := t.Sub(c.now()); d > 0 {
				return d
			}
		}
	}
	return 0
}

func problemMessage(body []byte, fallback string) string {
	var p problemResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return fallback
	}
	switch {
	case p.Detail != "":
		return p.Detail
	case p.Title != "":
		return p.Title
	case len(p.Errors) > 0 && p.Errors[0].Detail != "":
		return p.Errors[0].Detail
	default:
		return fallback
	}
}

func apiErrorsToError(apiErrors []APIError, fallback string) error {
	if len(apiErrors) == 0 {
		return &errs.Error{Type: errs.ErrorTypeParsing, Message: fallback + ": empty response"}
	}

	first := apiErrors[0]
	msg := first.Detail
	if msg == "" {
		msg = fallback
	}

	t := errs.ErrorTypeUnknown
	code := http.StatusOK
	switch {
	case strings.Contains(first.Type, "resource-not-found") || strings.HasPrefix(first.Title, "Not Found"):
		t, code = errs.ErrorTypeNotFound, http.StatusNotFound
	case strings.Contains(first.Type, "not-authorized") || strings.Contains(first.Title, "Authorization"):
		t, code = errs.ErrorTypeAuth, http.StatusForbidden
	}
	return &errs.Error{Type: t, Message: msg, Code: code}
}
