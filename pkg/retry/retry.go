package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
)

// ErrWaitTooLong is returned when the next pause would exceed Config.MaxWait.
var ErrWaitTooLong = errors.New("required wait exceeds limit")

// Operation is a function that performs an operation that might need retrying
type Operation func(ctx context.Context) error

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff is used when the error carries no server hint
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried (default errors.IsRateLimit)
	RetryIf func(error) bool
	// OnRetry is called before each pause
	OnRetry func(attempt int, err error, delay time.Duration)
	// MaxWait caps a single pause (0 means no cap)
	MaxWait time.Duration
	// Sleep defaults to Wait
	Sleep SleepFunc
	// Logger for retry attempts
	Logger logger.Logger
}

// RateLimitConfig retries only rate limit errors, honoring the server's
// reset hint and refusing pauses longer than maxWait.
func RateLimitConfig(maxAttempts int, maxWait time.Duration, log logger.Logger) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     DefaultRateLimitBackoff(),
		RetryIf:     errs.IsRateLimit,
		MaxWait:     maxWait,
		Sleep:       Wait,
		Logger:      log,
	}
}

// RetryAfter returns the server supplied wait carried by err, if any
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

// Do executes an operation with retry logic
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = RateLimitConfig(0, 0, nil)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = errs.IsRateLimit
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Wait
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if !retryIf(err) {
			return err
		}

		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
				"attempts":   attempt,
				"last_error": err.Error(),
			})
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
		}

		delay, hinted := RetryAfter(err)
		if !hinted && cfg.Backoff != nil {
			delay = cfg.Backoff.NextDelay(attempt)
		}

		if cfg.MaxWait > 0 && delay > cfg.MaxWait {
			log.WarnWithFields("required wait exceeds limit, giving up", map[string]interface{}{
				"attempt":  attempt,
				"delay":    delay.String(),
				"max_wait": cfg.MaxWait.String(),
			})
			return fmt.Errorf("%w (need %s, limit %s): %w", ErrWaitTooLong, delay, cfg.MaxWait, err)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": cfg.MaxAttempts,
		})

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}
