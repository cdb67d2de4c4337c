package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "tweetetl/pkg/errors"
)

type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, test := range tests {
		if got := backoff.NextDelay(test.attempt); got != test.expected {
			t.Errorf("attempt %d: expected %v, got %v", test.attempt, test.expected, got)
		}
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		if delay < 140*time.Millisecond || delay > 260*time.Millisecond {
			t.Fatalf("delay %v outside jitter bounds", delay)
		}
	}
}

func TestDefaultRateLimitBackoff(t *testing.T) {
	backoff := DefaultRateLimitBackoff()
	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(1)
		if delay < 27*time.Second || delay > 33*time.Second {
			t.Fatalf("first pause %v outside 30s +/- 10%%", delay)
		}
		if capped := backoff.NextDelay(20); capped > 15*time.Minute+90*time.Second {
			t.Fatalf("pause %v beyond the window cap", capped)
		}
	}
}

func TestDoSuccessFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoUsesRetryAfterHint(t *testing.T) {
	rec := &recordingSleep{}
	cfg := RateLimitConfig(0, 16*time.Minute, nil)
	cfg.Sleep = rec.sleep

	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &errs.Error{Type: errs.ErrorTypeRateLimit, Code: 429, RetryAfter: 90 * time.Second}
		}
		return nil
	}, cfg)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(rec.delays) != 1 || rec.delays[0] != 90*time.Second {
		t.Errorf("expected a single 90s pause, got %v", rec.delays)
	}
}

func TestDoFailsFastBeyondMaxWait(t *testing.T) {
	rec := &recordingSleep{}
	cfg := RateLimitConfig(0, time.Minute, nil)
	cfg.Sleep = rec.sleep

	rateErr := &errs.Error{Type: errs.ErrorTypeRateLimit, Code: 429, RetryAfter: 10 * time.Minute}
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return rateErr
	}, cfg)

	if !errors.Is(err, ErrWaitTooLong) {
		t.Fatalf("expected ErrWaitTooLong, got %v", err)
	}
	if !errs.IsRateLimit(err) {
		t.Errorf("rate limit cause must stay visible, got %v", err)
	}
	if calls != 1 || len(rec.delays) != 0 {
		t.Errorf("expected no pause and one call, got calls=%d delays=%v", calls, rec.delays)
	}
}

func TestRateLimitConfigIgnoresOtherErrors(t *testing.T) {
	rec := &recordingSleep{}
	cfg := RateLimitConfig(0, time.Minute, nil)
	cfg.Sleep = rec.sleep

	serverErr := errs.FromStatus(503, "unavailable")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return serverErr
	}, cfg)

	if !errors.Is(err, serverErr) {
		t.Fatalf("expected server error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoMaxAttempts(t *testing.T) {
	rec := &recordingSleep{}
	cfg := RateLimitConfig(3, 0, nil)
	cfg.Sleep = rec.sleep

	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errs.FromStatus(429, "Too Many Requests")
	}, cfg)

	if err == nil {
		t.Fatal("expected error")
	}
	if !errs.IsRateLimit(err) {
		t.Errorf("expected the rate limit cause to be kept, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(rec.delays) != 2 {
		t.Errorf("expected 2 pauses, got %d", len(rec.delays))
	}
}

func TestDoRetriesOnlyRateLimitsByDefault(t *testing.T) {
	rec := &recordingSleep{}
	cfg := &Config{Sleep: rec.sleep}

	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errs.FromStatus(500, "boom")
	}, cfg)

	if errs.TypeOf(err) != errs.ErrorTypeServerError {
		t.Fatalf("expected the server error back, got %v", err)
	}
	if calls != 1 || len(rec.delays) != 0 {
		t.Errorf("expected one call and no pause, got calls=%d delays=%v", calls, rec.delays)
	}
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{
		Backoff: &ExponentialBackoff{BaseDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1},
		RetryIf: func(error) bool { return true },
	}
	err := Do(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	}, cfg)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
