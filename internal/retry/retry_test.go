package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		BackoffFactor:   2.0,
		RetryableErrors: []string{"connection refused", "timeout"},
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDoRetriesRetryableError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return errors.New("status 401: unauthorized")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not retry, got %d calls", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	cfg := fastConfig()
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("timeout")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if calls != cfg.MaxRetries+1 {
		t.Fatalf("expected %d calls, got %d", cfg.MaxRetries+1, calls)
	}
}

func TestDoRateLimitAlwaysRetryable(t *testing.T) {
	cfg := &Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, BackoffFactor: 2}
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return &RateLimitError{}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("rate limit not retried: err=%v calls=%d", err, calls)
	}
}

func TestDoContextCancelledDuringRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxRetries:      3,
		InitialDelay:    time.Second,
		MaxDelay:        time.Second,
		BackoffFactor:   2,
		RetryableErrors: []string{"timeout"},
	}

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, cfg, func() error {
		calls++
		return errors.New("timeout")
	})
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestCalculateDelayBackoff(t *testing.T) {
	cfg := &Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{10, time.Second}, // clamped at MaxDelay
	}
	for _, tc := range cases {
		if got := cfg.calculateDelay(tc.attempt, errors.New("x")); got != tc.want {
			t.Errorf("attempt %d: got %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestCalculateDelayHonorsRetryAfter(t *testing.T) {
	cfg := &Config{InitialDelay: time.Millisecond, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	got := cfg.calculateDelay(0, &RateLimitError{RetryAfter: 2 * time.Second})
	if got != 2*time.Second {
		t.Fatalf("expected server-requested delay, got %s", got)
	}

	// but never beyond the cap
	got = cfg.calculateDelay(0, fmt.Errorf("wrapped: %w", &RateLimitError{RetryAfter: time.Minute}))
	if got != 5*time.Second {
		t.Fatalf("expected clamped delay, got %s", got)
	}
}

func TestRetryAfterFromResponse(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if got := RetryAfterFromResponse(resp); got != 0 {
		t.Fatalf("expected 0 without header, got %s", got)
	}

	resp.Header.Set("Retry-After", "2.5")
	if got := RetryAfterFromResponse(resp); got != 2500*time.Millisecond {
		t.Fatalf("got %s", got)
	}

	resp.Header.Set("Retry-After", "not-a-number")
	if got := RetryAfterFromResponse(resp); got != 0 {
		t.Fatalf("expected 0 for unparseable header, got %s", got)
	}

	if got := RetryAfterFromResponse(nil); got != 0 {
		t.Fatalf("expected 0 for nil response, got %s", got)
	}
}
