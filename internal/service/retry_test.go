package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bazaar-next/internal/config"
)

func TestRetryOnConflictRetriesUntilSuccess(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	calls := 0
	err := RetryOnConflict(context.Background(), policy, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: deadlock detected", ErrConcurrencyConflict)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryOnConflictStopsOnOtherErrors(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), DefaultRetryPolicy(), func() error {
		calls++
		return ErrInsufficientStock
	})
	if !errors.Is(err, ErrInsufficientStock) || calls != 1 {
		t.Fatalf("terminal errors must not retry: calls=%d err=%v", calls, err)
	}
}

func TestRetryOnConflictGivesUp(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	calls := 0
	err := RetryOnConflict(context.Background(), policy, func() error {
		calls++
		return ErrConcurrencyConflict
	})
	if !errors.Is(err, ErrConcurrencyConflict) || calls != 3 {
		t.Fatalf("expected 3 attempts ending in conflict, calls=%d err=%v", calls, err)
	}
}

func TestRetryOnConflictHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Second}
	calls := 0
	err := RetryOnConflict(ctx, policy, func() error {
		calls++
		return ErrConcurrencyConflict
	})
	if !errors.Is(err, ErrConcurrencyConflict) || calls != 1 {
		t.Fatalf("cancelled context should stop retrying: calls=%d err=%v", calls, err)
	}
}

func TestRetryBackoffBounded(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond}
	for attempt := 1; attempt <= 10; attempt++ {
		if d := policy.backoff(attempt); d < 0 || d > policy.MaxDelay {
			t.Fatalf("attempt %d backoff %v out of range", attempt, d)
		}
	}
}

func TestRetryPolicyFromConfig(t *testing.T) {
	policy := RetryPolicyFromConfig(config.RetryConfig{MaxAttempts: 7, BaseDelayMS: 200, MaxDelayMS: 100})
	if policy.MaxAttempts != 7 || policy.BaseDelay != 200*time.Millisecond || policy.MaxDelay != 200*time.Millisecond {
		t.Fatalf("unexpected policy: %+v", policy)
	}
	if got := RetryPolicyFromConfig(config.RetryConfig{}); got != DefaultRetryPolicy() {
		t.Fatalf("empty config should use defaults, got %+v", got)
	}
}

func TestClassifyStorageError(t *testing.T) {
	if classifyStorageError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	plain := errors.New("boom")
	if got := classifyStorageError(plain); got != plain {
		t.Fatalf("unrelated error should pass through, got %v", got)
	}
	if got := classifyStorageError(errors.New("database is locked")); !errors.Is(got, ErrConcurrencyConflict) {
		t.Fatalf("lock error should classify as conflict, got %v", got)
	}
}
