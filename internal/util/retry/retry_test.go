package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestWithExponentialBackoff_Success(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	ctx := context.Background()
	err := WithExponentialBackoff(ctx, operation)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	ctx := context.Background()
	err := WithExponentialBackoff(ctx, operation, WithInitialDelay(10*time.Millisecond))

	if err != nil {
		t.Errorf("Expected no error after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("persistent error")
	}

	ctx := context.Background()
	maxRetries := 3
	err := WithExponentialBackoff(ctx, operation,
		WithMaxRetries(maxRetries),
		WithInitialDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected error after max retries, got nil")
	}
	// MaxRetries is the number of retries after the first attempt
	// So total attempts = maxRetries + 1
	expectedAttempts := maxRetries + 1
	if attempts != expectedAttempts {
		t.Errorf("Expected %d attempts (1 + %d retries), got: %d", expectedAttempts, maxRetries, attempts)
	}
}

func TestWithExponentialBackoff_ContextCancellation(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := WithExponentialBackoff(ctx, operation, WithInitialDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected error due to context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before context check, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_ContextTimeout(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := WithExponentialBackoff(ctx, operation,
		WithInitialDelay(100*time.Millisecond),
		WithMaxRetries(10),
		WithoutJitter())

	if err == nil {
		t.Error("Expected error due to context timeout, got nil")
	}
	// Should timeout after first retry attempt (waiting 100ms but timeout is 50ms)
	if attempts > 2 {
		t.Errorf("Expected at most 2 attempts before timeout, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_FatalError(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return Fatal(errors.New("fatal error"))
	}

	ctx := context.Background()
	err := WithExponentialBackoff(ctx, operation, WithInitialDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected fatal error, got nil")
	}
	if !IsFatal(err) {
		t.Errorf("Expected fatal error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retries for fatal error), got: %d", attempts)
	}
}

func TestWithExponentialBackoff_BackoffTiming(t *testing.T) {
	t.Parallel()
	attempts := 0
	var delays []time.Duration
	lastTime := time.Now()

	operation := func() error {
		attempts++
		now := time.Now()
		if attempts > 1 {
			delays = append(delays, now.Sub(lastTime))
		}
		lastTime = now
		if attempts < 4 {
			return errors.New("error")
		}
		return nil
	}

	ctx := context.Background()
	initialDelay := 50 * time.Millisecond
	err := WithExponentialBackoff(ctx, operation,
		WithInitialDelay(initialDelay),
		WithMaxDelay(200*time.Millisecond),
		WithoutJitter())

	if err != nil {
		t.Errorf("Expected success after retries, got: %v", err)
	}

	// We should have 3 delays (between 4 attempts)
	if len(delays) != 3 {
		t.Errorf("Expected 3 delays, got: %d", len(delays))
	}

	// Check that delays are exponentially increasing
	// Allow 20ms tolerance for timing variations
	tolerance := 20 * time.Millisecond

	expectedDelays := []time.Duration{
		50 * time.Millisecond,  // Initial
		100 * time.Millisecond, // 2x
		200 * time.Millisecond, // 2x (capped at max)
	}

	for i, delay := range delays {
		expected := expectedDelays[i]
		if delay < expected-tolerance || delay > expected+tolerance {
			t.Errorf("Delay %d: expected ~%v, got %v", i+1, expected, delay)
		}
	}
}

func TestWithExponentialBackoff_JitteredDelaysStayBounded(t *testing.T) {
	t.Parallel()
	attempts := 0
	var delays []time.Duration
	lastTime := time.Now()

	operation := func() error {
		attempts++
		now := time.Now()
		if attempts > 1 {
			delays = append(delays, now.Sub(lastTime))
		}
		lastTime = now
		if attempts < 4 {
			return errors.New("error")
		}
		return nil
	}

	ctx := context.Background()
	err := WithExponentialBackoff(ctx, operation,
		WithInitialDelay(40*time.Millisecond),
		WithMaxDelay(160*time.Millisecond))

	if err != nil {
		t.Errorf("Expected success after retries, got: %v", err)
	}

	// Jittered delays are drawn from [delay/2, delay); the first step must
	// be at least 20ms and no step may exceed its nominal delay plus
	// scheduling tolerance.
	nominal := []time.Duration{40 * time.Millisecond, 80 * time.Millisecond, 160 * time.Millisecond}
	tolerance := 20 * time.Millisecond
	for i, delay := range delays {
		if delay < nominal[i]/2 {
			t.Errorf("Delay %d below jitter floor: %v < %v", i+1, delay, nominal[i]/2)
		}
		if delay > nominal[i]+tolerance {
			t.Errorf("Delay %d above nominal: %v > %v", i+1, delay, nominal[i])
		}
	}
}

func TestWithExponentialBackoff_OnRetryHook(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient %d", attempts)
		}
		return nil
	}

	var notified []int
	ctx := context.Background()
	err := WithExponentialBackoff(ctx, operation,
		WithInitialDelay(time.Millisecond),
		WithOnRetry(func(attempt int, err error) {
			if err == nil {
				t.Error("OnRetry called without an error")
			}
			notified = append(notified, attempt)
		}))

	if err != nil {
		t.Errorf("Expected success after retries, got: %v", err)
	}
	// The third attempt succeeds, so only the first two notify.
	if len(notified) != 2 || notified[0] != 1 || notified[1] != 2 {
		t.Errorf("Expected notifications for attempts [1 2], got: %v", notified)
	}
}

func TestWithExponentialBackoff_OnRetrySkippedForFatal(t *testing.T) {
	t.Parallel()
	called := false
	operation := func() error {
		return Fatal(errors.New("bad input"))
	}

	err := WithExponentialBackoff(context.Background(), operation,
		WithOnRetry(func(int, error) { called = true }))

	if err == nil {
		t.Error("Expected fatal error, got nil")
	}
	if called {
		t.Error("OnRetry must not fire for fatal errors")
	}
}

func TestFatalClassification(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("bad request")

	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil stays nil", Fatal(nil), false},
		{"plain error is retryable", errors.New("transient"), false},
		{"marked error is fatal", Fatal(sentinel), true},
		{"fmt-wrapped fatal survives", fmt.Errorf("probe: %w", Fatal(sentinel)), true},
		{"joined fatal survives", errors.Join(Fatal(sentinel), errors.New("more context")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
		})
	}
}

func TestFatalPreservesCause(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("access denied")
	marked := Fatal(sentinel)

	if marked.Error() != sentinel.Error() {
		t.Errorf("message changed: %q != %q", marked.Error(), sentinel.Error())
	}
	if !errors.Is(marked, sentinel) {
		t.Error("errors.Is should reach the cause through FatalError")
	}
	if !errors.Is(fmt.Errorf("context: %w", marked), sentinel) {
		t.Error("errors.Is should reach the cause through double wrapping")
	}
}
