package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "bilifollow/pkg/errors"
	"bilifollow/pkg/logger"
)

// recordSleeps returns a sleep function that records delays without waiting
func recordSleeps(slept *[]time.Duration) func(ctx context.Context, delay time.Duration) error {
	return func(ctx context.Context, delay time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		*slept = append(*slept, delay)
		return nil
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 10 * time.Second}

	for attempt := 1; attempt <= 5; attempt++ {
		if delay := backoff.NextDelay(attempt); delay != 10*time.Second {
			t.Errorf("Attempt %d: expected 10s, got %v", attempt, delay)
		}
	}

	if delay := backoff.NextDelay(0); delay != 0 {
		t.Errorf("Expected zero delay for attempt 0, got %v", delay)
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	var slept []time.Duration
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Sleep:       recordSleeps(&slept),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	// One sleep before each retry, none after success
	if len(slept) != 2 {
		t.Errorf("Expected 2 sleeps, got %d", len(slept))
	}
	for _, d := range slept {
		if d != 10*time.Second {
			t.Errorf("Expected 10s delay, got %v", d)
		}
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("persistent error")
	}

	var slept []time.Duration
	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Sleep:       recordSleeps(&slept),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	// No delay after the final attempt
	if len(slept) != 2 {
		t.Errorf("Expected 2 sleeps, got %d", len(slept))
	}
}

func TestRetryPreservesWrappedError(t *testing.T) {
	apiErr := errs.FromCode(errs.CodeNotFound, "user not found")
	op := func() error {
		return apiErr
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Sleep:       recordSleeps(&[]time.Duration{}),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected error")
	}
	// The original typed error must be reachable through the wrapper
	if !errs.IsNotFound(err) {
		t.Errorf("Expected wrapped error to still match -404, got %v", err)
	}
}

func TestRetryNonRetryableError(t *testing.T) {
	attempts := 0
	terminal := errs.FromCode(errs.CodeAlreadyFollowing, "already following")
	op := func() error {
		attempts++
		return terminal
	}

	var slept []time.Duration
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     func(err error) bool { return !errs.IsAlreadyFollowing(err) },
		Context:     context.Background(),
		Sleep:       recordSleeps(&slept),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, error(terminal)) && !errs.IsAlreadyFollowing(err) {
		t.Errorf("Expected the terminal error back unwrapped, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
	if len(slept) != 0 {
		t.Errorf("Expected no sleeps, got %d", len(slept))
	}
}

func TestRetryCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	op := func() error {
		attempts++
		return errors.New("keeps failing")
	}

	cfg := &Config{
		MaxAttempts: 10,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     func(err error) bool { return true },
		Context:     ctx,
		Sleep: func(ctx context.Context, delay time.Duration) error {
			cancel()
			return ctx.Err()
		},
		Logger: logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	if DefaultRetryIf(nil) {
		t.Error("Expected nil error not to be retried")
	}
	if !DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeNetwork}) {
		t.Error("Expected network error to be retried")
	}
	if DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeAuth}) {
		t.Error("Expected auth error not to be retried")
	}
	if DefaultRetryIf(context.Canceled) {
		t.Error("Expected context.Canceled not to be retried")
	}
	if !DefaultRetryIf(errors.New("mystery")) {
		t.Error("Expected unknown error to be retried")
	}
}

func TestWaitRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	// Zero delay returns immediately even with a live context
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Expected nil for zero delay, got %v", err)
	}
}
