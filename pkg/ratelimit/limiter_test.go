package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives an Interval without real sleeping
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Unix(1700000000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return ctx.Err()
}

func newTestInterval(gap time.Duration) (*Interval, *fakeClock) {
	clock := newFakeClock()
	interval := NewInterval(gap)
	interval.now = clock.now
	interval.sleep = clock.sleep
	return interval, clock
}

func TestIntervalFirstWaitImmediate(t *testing.T) {
	interval, clock := newTestInterval(time.Second)

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("Expected no sleep on first wait, got %v", clock.slept)
	}
}

func TestIntervalEnforcesGap(t *testing.T) {
	interval, clock := newTestInterval(time.Second)

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Immediate second call must wait the full gap
	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != time.Second {
		t.Errorf("Expected a single 1s sleep, got %v", clock.slept)
	}
}

func TestIntervalPartialGap(t *testing.T) {
	interval, clock := newTestInterval(time.Second)

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Some of the gap has already passed, only the remainder is slept
	clock.current = clock.current.Add(300 * time.Millisecond)
	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != 700*time.Millisecond {
		t.Errorf("Expected a 700ms sleep, got %v", clock.slept)
	}
}

func TestIntervalNoWaitAfterGapElapsed(t *testing.T) {
	interval, clock := newTestInterval(time.Second)

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clock.current = clock.current.Add(2 * time.Second)
	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("Expected no sleep after gap elapsed, got %v", clock.slept)
	}
}

func TestIntervalReset(t *testing.T) {
	interval, clock := newTestInterval(time.Second)

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	interval.Reset()

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("Expected no sleep after reset, got %v", clock.slept)
	}
}

func TestIntervalCancelledContext(t *testing.T) {
	interval, _ := newTestInterval(time.Second)

	if err := interval.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := interval.Wait(ctx); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestIntervalZeroGap(t *testing.T) {
	interval, clock := newTestInterval(0)

	for i := 0; i < 3; i++ {
		if err := interval.Wait(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if len(clock.slept) != 0 {
		t.Errorf("Expected no sleeps with zero gap, got %v", clock.slept)
	}
}
