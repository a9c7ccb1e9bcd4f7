package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Wait blocks until the next request is allowed to proceed
	Wait(ctx context.Context) error
	// Reset clears the pacing state
	Reset()
}

// Interval paces sequential requests by enforcing a fixed gap between
// consecutive Wait calls. With a single request in flight at a time
// this is the whole rate-limiting strategy: no bursts, no adaptive
// backoff, just fixed spacing.
type Interval struct {
	gap  time.Duration
	last time.Time
	mu   sync.Mutex

	// now and sleep are swappable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInterval creates a fixed-interval pacer. The first Wait returns
// immediately; every later Wait blocks until gap has elapsed since the
// previous one.
func NewInterval(gap time.Duration) *Interval {
	return &Interval{
		gap:   gap,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Wait blocks until the configured interval has elapsed since the
// previous Wait, or until the context is cancelled
func (i *Interval) Wait(ctx context.Context) error {
	i.mu.Lock()
	var delay time.Duration
	if !i.last.IsZero() {
		elapsed := i.now().Sub(i.last)
		if elapsed < i.gap {
			delay = i.gap - elapsed
		}
	}
	i.mu.Unlock()

	if delay > 0 {
		if err := i.sleep(ctx, delay); err != nil {
			return err
		}
	}

	i.mu.Lock()
	i.last = i.now()
	i.mu.Unlock()
	return nil
}

// Reset clears the pacing state so the next Wait returns immediately
func (i *Interval) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.last = time.Time{}
}

// sleepContext sleeps for d or until ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
