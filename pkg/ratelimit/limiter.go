package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for throttling requests against the target site
type Limiter interface {
	// Wait blocks until the next request may be issued
	Wait(ctx context.Context) error
}

// FixedDelay suspends every caller for the same interval. It is used after
// each navigation and never adapts to server responses.
type FixedDelay struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFixedDelay creates a limiter that waits delay on every call
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay, sleep: sleepContext}
}

// Delay returns the configured interval
func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

// Wait sleeps for the configured delay
func (f *FixedDelay) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return nil
	}
	return f.sleep(ctx, f.delay)
}

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

// Recorder is a Limiter that never sleeps and counts how often it was asked
// to wait. Tests use it in place of FixedDelay.
type Recorder struct {
	mu    sync.Mutex
	calls int
}

// Wait records the call and returns immediately
func (r *Recorder) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

// Calls returns the number of Wait calls seen so far
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
