// Package testutil provides deterministic helpers shared by tests:
// sleepers that replace wall-clock waits so timing behavior is asserted
// without real delays.
package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeSleeper satisfies the replay Sleeper contract without sleeping. It
// records every requested duration and returns immediately, so a whole
// timed replay runs in microseconds while its schedule stays observable.
//
// Thread-safe: the replay loop records from its own goroutine while the
// test reads.
type FakeSleeper struct {
	mu        sync.Mutex
	durations []time.Duration
}

// NewFakeSleeper creates an empty FakeSleeper.
func NewFakeSleeper() *FakeSleeper {
	return &FakeSleeper{}
}

// Sleep records d and returns immediately, honoring prior cancellation.
func (s *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations = append(s.durations, d)
	return nil
}

// Durations returns a copy of all recorded durations in request order.
func (s *FakeSleeper) Durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.durations))
	copy(out, s.durations)
	return out
}

// Total returns the sum of recorded durations: the simulated replay time.
func (s *FakeSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum time.Duration
	for _, d := range s.durations {
		sum += d
	}
	return sum
}

// StepSleeper runs the replay loop in lockstep with a test. Each Sleep
// call sends its duration on Requests and then blocks until the test sends
// on Release (or the context is cancelled). Both channels are unbuffered:
// the loop cannot get ahead of the test.
type StepSleeper struct {
	Requests chan time.Duration
	Release  chan struct{}
}

// NewStepSleeper creates a lockstep sleeper.
func NewStepSleeper() *StepSleeper {
	return &StepSleeper{
		Requests: make(chan time.Duration),
		Release:  make(chan struct{}),
	}
}

// Sleep hands the duration to the test and waits to be released.
func (s *StepSleeper) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case s.Requests <- d:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-s.Release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
