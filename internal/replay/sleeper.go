package replay

import (
	"context"
	"time"
)

// Sleeper abstracts the timed waits in the replay loop so tests can run a
// deterministic timeline instead of the wall clock.
type Sleeper interface {
	// Sleep blocks for d or until ctx is cancelled, whichever comes first.
	// It returns ctx.Err() on cancellation, nil otherwise.
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock is the production Sleeper.
type WallClock struct{}

// Sleep waits on a timer, aborting early on context cancellation.
func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still honor an already-cancelled context.
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
