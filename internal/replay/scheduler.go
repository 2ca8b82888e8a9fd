package replay

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/textbuf"
)

// State names a scheduler lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StatePlaying  State = "playing"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

// DefaultSpeed is the playback speed used when none is configured and the
// fallback when a non-positive speed is rejected.
const DefaultSpeed = 1.0

// Progress reports playback position after each applied log entry.
type Progress struct {
	Index int // entries applied so far (1-based after the first)
	Total int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSpeed sets the initial playback speed. Non-positive values are
// ignored, keeping the default.
func WithSpeed(speed float64) Option {
	return func(s *Scheduler) {
		if speed > 0 && !math.IsInf(speed, 1) && !math.IsNaN(speed) {
			s.speed = speed
		}
	}
}

// WithNotify registers a progress callback, invoked from the run loop
// after each applied entry. The callback must not block for long and must
// not call back into the Scheduler.
func WithNotify(fn func(Progress)) Option {
	return func(s *Scheduler) { s.notify = fn }
}

// WithSleeper replaces the wall-clock sleeper. Tests use a recording fake
// to assert timing without real delays.
func WithSleeper(sl Sleeper) Option {
	return func(s *Scheduler) {
		if sl != nil {
			s.sleeper = sl
		}
	}
}

// WithMaxDelay caps every computed wait. Zero means uncapped. Boundaries
// that accept untrusted logs (the server, the CLI) set this so a log full
// of huge latencies cannot pin a replay for hours.
func WithMaxDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxDelay = d
		}
	}
}

// WithLogger attaches a logger for diagnostics. Nil discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scheduler replays one compressed log into its owned text buffer.
//
// All exported methods are safe for concurrent use. The buffer is mutated
// only by the run loop goroutine; observers read it via Snapshot.
type Scheduler struct {
	log      []event.Entry
	sleeper  Sleeper
	notify   func(Progress)
	maxDelay time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	buf       *textbuf.Buffer
	state     State
	speed     float64
	pauseGate chan struct{} // non-nil exactly while paused
	cancel    context.CancelFunc
	loopDone  chan struct{} // closed when the run loop goroutine exits
	done      chan struct{} // closed on transition to Finished
}

// New creates an Idle scheduler over log. The log is read-only input; the
// scheduler never mutates or retains anything beyond the slice header.
func New(log []event.Entry, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:     log,
		sleeper: WallClock{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		buf:     textbuf.New(),
		state:   StateIdle,
		speed:   DefaultSpeed,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins playback. Anything but Idle is a logged no-op: replay is
// strictly one pass per Reset. An empty log transitions straight to
// Finished. The supplied context bounds the whole run; cancelling it is
// equivalent to Reset minus the state cleanup.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		s.logger.Warn("start ignored", "state", string(state))
		return nil
	}
	if len(s.log) == 0 {
		s.state = StateFinished
		done := s.done
		s.mu.Unlock()
		close(done)
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StatePlaying
	s.loopDone = make(chan struct{})
	loopDone := s.loopDone
	s.mu.Unlock()

	go s.run(runCtx, loopDone)
	return nil
}

// Pause suspends playback before the next primitive operation. Pausing
// anything but a playing scheduler is a no-op.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		s.logger.Debug("pause ignored", "state", string(s.state))
		return
	}
	s.state = StatePaused
	s.pauseGate = make(chan struct{})
}

// Resume releases a paused scheduler. A no-op unless paused; the gate is
// closed exactly once.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		s.logger.Debug("resume ignored", "state", string(s.state))
		return
	}
	s.state = StatePlaying
	close(s.pauseGate)
	s.pauseGate = nil
}

// SetSpeed changes playback speed for waits computed after the call;
// in-flight waits complete at their original duration. Non-positive (or
// non-finite) values are rejected and the previous speed is kept.
func (s *Scheduler) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 1) {
		s.logger.Warn("ignoring invalid speed", "speed", speed, "keeping", s.speed)
		return
	}
	s.speed = speed
}

// Reset aborts playback from any state and returns to Idle with an empty
// buffer. It cancels any pending timed wait, releases a pause gate if one
// is outstanding (exactly once, so no waiter is left dangling), and joins
// the run loop before clearing state. Reset is idempotent.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	gate := s.pauseGate
	s.pauseGate = nil
	loopDone := s.loopDone
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if gate != nil {
		close(gate)
	}
	if loopDone != nil {
		<-loopDone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.state = StateIdle
	s.loopDone = nil
	s.done = make(chan struct{})
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Speed returns the effective playback speed.
func (s *Scheduler) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Snapshot returns a read-only view of the reconstructed buffer.
func (s *Scheduler) Snapshot() textbuf.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Snapshot()
}

// Done returns a channel closed when playback finishes. Reset replaces the
// channel, so callers take it per run.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Total returns the log length.
func (s *Scheduler) Total() int {
	return len(s.log)
}

// run is the explicit replay loop. One goroutine, no recursion; every
// suspension is a Sleeper wait or the pause gate.
func (s *Scheduler) run(ctx context.Context, loopDone chan struct{}) {
	defer close(loopDone)

	for i, e := range s.log {
		if err := s.wait(ctx, e.Latency()); err != nil {
			return
		}

		ops := entryOps(e, s.logger)
		interval := int64(0)
		if seg, ok := e.(event.Segment); ok {
			interval = seg.IntervalMS
		}

		for j, o := range ops {
			// The entry's own latency already covered the gap to the first
			// operation; interval waits go between operations only.
			if j > 0 {
				if err := s.wait(ctx, interval); err != nil {
					return
				}
			}
			if !s.gate(ctx) {
				return
			}
			s.mu.Lock()
			o.apply(s.buf)
			s.mu.Unlock()
		}

		if s.notify != nil {
			s.notify(Progress{Index: i + 1, Total: len(s.log)})
		}
	}

	s.mu.Lock()
	s.state = StateFinished
	done := s.done
	s.mu.Unlock()
	close(done)
}

// wait sleeps for ms scaled by the current speed, capped by maxDelay.
// Speed is read when the wait is computed, so SetSpeed affects the next
// wait, never one already in flight.
func (s *Scheduler) wait(ctx context.Context, ms int64) error {
	if !s.gate(ctx) {
		return context.Canceled
	}

	s.mu.Lock()
	speed := s.speed
	s.mu.Unlock()

	d := time.Duration(float64(ms) / speed * float64(time.Millisecond))
	if s.maxDelay > 0 && d > s.maxDelay {
		d = s.maxDelay
	}
	return s.sleeper.Sleep(ctx, d)
}

// gate blocks while paused. Returns false when the run is cancelled,
// either during the pause or before it; a Reset that releases the gate
// also cancels ctx, so the loop stops before touching the buffer again.
func (s *Scheduler) gate(ctx context.Context) bool {
	s.mu.Lock()
	ch := s.pauseGate
	s.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}
	}
	return ctx.Err() == nil
}
