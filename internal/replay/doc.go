// Package replay drives a text buffer through a compressed event log on a
// speed-scaled, pausable, cancellable timeline.
//
// The Scheduler is an explicit state machine (Idle, Playing, Paused,
// Finished) whose run loop executes in a single goroutine. Suspension
// happens at exactly three points: the latency wait at the top of each log
// entry, the interval wait between consecutive keystrokes inside a folded
// segment, and the pause gate checked before every primitive operation.
// Because the gate sits inside the segment sub-loop, playback can pause
// mid-segment, not just between entries.
//
// The loop never recurses and never spins: waits go through a Sleeper,
// which tests replace with a recording fake, so timing properties (speed
// scaling, delay capping) are asserted without wall-clock sleeps.
//
// Reduce applies a log instantly with no timeline at all. It is the
// round-trip oracle: replaying any compressor output from an empty buffer
// must reproduce the text the raw events would have produced, up to the
// documented arrow-key and selection-range approximations.
package replay
