package compress

import (
	"math"
	"strings"

	"github.com/typetrace/typetrace/internal/event"
)

// Compression policy constants.
const (
	// MinSegmentLength is the minimum number of keystrokes in a run before
	// it is worth folding into one COMPRESSED entry.
	MinSegmentLength = 3

	// MaxIntervalMS is the pause threshold. A gap of this size or larger
	// between consecutive keystrokes ends the run; the pause then shows up
	// as latency on the next emitted entry instead of being averaged away
	// inside the run.
	MaxIntervalMS = 1600
)

// run is the extractor's result: the longest foldable run starting at a
// given position and its statistics.
type run struct {
	length         int    // raw events consumed
	encoded        string // characters with specials escape-folded
	meanIntervalMS int64  // rounded mean of intra-run gaps; 0 for length 1
}

// foldEvent returns the character representation of a raw event inside a
// run: the literal key for a KeyPress, the escape character for a foldable
// SpecialPress. ok is false for everything else (pastes, selections,
// arrows), which terminates a run without consuming the event.
func foldEvent(e event.Raw) (string, bool) {
	switch v := e.(type) {
	case event.KeyPress:
		return v.Key, true
	case event.SpecialPress:
		if r, ok := v.Key.Fold(); ok {
			return string(r), true
		}
	}
	return "", false
}

// extract computes the longest foldable run starting at start.
//
// Events join the run while they fold (foldEvent) and while the gap to the
// next event stays under MaxIntervalMS; a gap at or over the threshold
// ends the run inclusive of the current event. Runs shorter than
// MinSegmentLength are rejected and the caller falls back to single-event
// emission.
func extract(events []event.Raw, start int) (run, bool) {
	var sb strings.Builder
	var gapSum float64

	end := start // one past the last included event
	for end < len(events) {
		folded, ok := foldEvent(events[end])
		if !ok {
			break
		}
		if end > start {
			gapSum += events[end].Time() - events[end-1].Time()
		}
		sb.WriteString(folded)
		end++

		if end < len(events) && events[end].Time()-events[end-1].Time() >= MaxIntervalMS {
			break
		}
	}

	length := end - start
	if length < MinSegmentLength {
		return run{}, false
	}

	return run{
		length:         length,
		encoded:        sb.String(),
		meanIntervalMS: roundMS(gapSum / float64(length-1)),
	}, true
}

// roundMS rounds a millisecond quantity to the nearest integer. Negative
// and NaN inputs clamp to 0; capture timestamps are contractually
// monotonic, so these only arise from damaged input.
func roundMS(ms float64) int64 {
	if ms <= 0 || math.IsNaN(ms) {
		return 0
	}
	return int64(math.Round(ms))
}
