package harness

import (
	"fmt"
	"unicode/utf8"

	"github.com/typetrace/typetrace/internal/compress"
	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/replay"
	"github.com/typetrace/typetrace/internal/textbuf"
)

// Result holds everything a scenario execution produced.
type Result struct {
	// Entries is the compressed log the compressor emitted.
	Entries []event.Entry

	// Reduced is the final buffer state from replaying Entries.
	Reduced textbuf.Snapshot

	// Oracle is the final buffer state from applying the raw capture
	// events directly, bypassing compression.
	Oracle textbuf.Snapshot
}

// Run executes a scenario: compress the capture stream, reduce the
// compressed log, and apply the raw events as the oracle.
func Run(s *Scenario) *Result {
	events := s.rawEvents()
	entries := compress.Compress(events)

	var buf textbuf.Buffer
	replay.ApplyRaw(&buf, events)

	return &Result{
		Entries: entries,
		Reduced: replay.Reduce(entries),
		Oracle:  buf.Snapshot(),
	}
}

// Verify runs a scenario and checks its expectations plus the structural
// invariants every compressed log must satisfy. The first violated check
// is returned as an error; nil means the scenario passed.
func Verify(s *Scenario) (*Result, error) {
	result := Run(s)

	if err := checkInvariants(result.Entries); err != nil {
		return result, err
	}

	if s.Expect.Entries != nil {
		if err := checkTagSequence(result.Entries, s.Expect.Entries); err != nil {
			return result, err
		}
	}

	// Round-trip property: the compressed log must replay to the same
	// state as the raw capture it came from.
	if result.Reduced != result.Oracle {
		return result, fmt.Errorf("round-trip mismatch: reduced %+v, oracle %+v", result.Reduced, result.Oracle)
	}

	if s.Expect.FinalText != nil && result.Reduced.Text != *s.Expect.FinalText {
		return result, fmt.Errorf("final text %q, expected %q", result.Reduced.Text, *s.Expect.FinalText)
	}
	if s.Expect.Cursor != nil && result.Reduced.Cursor != *s.Expect.Cursor {
		return result, fmt.Errorf("cursor %d, expected %d", result.Reduced.Cursor, *s.Expect.Cursor)
	}
	return result, nil
}

// checkInvariants verifies the structural rules that hold for any
// compressed log, regardless of scenario expectations.
func checkInvariants(entries []event.Entry) error {
	for i, e := range entries {
		if i == 0 && e.Latency() != 0 {
			return fmt.Errorf("entries[0]: first latency is %d, must be 0", e.Latency())
		}
		if e.Latency() < 0 {
			return fmt.Errorf("entries[%d]: negative latency %d", i, e.Latency())
		}

		seg, ok := e.(event.Segment)
		if !ok {
			continue
		}
		if seg.IntervalMS < 0 {
			return fmt.Errorf("entries[%d]: negative interval %d", i, seg.IntervalMS)
		}
		if n := utf8.RuneCountInString(seg.String); n < compress.MinSegmentLength {
			return fmt.Errorf("entries[%d]: segment of %d keystrokes, minimum is %d", i, n, compress.MinSegmentLength)
		}
		// Only the backspace, newline, and delete escapes may appear below
		// the printable range.
		for _, r := range seg.String {
			if r < 0x20 && r != '\b' && r != '\n' {
				return fmt.Errorf("entries[%d]: segment holds non-foldable control character %q", i, r)
			}
		}
	}
	return nil
}

// checkTagSequence verifies the log's wire-tag sequence.
func checkTagSequence(entries []event.Entry, want []string) error {
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = event.Tag(e)
	}
	if len(got) != len(want) {
		return fmt.Errorf("tag sequence %v, expected %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("entries[%d]: tag %s, expected %s (sequence %v)", i, got[i], want[i], got)
		}
	}
	return nil
}
