package event

// Wire type tags for compressed log entries.
const (
	TypeCompressed      = "COMPRESSED"
	TypeRawKey          = "RAW_KEY"
	TypeRawSpecial      = "RAW_SPECIAL"
	TypeRawPaste        = "RAW_PASTE"
	TypeSelectionChange = "SELECTION_CHANGE"
)

// Entry is a sealed interface over compressed log entries.
// Only Segment, SingleKey, SingleSpecial, PasteEntry, and SelectionEntry
// implement it. Entries are immutable once produced: the compressor creates
// them, storage and transport carry them unchanged, and the replay
// scheduler consumes them read-only.
type Entry interface {
	entry() // sealed
	// Latency returns the rounded gap in milliseconds since the previous
	// emitted entry. The first entry of a log always reports 0.
	Latency() int64
}

// Segment is a folded run of at least three keystrokes. String holds the
// concatenated characters with special keys escape-folded; IntervalMS is
// the rounded mean gap between consecutive keystrokes inside the run.
type Segment struct {
	String     string
	LatencyMS  int64
	IntervalMS int64
}

func (Segment) entry()           {}
func (e Segment) Latency() int64 { return e.LatencyMS }

// SingleKey is one printable keystroke that did not join a run.
type SingleKey struct {
	Key       string
	LatencyMS int64
}

func (SingleKey) entry()           {}
func (e SingleKey) Latency() int64 { return e.LatencyMS }

// SingleSpecial is one special keystroke emitted on its own: always for
// arrow keys, and for foldable keys whose run fell below the minimum
// length.
type SingleSpecial struct {
	Key       SpecialKey
	LatencyMS int64
}

func (SingleSpecial) entry()           {}
func (e SingleSpecial) Latency() int64 { return e.LatencyMS }

// PasteEntry carries a paste insertion verbatim.
type PasteEntry struct {
	Content   string
	LatencyMS int64
}

func (PasteEntry) entry()           {}
func (e PasteEntry) Latency() int64 { return e.LatencyMS }

// SelectionEntry carries a selection change. Replay applies only Start as
// the new cursor position; End is preserved for consumers that render
// selection ranges.
type SelectionEntry struct {
	Start     int
	End       int
	LatencyMS int64
}

func (SelectionEntry) entry()           {}
func (e SelectionEntry) Latency() int64 { return e.LatencyMS }

// Tag returns the wire type tag for an entry.
func Tag(e Entry) string {
	switch e.(type) {
	case Segment:
		return TypeCompressed
	case SingleKey:
		return TypeRawKey
	case SingleSpecial:
		return TypeRawSpecial
	case PasteEntry:
		return TypeRawPaste
	case SelectionEntry:
		return TypeSelectionChange
	}
	return ""
}
