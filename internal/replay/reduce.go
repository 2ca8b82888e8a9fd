package replay

import (
	"io"
	"log/slog"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/textbuf"
)

// Reduce applies a compressed log instantly, with no timeline, and returns
// the final buffer state. Decoding semantics are identical to timed
// playback: same escapes, same clamping, same unknown-entry tolerance.
// Used for submission verification and round-trip tests.
func Reduce(log []event.Entry) textbuf.Snapshot {
	return ReduceWithLogger(log, nil)
}

// ReduceWithLogger is Reduce with diagnostics routed to logger.
func ReduceWithLogger(log []event.Entry, logger *slog.Logger) textbuf.Snapshot {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := textbuf.New()
	for _, e := range log {
		for _, o := range entryOps(e, logger) {
			o.apply(b)
		}
	}
	return b.Snapshot()
}

// ApplyRaw applies raw capture events directly to a buffer: the
// capture-side semantics the compressed log approximates. It is the oracle
// for the round-trip property - Reduce over compressor output must match
// ApplyRaw over the compressor's input.
func ApplyRaw(b *textbuf.Buffer, events []event.Raw) {
	for _, e := range events {
		switch v := e.(type) {
		case event.KeyPress:
			b.InsertString(v.Key)
		case event.SpecialPress:
			switch v.Key {
			case event.KeyBackspace:
				b.Backspace()
			case event.KeyDelete:
				b.Delete()
			case event.KeyEnter:
				b.Newline()
			case event.KeyArrowLeft:
				b.MoveCursor(-1)
			case event.KeyArrowRight:
				b.MoveCursor(1)
			case event.KeyArrowUp, event.KeyArrowDown:
				// No-op, same as replay.
			}
		case event.Paste:
			b.InsertString(v.Content)
		case event.Selection:
			b.SetCursor(v.Start)
		}
	}
}
