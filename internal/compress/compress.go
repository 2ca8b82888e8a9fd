package compress

import (
	"io"
	"log/slog"

	"github.com/typetrace/typetrace/internal/event"
)

// Compressor converts raw capture streams into compact event logs. The
// zero value is usable; NewCompressor attaches a logger for the
// unknown-event diagnostics.
type Compressor struct {
	logger *slog.Logger
}

// NewCompressor creates a Compressor. A nil logger discards diagnostics.
func NewCompressor(logger *slog.Logger) *Compressor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compressor{logger: logger}
}

// Compress is shorthand for NewCompressor(nil).Compress.
func Compress(events []event.Raw) []event.Entry {
	return NewCompressor(nil).Compress(events)
}

// Compress walks the raw stream and emits the compact log.
//
// At each keystroke position it attempts run extraction; success emits one
// COMPRESSED entry covering the whole run, failure emits the single
// keystroke as RAW_KEY or RAW_SPECIAL. Pastes and selections always emit
// directly. Each emitted entry's latency is the rounded gap from the
// previous raw event; the first entry reports 0.
//
// Anything outside the known event set is skipped with a diagnostic and
// does not advance the latency anchor. Compression never fails: output
// length is at most input length and temporal order is preserved.
func (c *Compressor) Compress(events []event.Raw) []event.Entry {
	entries := make([]event.Entry, 0, len(events))

	i := 0
	anchor := -1 // index of the previous processed raw event
	for i < len(events) {
		e := events[i]
		latency := int64(0)
		if anchor >= 0 {
			latency = roundMS(e.Time() - events[anchor].Time())
		}

		switch v := e.(type) {
		case event.KeyPress, event.SpecialPress:
			if _, foldable := foldEvent(e); foldable {
				if r, ok := extract(events, i); ok {
					entries = append(entries, event.Segment{
						String:     r.encoded,
						LatencyMS:  latency,
						IntervalMS: r.meanIntervalMS,
					})
					i += r.length
					anchor = i - 1
					continue
				}
			}
			switch k := v.(type) {
			case event.KeyPress:
				entries = append(entries, event.SingleKey{Key: k.Key, LatencyMS: latency})
			case event.SpecialPress:
				if !k.Key.Known() {
					c.logger.Warn("skipping unknown special key", "key", string(k.Key), "index", i)
					i++
					continue
				}
				entries = append(entries, event.SingleSpecial{Key: k.Key, LatencyMS: latency})
			}
		case event.Paste:
			entries = append(entries, event.PasteEntry{Content: v.Content, LatencyMS: latency})
		case event.Selection:
			entries = append(entries, event.SelectionEntry{Start: v.Start, End: v.End, LatencyMS: latency})
		default:
			c.logger.Warn("skipping unknown raw event", "type", eventTypeName(e), "index", i)
			i++
			continue
		}
		anchor = i
		i++
	}

	return entries
}

func eventTypeName(e event.Raw) string {
	switch e.(type) {
	case event.KeyPress:
		return "key"
	case event.SpecialPress:
		return "special"
	case event.Paste:
		return "paste"
	case event.Selection:
		return "selection"
	}
	if e == nil {
		return "nil"
	}
	return "unknown"
}
