package replay

import (
	"log/slog"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/textbuf"
)

// opKind enumerates the primitive buffer operations a log entry decodes to.
type opKind int

const (
	opInsert opKind = iota
	opBackspace
	opDelete
	opNewline
	opMoveLeft
	opMoveRight
	opSetCursor
	opNone // documented no-ops (ArrowUp / ArrowDown)
)

// op is one primitive buffer operation.
type op struct {
	kind opKind
	text string // opInsert payload
	pos  int    // opSetCursor target
}

// apply mutates the buffer. Total: every op is a clamped buffer primitive.
func (o op) apply(b *textbuf.Buffer) {
	switch o.kind {
	case opInsert:
		b.InsertString(o.text)
	case opBackspace:
		b.Backspace()
	case opDelete:
		b.Delete()
	case opNewline:
		b.Newline()
	case opMoveLeft:
		b.MoveCursor(-1)
	case opMoveRight:
		b.MoveCursor(1)
	case opSetCursor:
		b.SetCursor(o.pos)
	case opNone:
	}
}

// decodeSegment expands a folded segment string into primitive operations.
// Escapes decode per the wire contract (\b backspace, \n newline, \x7F
// delete); any other control character is unexpected on the wire and is
// skipped with a diagnostic rather than inserted into the text.
func decodeSegment(s string, logger *slog.Logger) []op {
	ops := make([]op, 0, len(s))
	for _, r := range s {
		switch {
		case r == event.EscapeBackspace:
			ops = append(ops, op{kind: opBackspace})
		case r == event.EscapeEnter:
			ops = append(ops, op{kind: opNewline})
		case r == event.EscapeDelete:
			ops = append(ops, op{kind: opDelete})
		case r < 0x20:
			logger.Warn("skipping unexpected control character in segment", "rune", int(r))
		default:
			ops = append(ops, op{kind: opInsert, text: string(r)})
		}
	}
	return ops
}

// entryOps decodes one log entry into its primitive operations. Unknown
// entry variants and unknown special key names decode to nothing, with a
// diagnostic; replay then continues with the next entry.
func entryOps(e event.Entry, logger *slog.Logger) []op {
	switch v := e.(type) {
	case event.Segment:
		return decodeSegment(v.String, logger)
	case event.SingleKey:
		return []op{{kind: opInsert, text: v.Key}}
	case event.SingleSpecial:
		switch v.Key {
		case event.KeyBackspace:
			return []op{{kind: opBackspace}}
		case event.KeyDelete:
			return []op{{kind: opDelete}}
		case event.KeyEnter:
			return []op{{kind: opNewline}}
		case event.KeyArrowLeft:
			return []op{{kind: opMoveLeft}}
		case event.KeyArrowRight:
			return []op{{kind: opMoveRight}}
		case event.KeyArrowUp, event.KeyArrowDown:
			// Vertical navigation is a documented no-op.
			return []op{{kind: opNone}}
		}
		logger.Warn("skipping unknown special key during replay", "key", string(v.Key))
		return nil
	case event.PasteEntry:
		return []op{{kind: opInsert, text: v.Content}}
	case event.SelectionEntry:
		// Only the collapse point is reconstructed; End is a rendering
		// concern outside the buffer contract.
		return []op{{kind: opSetCursor, pos: v.Start}}
	}
	logger.Warn("skipping unknown log entry during replay", "tag", event.Tag(e))
	return nil
}
