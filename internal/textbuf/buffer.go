// Package textbuf implements the text buffer state machine that replay
// drives: a rune slice plus a single cursor position, mutated through
// primitive edit operations.
//
// Every operation is total. Out-of-range cursor movement clamps, backspace
// at the start and delete at the end are no-ops, and the invariant
// 0 <= cursor <= len(text) holds after every call. The buffer is owned
// exclusively by the scheduler that mutates it; anything else observes it
// through Snapshot.
package textbuf

// Snapshot is a read-only view of a buffer at one point in time.
type Snapshot struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// Buffer holds the reconstructed text and cursor. The zero value is an
// empty buffer with the cursor at 0, ready to use.
//
// Buffer is not safe for concurrent use. It has exactly one writer (the
// replay scheduler that owns it); concurrent observers must go through a
// Snapshot taken at a point the owner chooses.
type Buffer struct {
	runes  []rune
	cursor int
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// InsertRune splices r at the cursor and advances the cursor past it.
func (b *Buffer) InsertRune(r rune) {
	b.runes = append(b.runes, 0)
	copy(b.runes[b.cursor+1:], b.runes[b.cursor:])
	b.runes[b.cursor] = r
	b.cursor++
}

// InsertString splices s at the cursor and advances the cursor past it.
// An empty string is a no-op.
func (b *Buffer) InsertString(s string) {
	if s == "" {
		return
	}
	ins := []rune(s)
	b.runes = append(b.runes, make([]rune, len(ins))...)
	copy(b.runes[b.cursor+len(ins):], b.runes[b.cursor:])
	copy(b.runes[b.cursor:], ins)
	b.cursor += len(ins)
}

// Backspace removes the rune before the cursor. No-op at position 0.
func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
	b.cursor--
}

// Delete removes the rune at the cursor; the cursor does not move.
// No-op at the end of the buffer.
func (b *Buffer) Delete() {
	if b.cursor >= len(b.runes) {
		return
	}
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
}

// Newline inserts '\n' at the cursor.
func (b *Buffer) Newline() {
	b.InsertRune('\n')
}

// MoveCursor shifts the cursor by delta, clamped to [0, len].
func (b *Buffer) MoveCursor(delta int) {
	b.SetCursor(b.cursor + delta)
}

// SetCursor places the cursor at pos, clamped to [0, len].
func (b *Buffer) SetCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.runes) {
		pos = len(b.runes)
	}
	b.cursor = pos
}

// Reset clears the buffer back to empty with the cursor at 0.
func (b *Buffer) Reset() {
	b.runes = b.runes[:0]
	b.cursor = 0
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	return string(b.runes)
}

// Cursor returns the cursor position in runes.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// Snapshot returns a read-only copy of the current state.
func (b *Buffer) Snapshot() Snapshot {
	return Snapshot{Text: string(b.runes), Cursor: b.cursor}
}
