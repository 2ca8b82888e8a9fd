package event

// SpecialKey names a non-printing key in the fixed capture set.
type SpecialKey string

const (
	KeyBackspace  SpecialKey = "Backspace"
	KeyDelete     SpecialKey = "Delete"
	KeyEnter      SpecialKey = "Enter"
	KeyArrowLeft  SpecialKey = "ArrowLeft"
	KeyArrowRight SpecialKey = "ArrowRight"
	KeyArrowUp    SpecialKey = "ArrowUp"
	KeyArrowDown  SpecialKey = "ArrowDown"
)

// Escape characters used to fold special keys into a Segment string.
const (
	EscapeBackspace rune = '\b'   // 0x08
	EscapeEnter     rune = '\n'   // 0x0A
	EscapeDelete    rune = '\x7f' // 0x7F
)

// Known reports whether k is one of the fixed capture key names.
func (k SpecialKey) Known() bool {
	switch k {
	case KeyBackspace, KeyDelete, KeyEnter,
		KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown:
		return true
	}
	return false
}

// Fold returns the escape character for a foldable special key.
// Arrow keys (and unknown names) are not foldable.
func (k SpecialKey) Fold() (rune, bool) {
	switch k {
	case KeyBackspace:
		return EscapeBackspace, true
	case KeyEnter:
		return EscapeEnter, true
	case KeyDelete:
		return EscapeDelete, true
	}
	return 0, false
}

// Raw is a sealed interface over capture-time input events.
// Only KeyPress, SpecialPress, Paste, and Selection implement it.
type Raw interface {
	raw() // sealed
	// Time returns the capture timestamp in milliseconds. Timestamps are
	// monotonic and non-decreasing within a session.
	Time() float64
}

// KeyPress records a single printable character.
type KeyPress struct {
	Key string
	At  float64
}

func (KeyPress) raw()            {}
func (e KeyPress) Time() float64 { return e.At }

// SpecialPress records a named non-printing key.
type SpecialPress struct {
	Key SpecialKey
	At  float64
}

func (SpecialPress) raw()            {}
func (e SpecialPress) Time() float64 { return e.At }

// Paste records the full content of a paste insertion.
type Paste struct {
	Content string
	At      float64
}

func (Paste) raw()            {}
func (e Paste) Time() float64 { return e.At }

// Selection records a selection change as (start, end) rune offsets into
// the in-progress text. Replay reconstruction uses only start.
type Selection struct {
	Start int
	End   int
	At    float64
}

func (Selection) raw()            {}
func (e Selection) Time() float64 { return e.At }
