// Package event defines the two ends of the typetrace codec: the raw
// capture events produced by an input recorder and the compressed log
// entries that are persisted, transmitted, and replayed.
//
// # Raw events
//
// Raw is a sealed interface over the four capture-time variants: KeyPress
// (single printable character), SpecialPress (a named non-printing key),
// Paste (full pasted string), and Selection (cursor/selection offsets).
// Every raw event carries a monotonic timestamp in floating-point
// milliseconds. Raw events are ephemeral: produced once by capture,
// consumed once by the compressor, then discarded.
//
// # Compressed entries
//
// Entry is a sealed interface over the five wire variants: Segment
// (a folded run of keystrokes), SingleKey, SingleSpecial, PasteEntry, and
// SelectionEntry. Entries are immutable once produced and serialize to the
// field-exact JSON wire format (type tags COMPRESSED, RAW_KEY, RAW_SPECIAL,
// RAW_PASTE, SELECTION_CHANGE).
//
// # Escape folding
//
// Inside a Segment's string, three special keys are folded as control
// characters: Backspace as '\b' (0x08), Enter as '\n', and Delete as
// '\x7F'. No other control characters are ever produced; decoders treat
// unexpected ones as non-fatal anomalies and skip them.
//
// # Canonical form
//
// MarshalCanonical and LogHash provide a deterministic serialization
// (sorted keys, no HTML escaping, NFC-normalized strings) and a
// domain-separated SHA-256 over it. The hash identifies a log's content
// independently of field order or whitespace in any particular encoding.
package event
