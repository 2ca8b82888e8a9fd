// Package compress turns a raw capture stream into the compact event log.
//
// The compressor walks the raw events left to right. At each keystroke it
// asks the segment extractor for the longest foldable run starting there:
// consecutive printable keys and escape-foldable specials (Backspace,
// Enter, Delete) with every inter-key gap below the pause threshold. Runs
// of at least three keystrokes collapse into one COMPRESSED entry carrying
// the concatenated (escape-folded) characters and the mean inter-key gap;
// shorter runs fall back to single-event entries. Pastes, selection
// changes, and arrow keys always pass through as their own entries.
//
// Timing is preserved two ways: each emitted entry's latency is the
// rounded gap from the previous raw event, and a COMPRESSED entry's
// interval is the rounded mean of the gaps inside its run. A pause of
// MaxIntervalMS or longer never hides inside a run; it surfaces as latency
// on whatever entry follows.
//
// Compression is a pure function of its input: no side effects, total over
// any well-formed stream, empty in empty out.
package compress
