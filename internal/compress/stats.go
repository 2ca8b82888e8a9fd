package compress

import (
	"unicode/utf8"

	"github.com/typetrace/typetrace/internal/event"
)

// LogStats summarizes a compressed log for reporting (the CLI's
// compress --stats output).
type LogStats struct {
	Entries    int     `json:"entries"`
	Segments   int     `json:"segments"`
	Keys       int     `json:"raw_keys"`
	Specials   int     `json:"raw_specials"`
	Pastes     int     `json:"raw_pastes"`
	Selections int     `json:"selection_changes"`
	FoldedKeys int     `json:"folded_keys"` // keystrokes carried inside segments
	Operations int     `json:"operations"`  // total primitive operations the log decodes to
	Ratio      float64 `json:"ratio"`       // entries / operations; 1.0 means nothing folded
}

// Stats computes summary statistics for a compressed log.
func Stats(entries []event.Entry) LogStats {
	s := LogStats{Entries: len(entries)}
	for _, e := range entries {
		switch v := e.(type) {
		case event.Segment:
			s.Segments++
			n := utf8.RuneCountInString(v.String)
			s.FoldedKeys += n
			s.Operations += n
		case event.SingleKey:
			s.Keys++
			s.Operations++
		case event.SingleSpecial:
			s.Specials++
			s.Operations++
		case event.PasteEntry:
			s.Pastes++
			s.Operations++
		case event.SelectionEntry:
			s.Selections++
			s.Operations++
		}
	}
	if s.Operations > 0 {
		s.Ratio = float64(s.Entries) / float64(s.Operations)
	}
	return s
}
