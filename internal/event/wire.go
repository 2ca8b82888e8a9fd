package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Raw capture wire type tags (producer format, lowercase).
const (
	captureKey       = "key"
	captureSpecial   = "special"
	capturePaste     = "paste"
	captureSelection = "selection"
)

type segmentJSON struct {
	Type       string `json:"type"`
	String     string `json:"string"`
	LatencyMS  int64  `json:"latency_ms"`
	IntervalMS int64  `json:"interval_ms"`
}

type singleKeyJSON struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	LatencyMS int64  `json:"latency_ms"`
}

type pasteJSON struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	LatencyMS int64  `json:"latency_ms"`
}

type selectionJSON struct {
	Type      string `json:"type"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	LatencyMS int64  `json:"latency_ms"`
}

// MarshalEntry serializes a single entry to its wire JSON object.
func MarshalEntry(e Entry) ([]byte, error) {
	switch v := e.(type) {
	case Segment:
		return json.Marshal(segmentJSON{
			Type:       TypeCompressed,
			String:     v.String,
			LatencyMS:  v.LatencyMS,
			IntervalMS: v.IntervalMS,
		})
	case SingleKey:
		return json.Marshal(singleKeyJSON{
			Type:      TypeRawKey,
			Key:       v.Key,
			LatencyMS: v.LatencyMS,
		})
	case SingleSpecial:
		return json.Marshal(singleKeyJSON{
			Type:      TypeRawSpecial,
			Key:       string(v.Key),
			LatencyMS: v.LatencyMS,
		})
	case PasteEntry:
		return json.Marshal(pasteJSON{
			Type:      TypeRawPaste,
			Content:   v.Content,
			LatencyMS: v.LatencyMS,
		})
	case SelectionEntry:
		return json.Marshal(selectionJSON{
			Type:      TypeSelectionChange,
			Start:     v.Start,
			End:       v.End,
			LatencyMS: v.LatencyMS,
		})
	}
	return nil, fmt.Errorf("marshal entry: unsupported type %T", e)
}

// MarshalLog serializes a full log to a JSON array of wire entries.
// A nil or empty log serializes to "[]", never "null".
func MarshalLog(log []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range log {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalEntry(e)
		if err != nil {
			return nil, fmt.Errorf("marshal log[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalLogIndent is MarshalLog with two-space indentation.
func MarshalLogIndent(log []Entry) ([]byte, error) {
	compact, err := MarshalLog(log)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("marshal log: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalLog decodes a JSON array of wire entries.
//
// Entries with an unknown type tag are skipped, not errors: the tags are
// returned in skipped so the caller can log a diagnostic per anomaly. A
// malformed document (not a JSON array, or an element that fails to decode
// under its declared tag) is an error - that is a fail-fast input problem,
// not a tolerable anomaly.
func UnmarshalLog(data []byte) (entries []Entry, skipped []string, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("unmarshal log: %w", err)
	}

	entries = make([]Entry, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, nil, fmt.Errorf("unmarshal log[%d]: %w", i, err)
		}

		switch tag.Type {
		case TypeCompressed:
			var v segmentJSON
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, nil, fmt.Errorf("unmarshal log[%d] (%s): %w", i, tag.Type, err)
			}
			entries = append(entries, Segment{String: v.String, LatencyMS: v.LatencyMS, IntervalMS: v.IntervalMS})
		case TypeRawKey:
			var v singleKeyJSON
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, nil, fmt.Errorf("unmarshal log[%d] (%s): %w", i, tag.Type, err)
			}
			entries = append(entries, SingleKey{Key: v.Key, LatencyMS: v.LatencyMS})
		case TypeRawSpecial:
			var v singleKeyJSON
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, nil, fmt.Errorf("unmarshal log[%d] (%s): %w", i, tag.Type, err)
			}
			entries = append(entries, SingleSpecial{Key: SpecialKey(v.Key), LatencyMS: v.LatencyMS})
		case TypeRawPaste:
			var v pasteJSON
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, nil, fmt.Errorf("unmarshal log[%d] (%s): %w", i, tag.Type, err)
			}
			entries = append(entries, PasteEntry{Content: v.Content, LatencyMS: v.LatencyMS})
		case TypeSelectionChange:
			var v selectionJSON
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, nil, fmt.Errorf("unmarshal log[%d] (%s): %w", i, tag.Type, err)
			}
			entries = append(entries, SelectionEntry{Start: v.Start, End: v.End, LatencyMS: v.LatencyMS})
		default:
			skipped = append(skipped, tag.Type)
		}
	}
	return entries, skipped, nil
}

type captureJSON struct {
	Type    string  `json:"type"`
	Key     string  `json:"key,omitempty"`
	Content string  `json:"content,omitempty"`
	Start   int     `json:"start,omitempty"`
	End     int     `json:"end,omitempty"`
	TimeMS  float64 `json:"time_ms"`
}

// UnmarshalCapture decodes the producer's raw capture format: a JSON array
// of {"type":"key"|"special"|"paste"|"selection", ..., "time_ms":...}
// objects. Unknown type tags and special events with key names outside the
// fixed set are skipped and reported in skipped; malformed JSON and
// non-finite or decreasing timestamps are errors.
func UnmarshalCapture(data []byte) (events []Raw, skipped []string, err error) {
	var raws []captureJSON
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("unmarshal capture: %w", err)
	}

	events = make([]Raw, 0, len(raws))
	prev := math.Inf(-1)
	for i, c := range raws {
		if math.IsNaN(c.TimeMS) || math.IsInf(c.TimeMS, 0) {
			return nil, nil, fmt.Errorf("unmarshal capture[%d]: time_ms is not finite", i)
		}
		if c.TimeMS < prev {
			return nil, nil, fmt.Errorf("unmarshal capture[%d]: time_ms %v decreases below %v", i, c.TimeMS, prev)
		}

		switch c.Type {
		case captureKey:
			if c.Key == "" {
				return nil, nil, fmt.Errorf("unmarshal capture[%d]: key event with empty key", i)
			}
			events = append(events, KeyPress{Key: c.Key, At: c.TimeMS})
		case captureSpecial:
			k := SpecialKey(c.Key)
			if !k.Known() {
				skipped = append(skipped, c.Type+"/"+c.Key)
				continue
			}
			events = append(events, SpecialPress{Key: k, At: c.TimeMS})
		case capturePaste:
			events = append(events, Paste{Content: c.Content, At: c.TimeMS})
		case captureSelection:
			events = append(events, Selection{Start: c.Start, End: c.End, At: c.TimeMS})
		default:
			skipped = append(skipped, c.Type)
			continue
		}
		prev = c.TimeMS
	}
	return events, skipped, nil
}
