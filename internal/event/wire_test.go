package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalEntry_FieldExact(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "segment",
			entry: Segment{String: "abc", LatencyMS: 0, IntervalMS: 100},
			want:  `{"type":"COMPRESSED","string":"abc","latency_ms":0,"interval_ms":100}`,
		},
		{
			name:  "single key",
			entry: SingleKey{Key: "a", LatencyMS: 2000},
			want:  `{"type":"RAW_KEY","key":"a","latency_ms":2000}`,
		},
		{
			name:  "single special",
			entry: SingleSpecial{Key: KeyArrowLeft, LatencyMS: 40},
			want:  `{"type":"RAW_SPECIAL","key":"ArrowLeft","latency_ms":40}`,
		},
		{
			name:  "paste",
			entry: PasteEntry{Content: "hello world", LatencyMS: 12},
			want:  `{"type":"RAW_PASTE","content":"hello world","latency_ms":12}`,
		},
		{
			name:  "selection",
			entry: SelectionEntry{Start: 1, End: 4, LatencyMS: 7},
			want:  `{"type":"SELECTION_CHANGE","start":1,"end":4,"latency_ms":7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalEntry(tt.entry)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestMarshalEntry_EscapedSegmentString(t *testing.T) {
	got, err := MarshalEntry(Segment{String: "hello\b", LatencyMS: 0, IntervalMS: 120})
	require.NoError(t, err)

	// The backspace escape must survive a JSON round trip.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, "hello\b", decoded["string"])
}

func TestMarshalLog_EmptyIsArray(t *testing.T) {
	got, err := MarshalLog(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestUnmarshalLog_RoundTrip(t *testing.T) {
	log := []Entry{
		Segment{String: "hello\b", LatencyMS: 0, IntervalMS: 120},
		SingleSpecial{Key: KeyArrowLeft, LatencyMS: 300},
		PasteEntry{Content: "X", LatencyMS: 50},
		SelectionEntry{Start: 2, End: 5, LatencyMS: 10},
		SingleKey{Key: "z", LatencyMS: 1700},
	}

	data, err := MarshalLog(log)
	require.NoError(t, err)

	decoded, skipped, err := UnmarshalLog(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, log, decoded)
}

func TestUnmarshalLog_SkipsUnknownTags(t *testing.T) {
	data := []byte(`[
		{"type":"RAW_KEY","key":"a","latency_ms":0},
		{"type":"MOUSE_MOVE","x":3,"y":4,"latency_ms":10},
		{"type":"RAW_KEY","key":"b","latency_ms":20}
	]`)

	entries, skipped, err := UnmarshalLog(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"MOUSE_MOVE"}, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, SingleKey{Key: "a", LatencyMS: 0}, entries[0])
	assert.Equal(t, SingleKey{Key: "b", LatencyMS: 20}, entries[1])
}

func TestUnmarshalLog_MalformedIsError(t *testing.T) {
	_, _, err := UnmarshalLog([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestUnmarshalCapture(t *testing.T) {
	data := []byte(`[
		{"type":"key","key":"h","time_ms":0},
		{"type":"special","key":"Backspace","time_ms":120},
		{"type":"paste","content":"abc","time_ms":400},
		{"type":"selection","start":1,"end":3,"time_ms":900}
	]`)

	events, skipped, err := UnmarshalCapture(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, events, 4)
	assert.Equal(t, KeyPress{Key: "h", At: 0}, events[0])
	assert.Equal(t, SpecialPress{Key: KeyBackspace, At: 120}, events[1])
	assert.Equal(t, Paste{Content: "abc", At: 400}, events[2])
	assert.Equal(t, Selection{Start: 1, End: 3, At: 900}, events[3])
}

func TestUnmarshalCapture_SkipsUnknownTypesAndKeys(t *testing.T) {
	data := []byte(`[
		{"type":"key","key":"a","time_ms":0},
		{"type":"gesture","time_ms":50},
		{"type":"special","key":"F13","time_ms":80},
		{"type":"key","key":"b","time_ms":100}
	]`)

	events, skipped, err := UnmarshalCapture(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"gesture", "special/F13"}, skipped)
	require.Len(t, events, 2)
}

func TestUnmarshalCapture_DecreasingTimestampIsError(t *testing.T) {
	data := []byte(`[
		{"type":"key","key":"a","time_ms":100},
		{"type":"key","key":"b","time_ms":50}
	]`)

	_, _, err := UnmarshalCapture(data)
	assert.Error(t, err)
}

func TestSpecialKey_Fold(t *testing.T) {
	tests := []struct {
		key      SpecialKey
		escape   rune
		foldable bool
	}{
		{KeyBackspace, '\b', true},
		{KeyEnter, '\n', true},
		{KeyDelete, '\x7f', true},
		{KeyArrowLeft, 0, false},
		{KeyArrowRight, 0, false},
		{KeyArrowUp, 0, false},
		{KeyArrowDown, 0, false},
		{SpecialKey("F13"), 0, false},
	}

	for _, tt := range tests {
		r, ok := tt.key.Fold()
		assert.Equal(t, tt.foldable, ok, "key %s", tt.key)
		assert.Equal(t, tt.escape, r, "key %s", tt.key)
	}
}

func TestTag(t *testing.T) {
	assert.Equal(t, TypeCompressed, Tag(Segment{}))
	assert.Equal(t, TypeRawKey, Tag(SingleKey{}))
	assert.Equal(t, TypeRawSpecial, Tag(SingleSpecial{}))
	assert.Equal(t, TypeRawPaste, Tag(PasteEntry{}))
	assert.Equal(t, TypeSelectionChange, Tag(SelectionEntry{}))
}
