// Package session models exam submissions: the JSON document a capture
// client posts, its validation rules, the content-hash revision that
// identifies a submission's substance across re-encodings, and the receipt
// tokens handed back on acceptance.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/typetrace/typetrace/internal/event"
)

// EventLog wraps an entry slice so submissions marshal with the exact wire
// format. Unmarshalling through this type silently drops unknown entry
// tags; use Decode when the skipped tags should surface as diagnostics.
type EventLog []event.Entry

// MarshalJSON serializes the log as the wire-format array.
func (l EventLog) MarshalJSON() ([]byte, error) {
	return event.MarshalLog(l)
}

// UnmarshalJSON decodes the wire-format array, tolerating unknown tags.
func (l *EventLog) UnmarshalJSON(data []byte) error {
	entries, _, err := event.UnmarshalLog(data)
	if err != nil {
		return err
	}
	*l = entries
	return nil
}

// Metadata carries the capture client's session context.
type Metadata struct {
	StudentName string `json:"studentName"`
	UserAgent   string `json:"userAgent,omitempty"`
	DurationMS  int64  `json:"durationMs,omitempty"`
}

// Question is one answered question: the final text plus the compressed
// log that reproduces it. StartTimeMS is the capture clock's
// first-interaction timestamp, carried opaquely for consumers that align
// sessions; the codec itself uses only inter-event gaps.
type Question struct {
	Question    string   `json:"question,omitempty"`
	FinalAnswer string   `json:"finalAnswer"`
	StartTimeMS float64  `json:"startTime_ms"`
	EventLog    EventLog `json:"eventLog"`
}

// Submission is the full document posted by the capture client and stored
// verbatim, keyed by (ExamID, StudentID).
type Submission struct {
	ExamID         string              `json:"examId"`
	StudentID      string              `json:"studentId"`
	SubmissionTime time.Time           `json:"submissionTime"`
	Metadata       Metadata            `json:"metadata"`
	Questions      map[string]Question `json:"questions"`
}

// Decode parses a submission document. Unknown event-log entry tags are
// tolerated and returned in skipped (prefixed with the question id) so the
// caller can log one diagnostic per anomaly; everything else malformed is
// an error.
func Decode(data []byte) (*Submission, []string, error) {
	var raw struct {
		ExamID         string    `json:"examId"`
		StudentID      string    `json:"studentId"`
		SubmissionTime time.Time `json:"submissionTime"`
		Metadata       Metadata  `json:"metadata"`
		Questions      map[string]struct {
			Question    string          `json:"question"`
			FinalAnswer string          `json:"finalAnswer"`
			StartTimeMS float64         `json:"startTime_ms"`
			EventLog    json.RawMessage `json:"eventLog"`
		} `json:"questions"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode submission: %w", err)
	}

	sub := &Submission{
		ExamID:         raw.ExamID,
		StudentID:      raw.StudentID,
		SubmissionTime: raw.SubmissionTime,
		Metadata:       raw.Metadata,
		Questions:      make(map[string]Question, len(raw.Questions)),
	}

	var skipped []string
	for id, q := range raw.Questions {
		var log EventLog
		if len(q.EventLog) > 0 {
			entries, qskipped, err := event.UnmarshalLog(q.EventLog)
			if err != nil {
				return nil, nil, fmt.Errorf("decode submission: question %s: %w", id, err)
			}
			log = entries
			for _, tag := range qskipped {
				skipped = append(skipped, id+"/"+tag)
			}
		}
		sub.Questions[id] = Question{
			Question:    q.Question,
			FinalAnswer: q.FinalAnswer,
			StartTimeMS: q.StartTimeMS,
			EventLog:    log,
		}
	}
	return sub, skipped, nil
}

// Encode serializes a submission back to its wire document.
func Encode(sub *Submission) ([]byte, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	return data, nil
}
