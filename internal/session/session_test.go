package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetrace/typetrace/internal/event"
)

func validSubmission() *Submission {
	return &Submission{
		ExamID:         "exam-2026-01",
		StudentID:      "s123",
		SubmissionTime: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Metadata:       Metadata{StudentName: "Ada Lovelace"},
		Questions: map[string]Question{
			"q1": {
				FinalAnswer: "abc",
				StartTimeMS: 12345,
				EventLog: EventLog{
					event.Segment{String: "abc", LatencyMS: 0, IntervalMS: 100},
				},
			},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validSubmission()))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{"missing examId", func(s *Submission) { s.ExamID = "" }, "examId"},
		{"missing studentId", func(s *Submission) { s.StudentID = "" }, "studentId"},
		{"zero time", func(s *Submission) { s.SubmissionTime = time.Time{} }, "submissionTime"},
		{"missing student name", func(s *Submission) { s.Metadata.StudentName = "" }, "metadata.studentName"},
		{"no questions", func(s *Submission) { s.Questions = nil }, "questions"},
		{
			"empty answer",
			func(s *Submission) {
				q := s.Questions["q1"]
				q.FinalAnswer = ""
				s.Questions["q1"] = q
			},
			"questions.q1.finalAnswer",
		},
		{
			"empty event log",
			func(s *Submission) {
				q := s.Questions["q1"]
				q.EventLog = nil
				s.Questions["q1"] = q
			},
			"questions.q1.eventLog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(sub)
			err := Validate(sub)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	sub := validSubmission()
	data, err := Encode(sub)
	require.NoError(t, err)

	decoded, skipped, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, sub.ExamID, decoded.ExamID)
	assert.Equal(t, sub.StudentID, decoded.StudentID)
	assert.True(t, sub.SubmissionTime.Equal(decoded.SubmissionTime))
	assert.Equal(t, sub.Metadata, decoded.Metadata)
	assert.Equal(t, sub.Questions["q1"].EventLog, decoded.Questions["q1"].EventLog)
}

func TestDecode_ReportsSkippedTags(t *testing.T) {
	data := []byte(`{
		"examId": "e1",
		"studentId": "s1",
		"submissionTime": "2026-01-15T10:30:00Z",
		"metadata": {"studentName": "Ada"},
		"questions": {
			"q1": {
				"finalAnswer": "a",
				"startTime_ms": 0,
				"eventLog": [
					{"type": "RAW_KEY", "key": "a", "latency_ms": 0},
					{"type": "MOUSE_MOVE", "latency_ms": 5}
				]
			}
		}
	}`)

	sub, skipped, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1/MOUSE_MOVE"}, skipped)
	assert.Len(t, sub.Questions["q1"].EventLog, 1)
}

func TestDecode_MalformedIsError(t *testing.T) {
	_, _, err := Decode([]byte(`{"examId": 42}`))
	assert.Error(t, err)
}

func TestRevision_StableAcrossMetadataChanges(t *testing.T) {
	a := validSubmission()
	r1, err := Revision(a)
	require.NoError(t, err)

	b := validSubmission()
	b.Metadata.StudentName = "Different Name"
	b.SubmissionTime = b.SubmissionTime.Add(time.Hour)
	r2, err := Revision(b)
	require.NoError(t, err)

	assert.Equal(t, r1, r2, "metadata does not participate in the revision")
}

func TestRevision_ChangesWithContent(t *testing.T) {
	a := validSubmission()
	r1, err := Revision(a)
	require.NoError(t, err)

	b := validSubmission()
	q := b.Questions["q1"]
	q.FinalAnswer = "abd"
	b.Questions["q1"] = q
	r2, err := Revision(b)
	require.NoError(t, err)

	assert.NotEqual(t, r1, r2)
}

func TestVerifyAnswers_Match(t *testing.T) {
	assert.Empty(t, VerifyAnswers(validSubmission()))
}

func TestVerifyAnswers_Mismatch(t *testing.T) {
	sub := validSubmission()
	q := sub.Questions["q1"]
	q.FinalAnswer = "something else"
	sub.Questions["q1"] = q

	mismatches := VerifyAnswers(sub)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "q1", mismatches[0].QuestionID)
	assert.Equal(t, "abc", mismatches[0].Reconstructed)
	assert.Equal(t, "something else", mismatches[0].FinalAnswer)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	t1, err := gen.NewToken()
	require.NoError(t, err)
	t2, err := gen.NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
	assert.Len(t, t1, 36)
}

func TestFixedGenerator(t *testing.T) {
	gen := FixedGenerator{Token: "receipt-1"}
	tok, err := gen.NewToken()
	require.NoError(t, err)
	assert.Equal(t, "receipt-1", tok)
}
