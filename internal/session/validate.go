package session

import (
	"fmt"
	"sort"
)

// ValidationError reports one field that fails submission validation.
// Validation is fail-fast: the first failing field is reported and no
// compression, verification, or storage work happens afterwards.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the structural rules every submission must satisfy
// before any storage work: non-empty identifiers, a real timestamp, a
// named student, and at least one question with an answer and at least one
// event. Returns a *ValidationError describing the first failure.
func Validate(sub *Submission) error {
	if sub == nil {
		return &ValidationError{Field: "submission", Message: "missing"}
	}
	if sub.ExamID == "" {
		return &ValidationError{Field: "examId", Message: "must be a non-empty string"}
	}
	if sub.StudentID == "" {
		return &ValidationError{Field: "studentId", Message: "must be a non-empty string"}
	}
	if sub.SubmissionTime.IsZero() {
		return &ValidationError{Field: "submissionTime", Message: "must be a valid RFC 3339 timestamp"}
	}
	if sub.Metadata.StudentName == "" {
		return &ValidationError{Field: "metadata.studentName", Message: "must be a non-empty string"}
	}
	if len(sub.Questions) == 0 {
		return &ValidationError{Field: "questions", Message: "at least one question is required"}
	}

	for _, id := range sortedQuestionIDs(sub) {
		q := sub.Questions[id]
		if id == "" {
			return &ValidationError{Field: "questions", Message: "question id must be non-empty"}
		}
		if q.FinalAnswer == "" {
			return &ValidationError{
				Field:   "questions." + id + ".finalAnswer",
				Message: "must be a non-empty string",
			}
		}
		if len(q.EventLog) == 0 {
			return &ValidationError{
				Field:   "questions." + id + ".eventLog",
				Message: "at least one event is required",
			}
		}
	}
	return nil
}

// sortedQuestionIDs returns question ids in deterministic order. Map
// iteration order would make both validation error selection and the
// revision hash nondeterministic.
func sortedQuestionIDs(sub *Submission) []string {
	ids := make([]string, 0, len(sub.Questions))
	for id := range sub.Questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
