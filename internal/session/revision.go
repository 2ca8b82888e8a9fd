package session

import (
	"bytes"
	"fmt"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/replay"
)

// DomainSubmission is the domain-separation prefix for submission
// revisions.
const DomainSubmission = "typetrace/submission/v1"

// Revision computes the content hash identifying a submission's substance:
// for each question (in sorted id order) the canonical event-log hash and
// the final answer. Metadata, timestamps, and encoding details do not
// participate, so a re-encoded but substantively identical submission
// keeps its revision.
func Revision(sub *Submission) (string, error) {
	var buf bytes.Buffer
	for _, id := range sortedQuestionIDs(sub) {
		q := sub.Questions[id]
		logHash, err := event.LogHash(q.EventLog)
		if err != nil {
			return "", fmt.Errorf("revision: question %s: %w", id, err)
		}
		buf.WriteString(id)
		buf.WriteByte(0x00)
		buf.WriteString(logHash)
		buf.WriteByte(0x00)
		buf.WriteString(q.FinalAnswer)
		buf.WriteByte(0x00)
	}
	return event.HashWithDomain(DomainSubmission, buf.Bytes()), nil
}

// Mismatch reports a question whose event log does not reduce to its
// declared final answer.
type Mismatch struct {
	QuestionID    string `json:"questionId"`
	FinalAnswer   string `json:"finalAnswer"`
	Reconstructed string `json:"reconstructed"`
}

// VerifyAnswers reduces every question's event log and returns the
// questions whose reconstructed text differs from the declared final
// answer. Mismatches are diagnostic, never grounds for rejection: the
// capture client may have trimmed whitespace or raced its own final read,
// and a multi-minute session is worth keeping either way.
func VerifyAnswers(sub *Submission) []Mismatch {
	var mismatches []Mismatch
	for _, id := range sortedQuestionIDs(sub) {
		q := sub.Questions[id]
		got := replay.Reduce(q.EventLog)
		if got.Text != q.FinalAnswer {
			mismatches = append(mismatches, Mismatch{
				QuestionID:    id,
				FinalAnswer:   q.FinalAnswer,
				Reconstructed: got.Text,
			})
		}
	}
	return mismatches
}
