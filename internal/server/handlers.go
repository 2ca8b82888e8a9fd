package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/typetrace/typetrace/internal/session"
	"github.com/typetrace/typetrace/internal/store"
)

// maxSubmissionBytes bounds the submit body. Multi-hour sessions compress
// to well under this; anything larger is not a plausible capture.
const maxSubmissionBytes = 16 << 20

// handleSubmit accepts a submission document: decode, validate, verify
// answers (diagnostic only), upsert, respond with a receipt.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBytes+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "reading request body")
		return
	}
	if len(body) > maxSubmissionBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge, "submission too large")
		return
	}

	sub, skipped, err := session.Decode(body)
	if err != nil {
		s.logger.Warn("rejecting malformed submission", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	for _, tag := range skipped {
		s.logger.Warn("skipped unknown event entry in submission", "entry", tag)
	}

	if err := session.Validate(sub); err != nil {
		s.logger.Warn("rejecting invalid submission", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Mismatches are logged, never rejected: the log is the primary
	// record and the stored document keeps both versions for review.
	for _, m := range session.VerifyAnswers(sub) {
		s.logger.Warn("final answer does not match replayed log",
			"examId", sub.ExamID,
			"studentId", sub.StudentID,
			"questionId", m.QuestionID,
		)
	}

	revision, err := session.Revision(sub)
	if err != nil {
		s.logger.Error("computing revision", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to process submission")
		return
	}

	inserted, err := s.store.SaveSubmission(r.Context(), sub, revision)
	if err != nil {
		s.logger.Error("saving submission", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save submission")
		return
	}

	receipt, err := s.tokens.NewToken()
	if err != nil {
		s.logger.Error("generating receipt", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to process submission")
		return
	}

	s.logger.Info("submission saved",
		"examId", sub.ExamID,
		"studentId", sub.StudentID,
		"studentName", sub.Metadata.StudentName,
		"revision", revision,
		"updated", !inserted,
		"receiptId", receipt,
	)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Submission received successfully",
		"examId":    sub.ExamID,
		"studentId": sub.StudentID,
		"receiptId": receipt,
		"revision":  revision,
		"updated":   !inserted,
	})
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.Error("listing submissions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if rows == nil {
		rows = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"submissions": rows})
}

func (s *Server) handleListByExam(w http.ResponseWriter, r *http.Request) {
	examID := mux.Vars(r)["examID"]
	rows, err := s.store.ListByExam(r.Context(), examID)
	if err != nil {
		s.logger.Error("listing submissions", "examId", examID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if rows == nil {
		rows = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"examId": examID, "submissions": rows})
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sub, err := s.store.GetSubmission(r.Context(), vars["examID"], vars["studentID"])
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		s.logger.Error("getting submission", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get submission")
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleExam(w http.ResponseWriter, _ *http.Request) {
	if s.exam == nil {
		s.writeError(w, http.StatusNotFound, "no exam configured")
		return
	}
	s.writeJSON(w, http.StatusOK, s.exam)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
