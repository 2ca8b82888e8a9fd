package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/typetrace/typetrace/internal/session"
)

// ErrNotFound is returned when no submission matches the requested key.
var ErrNotFound = errors.New("submission not found")

// Summary is the per-submission row returned by listing queries: enough to
// render an overview without decoding the full payload.
type Summary struct {
	ExamID         string    `json:"examId"`
	StudentID      string    `json:"studentId"`
	StudentName    string    `json:"studentName"`
	SubmissionTime time.Time `json:"submissionTime"`
	Revision       string    `json:"revision"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SaveSubmission upserts a submission keyed by (exam, student). A second
// save for the same key replaces the stored payload and bumps updated_at
// while created_at keeps the original insert time. Returns true when a new
// row was inserted, false when an existing one was updated.
//
// The caller validates before saving; the store treats the document as
// opaque apart from the indexed columns.
func (s *Store) SaveSubmission(ctx context.Context, sub *session.Submission, revision string) (inserted bool, err error) {
	payload, err := session.Encode(sub)
	if err != nil {
		return false, fmt.Errorf("save submission: %w", err)
	}

	var existed int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE exam_id = ? AND student_id = ?`,
		sub.ExamID, sub.StudentID,
	).Scan(&existed)
	if err != nil {
		return false, fmt.Errorf("save submission: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions
		(exam_id, student_id, student_name, submission_time, revision, payload_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(exam_id, student_id) DO UPDATE SET
			student_name    = excluded.student_name,
			submission_time = excluded.submission_time,
			revision        = excluded.revision,
			payload_json    = excluded.payload_json,
			updated_at      = CURRENT_TIMESTAMP
	`,
		sub.ExamID,
		sub.StudentID,
		sub.Metadata.StudentName,
		sub.SubmissionTime.UTC(),
		revision,
		string(payload),
	)
	if err != nil {
		return false, fmt.Errorf("save submission: %w", err)
	}

	return existed == 0, nil
}

// GetSubmission retrieves the full stored document for one (exam, student)
// key. Returns ErrNotFound when no row matches.
func (s *Store) GetSubmission(ctx context.Context, examID, studentID string) (*session.Submission, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload_json FROM submissions WHERE exam_id = ? AND student_id = ?`,
		examID, studentID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	sub, _, err := session.Decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListByExam returns summaries for one exam, newest submission first.
func (s *Store) ListByExam(ctx context.Context, examID string) ([]Summary, error) {
	return s.list(ctx,
		`SELECT exam_id, student_id, student_name, submission_time, revision, created_at, updated_at
		 FROM submissions WHERE exam_id = ?
		 ORDER BY submission_time DESC, student_id ASC`, examID)
}

// ListAll returns summaries for every stored submission, newest first.
func (s *Store) ListAll(ctx context.Context) ([]Summary, error) {
	return s.list(ctx,
		`SELECT exam_id, student_id, student_name, submission_time, revision, created_at, updated_at
		 FROM submissions
		 ORDER BY submission_time DESC, exam_id ASC, student_id ASC`)
}

// CountByExam returns the number of submissions stored for an exam.
func (s *Store) CountByExam(ctx context.Context, examID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE exam_id = ?`, examID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(
			&sm.ExamID, &sm.StudentID, &sm.StudentName,
			&sm.SubmissionTime, &sm.Revision, &sm.CreatedAt, &sm.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("list submissions: scan: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}
