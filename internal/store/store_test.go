package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testSubmission(examID, studentID, answer string) *session.Submission {
	return &session.Submission{
		ExamID:         examID,
		StudentID:      studentID,
		SubmissionTime: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Metadata:       session.Metadata{StudentName: "Ada Lovelace"},
		Questions: map[string]session.Question{
			"q1": {
				FinalAnswer: answer,
				EventLog: session.EventLog{
					event.Segment{String: answer, LatencyMS: 0, IntervalMS: 100},
				},
			},
		},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sub := testSubmission("exam-1", "s1", "abc")
	inserted, err := st.SaveSubmission(ctx, sub, "rev-1")
	require.NoError(t, err)
	assert.True(t, inserted)

	got, err := st.GetSubmission(ctx, "exam-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "exam-1", got.ExamID)
	assert.Equal(t, "s1", got.StudentID)
	assert.Equal(t, "Ada Lovelace", got.Metadata.StudentName)
	require.Contains(t, got.Questions, "q1")
	assert.Equal(t, sub.Questions["q1"].EventLog, got.Questions["q1"].EventLog)
}

func TestStore_GetMissingIsErrNotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetSubmission(context.Background(), "exam-1", "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpsertReplacesPayload(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := testSubmission("exam-1", "s1", "first")
	inserted, err := st.SaveSubmission(ctx, first, "rev-1")
	require.NoError(t, err)
	assert.True(t, inserted)

	second := testSubmission("exam-1", "s1", "second")
	inserted, err = st.SaveSubmission(ctx, second, "rev-2")
	require.NoError(t, err)
	assert.False(t, inserted, "same key must update, not insert")

	got, err := st.GetSubmission(ctx, "exam-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Questions["q1"].FinalAnswer)

	// Still exactly one row for the key.
	n, err := st.CountByExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := st.ListByExam(ctx, "exam-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "rev-2", rows[0].Revision)
}

func TestStore_ListByExam(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a := testSubmission("exam-1", "s1", "a")
	a.SubmissionTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	b := testSubmission("exam-1", "s2", "b")
	b.SubmissionTime = time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC)
	c := testSubmission("exam-2", "s1", "c")

	for _, sub := range []*session.Submission{a, b, c} {
		_, err := st.SaveSubmission(ctx, sub, "rev")
		require.NoError(t, err)
	}

	rows, err := st.ListByExam(ctx, "exam-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s2", rows[0].StudentID, "newest first")
	assert.Equal(t, "s1", rows[1].StudentID)
}

func TestStore_ListAll(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for _, sub := range []*session.Submission{
		testSubmission("exam-1", "s1", "a"),
		testSubmission("exam-2", "s2", "b"),
	} {
		_, err := st.SaveSubmission(ctx, sub, "rev")
		require.NoError(t, err)
	}

	rows, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStore_CountByExam(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	n, err := st.CountByExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = st.SaveSubmission(ctx, testSubmission("exam-1", "s1", "a"), "rev")
	require.NoError(t, err)

	n, err = st.CountByExam(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.db"

	st, err := Open(path)
	require.NoError(t, err)
	_, err = st.SaveSubmission(context.Background(), testSubmission("e", "s", "x"), "rev")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopen the same file: schema application must be a no-op and data
	// must survive.
	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close()

	got, err := st2.GetSubmission(context.Background(), "e", "s")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Questions["q1"].FinalAnswer)
}
