package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/session"
	"github.com/typetrace/typetrace/internal/store"
)

func seedDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "inspect.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	sub := &session.Submission{
		ExamID:         "exam-1",
		StudentID:      "s1",
		SubmissionTime: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Metadata:       session.Metadata{StudentName: "Ada"},
		Questions: map[string]session.Question{
			"q1": {
				FinalAnswer: "abc",
				EventLog: session.EventLog{
					event.Segment{String: "abc", LatencyMS: 0, IntervalMS: 100},
					event.SingleSpecial{Key: event.KeyBackspace, LatencyMS: 2000},
				},
			},
			"q2": {FinalAnswer: ""},
		},
	}
	revision, err := session.Revision(sub)
	require.NoError(t, err)
	_, err = st.SaveSubmission(t.Context(), sub, revision)
	require.NoError(t, err)
	return dbPath
}

func TestInspect_Text(t *testing.T) {
	dbPath := seedDB(t)

	stdout, _, err := runCommand(t, nil, "inspect", "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "EXAM")
	assert.Contains(t, stdout, "exam-1")
	assert.Contains(t, stdout, "s1")
	assert.Contains(t, stdout, "Ada")
}

func TestInspect_JSON(t *testing.T) {
	dbPath := seedDB(t)

	stdout, _, err := runCommand(t, nil, "inspect", "--format", "json", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Equal(t, 1, resp.Data.Count)

	row := resp.Data.Submissions[0]
	assert.Equal(t, "exam-1", row.ExamID)
	assert.Equal(t, "s1", row.StudentID)
	assert.Equal(t, 2, row.Questions)
	assert.Equal(t, 2, row.Events)
	assert.NotEmpty(t, row.Revision)
}

func TestInspect_ExamFilter(t *testing.T) {
	dbPath := seedDB(t)

	stdout, _, err := runCommand(t, nil, "inspect", "--format", "json", "--db", dbPath, "--exam", "other")
	require.NoError(t, err)

	var resp struct {
		Data InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 0, resp.Data.Count)
}

func TestInspect_EmptyDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	stdout, _, err := runCommand(t, nil, "inspect", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no submissions")
}

func TestInspect_RequiresDB(t *testing.T) {
	_, _, err := runCommand(t, nil, "inspect")
	require.Error(t, err)
}
