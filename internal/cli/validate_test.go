package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validExamCUE = `
exam: {
	id:    "exam-2026-01"
	title: "Midterm"
	questions: [
		{id: "q1", prompt: "Explain WAL mode."},
		{id: "q2", prompt: "Describe a race condition.", maxLength: 2000},
	]
}
`

const invalidExamCUE = `
exam: {
	id:    ""
	title: "Broken"
	questions: [
		{id: "q1", prompt: "one"},
		{id: "q1", prompt: "duplicate id"},
	]
}
`

func writeDefs(t *testing.T, cue string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exam.cue"), []byte(cue), 0o644))
	return dir
}

func TestValidate_Valid(t *testing.T) {
	dir := writeDefs(t, validExamCUE)

	stdout, _, err := runCommand(t, nil, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "exam-2026-01")
	assert.Contains(t, stdout, "2 question(s)")
}

func TestValidate_ValidJSON(t *testing.T) {
	dir := writeDefs(t, validExamCUE)

	stdout, _, err := runCommand(t, nil, "validate", "--format", "json", dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "exam-2026-01", resp.Data.ExamID)
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	dir := writeDefs(t, invalidExamCUE)

	stdout, _, err := runCommand(t, nil, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// Both the empty id and the duplicate question id are reported.
	assert.Contains(t, stdout, "Validation failed")
	assert.Contains(t, stdout, "id")
	assert.Contains(t, stdout, "q1")
}

func TestValidate_MissingDir(t *testing.T) {
	_, _, err := runCommand(t, nil, "validate", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
