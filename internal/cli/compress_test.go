package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetrace/typetrace/internal/event"
)

const steadyCapture = `[
	{"type": "key", "key": "a", "time_ms": 0},
	{"type": "key", "key": "b", "time_ms": 100},
	{"type": "key", "key": "c", "time_ms": 200}
]`

func runCommand(t *testing.T, stdin []byte, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != nil {
		cmd.SetIn(bytes.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompress_FoldsSteadyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(steadyCapture), 0o644))

	stdout, _, err := runCommand(t, nil, "compress", path)
	require.NoError(t, err)

	entries, skipped, err := event.UnmarshalLog([]byte(stdout))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, entries, 1)

	seg, ok := entries[0].(event.Segment)
	require.True(t, ok)
	assert.Equal(t, "abc", seg.String)
	assert.Equal(t, int64(0), seg.LatencyMS)
	assert.Equal(t, int64(100), seg.IntervalMS)
}

func TestCompress_Stdin(t *testing.T) {
	stdout, _, err := runCommand(t, []byte(steadyCapture), "compress", "-")
	require.NoError(t, err)

	entries, _, err := event.UnmarshalLog([]byte(stdout))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCompress_OutFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "capture.json")
	outPath := filepath.Join(dir, "log.json")
	require.NoError(t, os.WriteFile(inPath, []byte(steadyCapture), 0o644))

	stdout, _, err := runCommand(t, nil, "compress", inPath, "--out", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout, "log should go to the file, not stdout")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	entries, _, err := event.UnmarshalLog(data)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCompress_StatsToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(steadyCapture), 0o644))

	stdout, stderr, err := runCommand(t, nil, "compress", path, "--stats")
	require.NoError(t, err)

	// stdout stays a parseable log
	_, _, err = event.UnmarshalLog([]byte(stdout))
	require.NoError(t, err)

	assert.Contains(t, stderr, "entries:")
	assert.Contains(t, stderr, "segments:")
}

func TestCompress_MalformedCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, _, err := runCommand(t, nil, "compress", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCompress_MissingFile(t *testing.T) {
	_, _, err := runCommand(t, nil, "compress", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
