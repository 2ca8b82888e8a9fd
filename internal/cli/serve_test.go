package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_MissingConfigFile(t *testing.T) {
	_, _, err := runCommand(t, nil, "serve", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServe_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replay:\n  default_speed: -1\n"), 0o644))

	_, _, err := runCommand(t, nil, "serve", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServe_BadExamDefinitions(t *testing.T) {
	dir := t.TempDir()
	defsDir := filepath.Join(dir, "defs")
	require.NoError(t, os.Mkdir(defsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "exam.cue"), []byte(`exam: {id: ""}`), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "db:\n  path: " + filepath.Join(dir, "serve.db") + "\nexam:\n  specs_dir: " + defsDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, _, err := runCommand(t, nil, "serve", "--config", cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
