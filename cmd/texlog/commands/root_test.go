package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand executes a cobra command and returns output.
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// isolate points the default config location at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestRootCommandHelp(t *testing.T) {
	isolate(t)
	output, err := executeCommand(NewRootCmd(), "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "Available Commands:")
	for _, sub := range []string{"parse", "view", "watch", "config", "version"} {
		assert.Contains(t, output, sub)
	}
}

func TestInvalidCommand(t *testing.T) {
	isolate(t)
	_, err := executeCommand(NewRootCmd(), "invalid-command")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	output, err := executeCommand(NewRootCmd(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(output, "texlog "))
}

func TestMissingConfigFile(t *testing.T) {
	isolate(t)
	_, err := executeCommand(NewRootCmd(), "--config", filepath.Join(t.TempDir(), "nope.toml"), "version")
	assert.Error(t, err)
}

func TestBrokenConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nformat = \"xml\"\n"), 0644))
	_, err := executeCommand(NewRootCmd(), "--config", path, "version")
	assert.Error(t, err)
}

func TestConfigInitAndPath(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, "texlog", "config.toml")

	output, err := executeCommand(NewRootCmd(), "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", output)

	output, err = executeCommand(NewRootCmd(), "config", "init")
	require.NoError(t, err)
	assert.Contains(t, output, want)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wrap_width = 79")

	_, err = executeCommand(NewRootCmd(), "config", "init")
	assert.Error(t, err, "existing file is kept without --force")

	_, err = executeCommand(NewRootCmd(), "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigInitExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom", "texlog.toml")
	_, err := executeCommand(NewRootCmd(), "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
