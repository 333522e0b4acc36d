package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runRoot executes rootCmd with args and stdin as the command's input,
// the way cobra actually dispatches a subcommand's Execute() call back
// up to the root regardless of which command's SetArgs/SetOut were
// touched.
func runRoot(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

// rootCmdExecuteArgs runs rootCmd with args and returns both its
// combined output and the resulting error, for tests asserting on a
// command's failure path.
func rootCmdExecuteArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunInitWritesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	initYes = false
	t.Cleanup(func() { initYes = false })

	out := runRoot(t, "", "init", dir)
	require.Contains(t, out, "Created")

	data, err := os.ReadFile(filepath.Join(dir, ".codecontext.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "[project]")
}

func TestRunInitAsksBeforeOverwriting(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".codecontext.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("project.name = \"old\"\n"), 0o644))

	initYes = false
	t.Cleanup(func() { initYes = false })

	out := runRoot(t, "n\n", "init", dir)
	require.Contains(t, out, "Cancelled")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "old")
}

func TestRunInitYesSkipsConfirmation(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".codecontext.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("project.name = \"old\"\n"), 0o644))

	initYes = true
	t.Cleanup(func() { initYes = false })

	out := runRoot(t, "", "init", dir)
	require.Contains(t, out, "Created")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.NotContains(t, string(data), "old")
}
