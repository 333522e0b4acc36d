package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", "")
	return home
}

func TestConfigInitThenPathThenShow(t *testing.T) {
	home := withTempHome(t)

	out := runRoot(t, "", "config", "init")
	require.Contains(t, out, "Created")

	path := filepath.Join(home, ".codecontext", "config.toml")
	_, err := os.Stat(path)
	require.NoError(t, err)

	pathOut := runRoot(t, "", "config", "path")
	require.Contains(t, pathOut, path)

	showOut := runRoot(t, "", "config", "show")
	require.Contains(t, showOut, "[embeddings]")
}

func TestConfigInitFailsWhenAlreadyExists(t *testing.T) {
	withTempHome(t)

	_, err := rootCmdExecuteArgs(t, "config", "init")
	require.NoError(t, err)

	_, err = rootCmdExecuteArgs(t, "config", "init")
	require.Error(t, err)
}

func TestConfigValidateReportsValidDefaults(t *testing.T) {
	withTempHome(t)

	out := runRoot(t, "", "config", "validate")
	require.Contains(t, out, "valid")
}

func TestConfigPathDataShowsDataDir(t *testing.T) {
	home := withTempHome(t)
	t.Cleanup(func() { configPathData = false })

	out := runRoot(t, "", "config", "path", "--data")
	require.Contains(t, out, filepath.Join(home, ".codecontext", "data"))
}
