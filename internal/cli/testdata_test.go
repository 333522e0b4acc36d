package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newMockProject writes a minimal repository under a fresh temp
// directory, configured to use the mock embedding provider so index
// and search run entirely offline.
func newMockProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	const cfg = `[project]
name = "demo"
include = ["**/*.py"]

[embeddings]
provider = "mock"

[embeddings.mock]
dimension = 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codecontext.toml"), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "add.py"), []byte("def add(a, b):\n    return a + b\n"), 0o644))
	return dir
}
