package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsesDefaultsWhenNoConfigFileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Embeddings.Provider, cfg.Embeddings.Provider)
	assert.Equal(t, defaults.Storage.FusionMethod, cfg.Storage.FusionMethod)
}

func TestLoadFindsProjectConfigWalkingUpFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	content := "[project]\nname = \"myproj\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFileName), []byte(content), 0o644))

	sub := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	cfg, err := NewLoader(sub).Load()
	require.NoError(t, err)
	assert.Equal(t, "myproj", cfg.Project.Name)
}

func TestLoadEnvironmentVariableOverridesProjectConfig(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CODECONTEXT_PROJECT_NAME", "from-env")

	content := "[project]\nname = \"from-file\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFileName), []byte(content), 0o644))

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Project.Name)
}

func TestLoadConfigEnvVarOverridesToAlternatePath(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	altPath := filepath.Join(t.TempDir(), "override.toml")
	require.NoError(t, os.WriteFile(altPath, []byte("[project]\nname = \"from-config-env\"\n"), 0o644))
	t.Setenv("CONFIG", altPath)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-config-env", cfg.Project.Name)
}

func TestLoadReturnsErrorForInvalidConfiguration(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	content := "[embeddings]\nprovider = \"bogus\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFileName), []byte(content), 0o644))

	_, err := NewLoader(root).Load()
	assert.Error(t, err)
}

func TestFindProjectConfigStopsAtFilesystemRoot(t *testing.T) {
	got := findProjectConfig("/")
	assert.Equal(t, "", got)
}
