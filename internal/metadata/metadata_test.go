package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withTempHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", "") // guard against a stray Windows-style override
}

func TestUpdateThenGetRoundTrips(t *testing.T) {
	withTempHome(t)

	repo := t.TempDir()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, Update("proj1", "my-repo", repo, now))

	meta, err := Get("proj1")
	require.NoError(t, err)
	require.Equal(t, "proj1", meta.ProjectID)
	require.Equal(t, "my-repo", meta.Name)
	require.Equal(t, repo, meta.SourcePath)
	require.True(t, meta.IndexedAt.Equal(now))
	require.True(t, meta.LastUsed.Equal(now))
}

func TestUpdatePreservesOriginalIndexedAt(t *testing.T) {
	withTempHome(t)

	repo := t.TempDir()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Update("proj1", "my-repo", repo, first))
	require.NoError(t, Update("proj1", "my-repo", repo, second))

	meta, err := Get("proj1")
	require.NoError(t, err)
	require.True(t, meta.IndexedAt.Equal(first), "re-indexing should not reset IndexedAt")
	require.True(t, meta.LastUsed.Equal(second))
}

func TestGetMissingProjectReturnsProjectNotFound(t *testing.T) {
	withTempHome(t)

	_, err := Get("does-not-exist")
	require.Error(t, err)
}

func TestListReturnsEveryIndexedProject(t *testing.T) {
	withTempHome(t)

	now := time.Now()
	require.NoError(t, Update("proj1", "repo-one", t.TempDir(), now))
	require.NoError(t, Update("proj2", "repo-two", t.TempDir(), now))

	projects, err := List()
	require.NoError(t, err)
	require.Len(t, projects, 2)
}

func TestListWithNoDataDirReturnsEmpty(t *testing.T) {
	withTempHome(t)

	projects, err := List()
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestDeleteRemovesProjectData(t *testing.T) {
	withTempHome(t)

	require.NoError(t, Update("proj1", "repo-one", t.TempDir(), time.Now()))
	require.NoError(t, Delete("proj1"))

	_, err := Get("proj1")
	require.Error(t, err)
}

func TestTouchUpdatesOnlyLastUsed(t *testing.T) {
	withTempHome(t)

	repo := t.TempDir()
	indexed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	used := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Update("proj1", "repo-one", repo, indexed))
	require.NoError(t, Touch("proj1", used))

	meta, err := Get("proj1")
	require.NoError(t, err)
	require.True(t, meta.IndexedAt.Equal(indexed))
	require.True(t, meta.LastUsed.Equal(used))
}
