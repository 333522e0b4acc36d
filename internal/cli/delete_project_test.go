package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codecontext/codecontext/internal/metadata"
	"github.com/codecontext/codecontext/internal/project"
)

func TestRunDeleteProjectAsksBeforeDeleting(t *testing.T) {
	withTempHome(t)
	dir := newMockProject(t)

	_, err := rootCmdExecuteArgs(t, "index", dir)
	require.NoError(t, err)

	id := project.NormalizeProjectID(project.ProjectID(context.Background(), dir))

	out := runRoot(t, "", "delete-project", id)
	require.Contains(t, out, "Cancelled")

	_, err = metadata.Get(id)
	require.NoError(t, err)
}

func TestRunDeleteProjectYesDeletes(t *testing.T) {
	withTempHome(t)
	dir := newMockProject(t)
	t.Cleanup(func() { deleteProjectYes = false })

	_, err := rootCmdExecuteArgs(t, "index", dir)
	require.NoError(t, err)

	id := project.NormalizeProjectID(project.ProjectID(context.Background(), dir))

	out := runRoot(t, "", "delete-project", "--yes", id)
	require.Contains(t, out, "Deleted")

	_, err = metadata.Get(id)
	require.Error(t, err)
}
