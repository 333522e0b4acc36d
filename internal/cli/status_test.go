package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStatusNeverIndexed(t *testing.T) {
	withTempHome(t)
	dir := newMockProject(t)

	out := runRoot(t, "", "status", "-p", dir)
	require.Contains(t, out, "Indexed:    never")
}

func TestRunStatusAfterIndex(t *testing.T) {
	withTempHome(t)
	dir := newMockProject(t)

	_, err := rootCmdExecuteArgs(t, "index", dir)
	require.NoError(t, err)

	out := runRoot(t, "", "status", "-p", dir)
	require.Contains(t, out, "Files:      1")
}
