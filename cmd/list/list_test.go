package list

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servusdei2018/undo/cmd"
	"github.com/servusdei2018/undo/internal/config"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

// Scenario 4 (spec.md §8): list on an empty store prints the empty-state
// message, with the exact wording spec.md §8 pins.
func TestListPrintsEmptyStateMessage(t *testing.T) {
	oldDir := config.CacheDirOverride
	config.CacheDirOverride = t.TempDir()
	defer func() { config.CacheDirOverride = oldDir }()

	cmd.Root.SetArgs([]string{"list"})
	out := captureStdout(t, func() {
		require.NoError(t, cmd.Root.Execute())
	})
	assert.Equal(t, "No files are currently tracked for undo.\n", out)
}
