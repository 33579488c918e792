package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, "cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeTempFile(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

// Invariant 1: after Backup succeeds, IsTracked holds and List contains the path.
func TestBackupTracksPath(t *testing.T) {
	s := openTestStore(t)
	path := writeTempFile(t, "old\n", 0o644)

	require.NoError(t, s.Backup(path))

	tracked, err := s.IsTracked(path)
	require.NoError(t, err)
	assert.True(t, tracked)

	paths, err := s.List()
	require.NoError(t, err)
	assert.Contains(t, paths, path)
}

// Invariant 2 & round-trip: Restore produces the bytes/mode captured by the
// first Backup, and leaves the path untracked.
func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)
	path := writeTempFile(t, "old\n", 0o644)

	require.NoError(t, s.Backup(path))
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o600))

	require.NoError(t, s.Restore(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	tracked, err := s.IsTracked(path)
	require.NoError(t, err)
	assert.False(t, tracked)
}

// Invariant 3: first-write-wins across repeated backups of the same path.
func TestBackupFirstWriteWins(t *testing.T) {
	s := openTestStore(t)
	path := writeTempFile(t, "C1", 0o644)

	require.NoError(t, s.Backup(path))

	require.NoError(t, os.WriteFile(path, []byte("C2"), 0o644))
	require.NoError(t, s.Backup(path)) // no-op, C1 already recorded

	require.NoError(t, os.WriteFile(path, []byte("C3"), 0o644))
	require.NoError(t, s.Backup(path)) // still a no-op

	require.NoError(t, s.Restore(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "C1", string(content))
}

// Invariant 4: Clear followed by List is empty, and Restore fails with ErrNotFound.
func TestClearEmptiesStore(t *testing.T) {
	s := openTestStore(t)
	path := writeTempFile(t, "x", 0o644)
	require.NoError(t, s.Backup(path))

	require.NoError(t, s.Clear())

	paths, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, paths)

	err = s.Restore(path)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Invariant 5: List is consistent with IsTracked.
func TestListConsistentWithIsTracked(t *testing.T) {
	s := openTestStore(t)
	p1 := writeTempFile(t, "a", 0o644)
	p2 := writeTempFile(t, "b", 0o644)
	require.NoError(t, s.Backup(p1))
	require.NoError(t, s.Backup(p2))

	paths, err := s.List()
	require.NoError(t, err)
	for _, p := range paths {
		tracked, err := s.IsTracked(p)
		require.NoError(t, err)
		assert.True(t, tracked)
	}
}

func TestBackupSourceMissing(t *testing.T) {
	s := openTestStore(t)
	missing := filepath.Join(t.TempDir(), "nope.txt")

	err := s.Backup(missing)
	assert.True(t, errors.Is(err, ErrSourceMissing))
}

func TestBackupEmptyFileAndEmbeddedNUL(t *testing.T) {
	s := openTestStore(t)

	empty := writeTempFile(t, "", 0o644)
	require.NoError(t, s.Backup(empty))

	nulPath := filepath.Join(t.TempDir(), "withnul.bin")
	content := []byte{'a', 0, 'b', 0, 'c'}
	require.NoError(t, os.WriteFile(nulPath, content, 0o644))
	require.NoError(t, s.Backup(nulPath))

	require.NoError(t, os.WriteFile(nulPath, []byte("clobbered"), 0o644))
	require.NoError(t, s.Restore(nulPath))

	got, err := os.ReadFile(nulPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestBackupTombstoneRestoreRemoves(t *testing.T) {
	s := openTestStore(t)
	path := filepath.Join(t.TempDir(), "newfile.txt")

	require.NoError(t, s.BackupTombstone(path))
	require.NoError(t, os.WriteFile(path, []byte("created by tracee"), 0o644))

	require.NoError(t, s.Restore(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRestoreNotFound(t *testing.T) {
	s := openTestStore(t)
	err := s.Restore("/no/such/tracked/path")
	assert.ErrorIs(t, err, ErrNotFound)
}
