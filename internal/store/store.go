// Package store implements the durable, content-addressed-by-path snapshot
// database undo uses to remember a file's pre-modification state.
//
// It is grounded on the teacher's backend/sqlite remote: one table, opened
// through database/sql against the mattn/go-sqlite3 driver, with the same
// read-file-then-INSERT shape backup() has in the teacher's putFile. The one
// deliberate divergence is that INSERT OR REPLACE is never used here — see
// Backup below.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/servusdei2018/undo/internal/filemode"
	"github.com/servusdei2018/undo/internal/logging"
)

// Sentinel errors, checked with errors.Is at call sites.
var (
	// ErrStorageUnavailable is returned when the cache directory or the
	// database itself cannot be created or opened, or a query fails.
	ErrStorageUnavailable = errors.New("store: storage unavailable")
	// ErrSourceMissing is returned by Backup when the file to snapshot
	// cannot be read from the live filesystem.
	ErrSourceMissing = errors.New("store: source file missing")
	// ErrNotFound is returned by Restore when path isn't tracked.
	ErrNotFound = errors.New("store: path not tracked")
	// ErrRestoreIoFailed is returned by Restore when the on-disk write
	// fails; the row is retained so the caller may retry.
	ErrRestoreIoFailed = errors.New("store: restore write failed")
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path TEXT NOT NULL UNIQUE,
	content BLOB NOT NULL,
	permissions INTEGER NOT NULL,
	tombstone INTEGER NOT NULL DEFAULT 0
)
`

// Store is a single-writer handle onto the undo snapshot database. It is
// not safe to share across goroutines without external serialization.
type Store struct {
	db *sql.DB
}

// Record is the {content, permissions} pair captured for one path. A
// tombstoned record means the path did not exist at the moment it was
// first observed to be mutated, so Restore removes the file instead of
// rewriting it.
type Record struct {
	Content     []byte
	Permissions os.FileMode
	Tombstone   bool
}

// Open creates cacheDir if missing and opens (or creates) the sqlite
// database at cacheDir/dbFile.
func Open(cacheDir, dbFile string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating cache dir: %v", ErrStorageUnavailable, err)
	}

	dbPath := cacheDir + string(os.PathSeparator) + dbFile
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: initializing schema: %v", ErrStorageUnavailable, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsTracked reports whether path has a snapshot recorded.
func (s *Store) IsTracked(path string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM files WHERE path = ?", path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return true, nil
}

// Backup reads path's current bytes and mode from the live filesystem and
// inserts a snapshot row.
//
// Idempotence: if path already has a row, Backup is a no-op. The teacher's
// putFile uses "INSERT OR REPLACE", which would clobber the pre-run
// snapshot every time a traced editor re-touches a file. That's wrong for
// an undo tool — the first observation of a path during a run must win, or
// revert loses the ability to restore to the true pre-run state. So this
// is implemented as insert-if-absent instead.
func (s *Store) Backup(path string) error {
	tracked, err := s.IsTracked(path)
	if err != nil {
		return err
	}
	if tracked {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return fmt.Errorf("%w: reading %s: %v", ErrSourceMissing, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrSourceMissing, path, err)
	}

	logging.Debugf("store: backing up %s (%d bytes, mode %s)", path, len(content), info.Mode())
	return s.insertIfAbsent(path, content, filemode.Encode(info.Mode()), false)
}

// BackupTombstone records that path was first observed as the target of a
// mutating syscall while it did not yet exist (the Created-file race from
// the design notes). Restore will remove the file rather than truncate it.
func (s *Store) BackupTombstone(path string) error {
	tracked, err := s.IsTracked(path)
	if err != nil {
		return err
	}
	if tracked {
		return nil
	}
	logging.Debugf("store: recording tombstone for new file %s", path)
	// content must be a non-nil empty slice, not nil: database/sql binds a
	// nil []byte as SQL NULL (go-sqlite3's bind() special-cases it), which
	// would violate the schema's "content BLOB NOT NULL".
	return s.insertIfAbsent(path, []byte{}, 0, true)
}

func (s *Store) insertIfAbsent(path string, content []byte, perm uint32, tombstone bool) error {
	tomb := 0
	if tombstone {
		tomb = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO files (path, content, permissions, tombstone)
		 SELECT ?, ?, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM files WHERE path = ?)`,
		path, content, perm, tomb, path,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// List returns tracked paths in an unspecified but stable order.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM files")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return paths, nil
}

// Restore writes path's snapshot back to disk (or removes it, for a
// tombstoned creation) and deletes the row, in one transaction.
func (s *Store) Restore(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var rec Record
	var rawPerm uint32
	var tomb int
	row := tx.QueryRow("SELECT content, permissions, tombstone FROM files WHERE path = ?", path)
	err = row.Scan(&rec.Content, &rawPerm, &tomb)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	rec.Permissions = filemode.Decode(rawPerm)
	rec.Tombstone = tomb != 0

	if err := writeRestoredFile(path, rec); err != nil {
		// Row is retained (rollback below) so the caller may retry.
		return fmt.Errorf("%w: %s: %v", ErrRestoreIoFailed, path, err)
	}

	if _, err := tx.Exec("DELETE FROM files WHERE path = ?", path); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	logging.Debugf("store: restored %s", path)
	return nil
}

func writeRestoredFile(path string, rec Record) error {
	if rec.Tombstone {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, rec.Content, rec.Permissions); err != nil {
		return err
	}
	return os.Chmod(path, rec.Permissions)
}

// Clear deletes every row in one transaction. It does not touch any files
// on disk.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
