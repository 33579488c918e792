// Package config resolves where undo keeps its persisted state.
package config

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// fallbackCacheDir is used verbatim (not tilde-expanded) when $HOME cannot
// be resolved. A single-user dev tool doesn't need to get cleverer than this.
const fallbackCacheDir = "~/.cache/undo"

// DatabaseFile is the name of the sqlite database undo keeps under its cache dir.
const DatabaseFile = "cache.db"

// CacheDirOverride, when non-empty, is returned by CacheDir in place of the
// default directory (tests and the --cache-dir flag both set it to avoid
// touching the real $HOME/.cache/undo).
var CacheDirOverride string

// CacheDir resolves $HOME/.cache/undo, falling back to the literal
// "~/.cache/undo" when $HOME can't be determined.
func CacheDir() string {
	if CacheDirOverride != "" {
		return CacheDirOverride
	}
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return fallbackCacheDir
	}
	return filepath.Join(home, ".cache", "undo")
}

// DatabasePath is CacheDir joined with the database filename.
func DatabasePath() string {
	return filepath.Join(CacheDir(), DatabaseFile)
}

// EnsureCacheDir creates the cache directory (and any parents) if missing.
func EnsureCacheDir() error {
	return os.MkdirAll(CacheDir(), 0o755)
}
