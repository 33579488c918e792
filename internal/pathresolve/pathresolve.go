// Package pathresolve resolves paths read out of a tracee's address space
// against that tracee's filesystem view: its current working directory and
// its open directory file descriptors, both exported by the kernel as
// symlinks under /proc/<pid>/.
package pathresolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// CWD reads the symbolic link at /proc/<pid>/cwd.
func CWD(pid int) (string, error) {
	link := fmt.Sprintf("/proc/%d/cwd", pid)
	target, err := os.Readlink(link)
	if err != nil {
		return "", fmt.Errorf("resolving cwd of pid %d: %w", pid, err)
	}
	return target, nil
}

// Dirfd reads the symbolic link at /proc/<pid>/fd/<fd>, resolving an open
// directory file descriptor back to the path it refers to.
func Dirfd(pid, fd int) (string, error) {
	link := fmt.Sprintf("/proc/%d/fd/%d", pid, fd)
	target, err := os.Readlink(link)
	if err != nil {
		return "", fmt.Errorf("resolving fd %d of pid %d: %w", fd, pid, err)
	}
	return target, nil
}

// Join resolves a possibly-relative pathname read from a tracee against the
// already-resolved directory it is relative to, NFC-normalizing the result
// so that two byte-distinct but canonically equal paths never produce two
// distinct snapshot rows — the same normalization backend/local applies to
// names before they hit the filesystem, applied here uniformly since the
// snapshot store has no platform-specific reason not to.
func Join(dir, pathname string) string {
	if filepath.IsAbs(pathname) {
		return norm.NFC.String(pathname)
	}
	return norm.NFC.String(filepath.Join(dir, pathname))
}

// CacheInvalidator tracks a per-tracee cwd cache, invalidated on
// chdir/fchdir as suggested by the design notes: resolving /proc/<pid>/cwd
// on every single syscall stop is correct but needlessly expensive on a
// hot tracing loop.
type CacheInvalidator struct {
	pid      int
	cwd      string
	cwdValid bool
	fds      map[int]string
}

// NewCacheInvalidator creates a cache for the given tracee pid.
func NewCacheInvalidator(pid int) *CacheInvalidator {
	return &CacheInvalidator{pid: pid, fds: make(map[int]string)}
}

// CWD returns the tracee's current working directory, resolving and
// caching it on first use.
func (c *CacheInvalidator) CWD() (string, error) {
	if c.cwdValid {
		return c.cwd, nil
	}
	cwd, err := CWD(c.pid)
	if err != nil {
		return "", err
	}
	c.cwd = cwd
	c.cwdValid = true
	return cwd, nil
}

// InvalidateCWD drops the cached cwd; called after observing a
// chdir/fchdir syscall.
func (c *CacheInvalidator) InvalidateCWD() {
	c.cwdValid = false
}

// Dirfd returns the directory a dirfd argument refers to, resolving and
// caching it on first use.
func (c *CacheInvalidator) Dirfd(fd int) (string, error) {
	if dir, ok := c.fds[fd]; ok {
		return dir, nil
	}
	dir, err := Dirfd(c.pid, fd)
	if err != nil {
		return "", err
	}
	c.fds[fd] = dir
	return dir, nil
}

// InvalidateFd drops a cached dirfd resolution; called after observing a
// close syscall against that descriptor.
func (c *CacheInvalidator) InvalidateFd(fd int) {
	delete(c.fds, fd)
}

// FdKey is a convenience for logging / tests that want a string form of an
// fd number without scattering strconv calls through callers.
func FdKey(fd int) string {
	return strconv.Itoa(fd)
}
