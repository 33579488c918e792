// Package tracer implements the syscall-interception driver: it spawns the
// user's command, attaches to it via ptrace, single-steps it at syscall
// granularity, and backs up the prior state of every path about to be
// mutated into a store.Store before letting the syscall proceed.
//
// Grounded on original_source/src/commands/run.rs's attach/waitpid loop,
// adapted to the Go idiom of exec.Cmd's SysProcAttr.Ptrace rather than a
// separate spawn-then-attach step (see DESIGN.md).
package tracer

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/servusdei2018/undo/internal/logging"
	"github.com/servusdei2018/undo/internal/pathresolve"
	"github.com/servusdei2018/undo/internal/store"
	"github.com/servusdei2018/undo/internal/tracer/abi"
)

// Fatal tracer errors: these abort the run entirely, unlike the per-syscall
// failures handled inside the loop (spec §7: "A failure to attach, or a
// failure to wait, is fatal to the run").
var (
	ErrAttachFailed = errors.New("tracer: attach failed")
	ErrWaitFailed   = errors.New("tracer: wait failed")
)

// Run spawns program with args, traces it to completion, and returns its
// exit status. Every filesystem-mutating syscall observed is backed up
// into s before being allowed to proceed.
func Run(s *store.Store, program string, args []string) (int, error) {
	// ptrace is per-thread: the thread that PTRACE_TRACEME'd into this
	// tracee must be the one that waits on and resumes it for the whole
	// run, or the kernel returns ESRCH. Lock this goroutine down.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cmd := exec.Command(program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: spawning %s: %v", ErrAttachFailed, program, err)
	}
	pid := cmd.Process.Pid

	// The traceme'd child raises SIGTRAP on its own exec; consume that
	// stop before the main loop starts issuing PTRACE_SYSCALL.
	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		return -1, fmt.Errorf("%w: initial wait on pid %d: %v", ErrWaitFailed, pid, err)
	}
	if ws.Exited() {
		return ws.ExitStatus(), nil
	}

	cache := pathresolve.NewCacheInvalidator(pid)

	entry := true // next syscall-stop is an entry stop, not an exit stop
	forwardSig := 0
	for {
		if err := unix.PtraceSyscall(pid, forwardSig); err != nil {
			return -1, fmt.Errorf("%w: resuming pid %d: %v", ErrWaitFailed, pid, err)
		}
		forwardSig = 0

		if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
			return -1, fmt.Errorf("%w: waiting on pid %d: %v", ErrWaitFailed, pid, err)
		}

		if ws.Exited() {
			return ws.ExitStatus(), nil
		}
		if ws.Signaled() {
			return -1, fmt.Errorf("tracer: pid %d killed by signal %v", pid, ws.Signal())
		}
		if !ws.Stopped() {
			continue
		}

		if ws.StopSignal() != unix.SIGTRAP {
			// Signal-delivery stop: per spec §4.4 step 4, resume without
			// action, but still forward the signal so it reaches the
			// tracee instead of being silently swallowed.
			forwardSig = int(ws.StopSignal())
			continue
		}

		if entry {
			onSyscallEntry(s, pid, cache)
		}
		entry = !entry
	}
}

// onSyscallEntry decodes one syscall-entry stop and, if it's
// filesystem-mutating, backs up the prior state of its path. Failures here
// are logged and swallowed — spec §7: a failure to snapshot one syscall is
// not fatal to the traced program.
func onSyscallEntry(s *store.Store, pid int, cache *pathresolve.CacheInvalidator) {
	se, err := abi.ReadSyscallEntry(pid)
	if err != nil {
		logging.Warnf("tracer: reading registers for pid %d: %v", pid, err)
		return
	}

	d, ok := abi.Decode(se.Number)
	if !ok {
		return // DecodeError(UnknownSyscall): benign, per spec §4.3
	}

	if d.ClosesFd {
		cache.InvalidateFd(int(se.Args[d.ArgIndex]))
		return
	}
	if d.InvalidatesCWD {
		cache.InvalidateCWD()
	}

	switch d.Class {
	case abi.ClassIgnore:
		return

	case abi.ClassCreate, abi.ClassDelete, abi.ClassModify:
		if d.ArgIndex < 0 {
			logging.Debugf("tracer: syscall %d is filesystem-relevant but path resolution isn't implemented for it", se.Number)
			return
		}
		pathBytes, err := readCString(pid, se.Args[d.ArgIndex])
		if err != nil {
			logging.Warnf("tracer: reading path for pid %d: %v", pid, err)
			return
		}
		resolved := pathresolve.Join(mustCWD(cache), string(pathBytes))
		backupResolved(s, resolved)

	case abi.ClassModifyAt:
		pathBytes, err := readCString(pid, se.Args[d.PathArg])
		if err != nil {
			logging.Warnf("tracer: reading path for pid %d: %v", pid, err)
			return
		}
		dirfd := int32(se.Args[d.DirfdArg])
		var dir string
		if int64(dirfd) == abi.AtFDCWD {
			dir = mustCWD(cache)
		} else {
			d, err := cache.Dirfd(int(dirfd))
			if err != nil {
				logging.Warnf("tracer: resolving dirfd %d for pid %d: %v", dirfd, pid, err)
				return
			}
			dir = d
		}
		resolved := pathresolve.Join(dir, string(pathBytes))
		backupResolved(s, resolved)
	}
}

func mustCWD(cache *pathresolve.CacheInvalidator) string {
	cwd, err := cache.CWD()
	if err != nil {
		// The tracee may have exited between the stop and this read;
		// fall back to "." so Join still produces *something* rather
		// than panicking. The resulting backup attempt will simply fail
		// and be logged by backupResolved.
		logging.Warnf("tracer: resolving cwd: %v", err)
		return "."
	}
	return cwd
}

// backupResolved snapshots path, choosing a tombstone when the path
// doesn't yet exist (design notes §9: the created-file race). Store
// errors are logged, never propagated — consistent with spec §7.
func backupResolved(s *store.Store, path string) {
	if !filepath.IsAbs(path) {
		logging.Warnf("tracer: not backing up %s: path could not be resolved to an absolute path", path)
		return
	}
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			if err := s.BackupTombstone(path); err != nil {
				logging.Warnf("tracer: tombstoning %s: %v", path, err)
			}
			return
		}
		logging.Warnf("tracer: stat %s: %v", path, err)
		return
	}
	if err := s.Backup(path); err != nil {
		logging.Warnf("tracer: backing up %s: %v", path, err)
	}
}
