// Package filemode translates between os.FileMode and the raw permission
// bits undo persists, preserving the setuid/setgid/sticky bits that
// FileMode.Perm alone discards.
//
// Adapted from the teacher's backend/local syscallMode helper (itself
// borrowed, per its own comment, from the syscall package's unexported
// equivalent) — the same bit layout applies here since the Store persists
// the same POSIX permission word a chmod(2) call expects.
package filemode

import (
	"os"
	"syscall"
)

// setuid, setgid and sticky live outside FileMode.Perm()'s low nine bits,
// but a faithfully-restored file needs them back.
const (
	setuid = syscall.S_ISUID
	setgid = syscall.S_ISGID
	sticky = syscall.S_ISVTX
)

// Encode packs mode into the raw word undo persists: the low nine
// permission bits plus setuid/setgid/sticky, matching what chmod(2)
// expects.
func Encode(mode os.FileMode) uint32 {
	raw := uint32(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		raw |= setuid
	}
	if mode&os.ModeSetgid != 0 {
		raw |= setgid
	}
	if mode&os.ModeSticky != 0 {
		raw |= sticky
	}
	return raw
}

// Decode reverses Encode, rebuilding the os.FileMode Chmod needs from the
// raw word a snapshot row stored.
func Decode(raw uint32) os.FileMode {
	mode := os.FileMode(raw & 0o777)
	if raw&setuid != 0 {
		mode |= os.ModeSetuid
	}
	if raw&setgid != 0 {
		mode |= os.ModeSetgid
	}
	if raw&sticky != 0 {
		mode |= os.ModeSticky
	}
	return mode
}
