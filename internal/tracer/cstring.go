package tracer

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrPeekFailed is returned by readCString when a word read into the
// tracee's address space fails — typically because the tracee has exited
// or the address isn't mapped.
var ErrPeekFailed = errors.New("tracer: peek failed")

const wordSize = 8

// readCString reads a NUL-terminated byte string out of the tracee's
// address space by word-granular PTRACE_PEEKDATA reads, scanning each word
// for the terminator. addr need not be word-aligned — PtracePeekData
// handles that internally the same way the original ptrace::read loop did
// by reading whole words and masking out individual bytes.
//
// Paths are kept as raw bytes rather than decoded to text here (design
// notes §9: Linux paths are byte strings, not text); UTF-8 validation, if
// wanted, belongs at the display boundary, not this layer.
func readCString(pid int, addr uint64) ([]byte, error) {
	var out []byte
	buf := make([]byte, wordSize)
	cur := addr

	for {
		n, err := unix.PtracePeekData(pid, uintptr(cur), buf)
		if err != nil {
			return nil, fmt.Errorf("%w: pid %d addr 0x%x: %v", ErrPeekFailed, pid, cur, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: pid %d addr 0x%x: short read", ErrPeekFailed, pid, cur)
		}
		for i := 0; i < n; i++ {
			if buf[i] == 0 {
				return out, nil
			}
			out = append(out, buf[i])
		}
		cur += uint64(n)
	}
}

// DisplayPath renders a raw path byte string for terminal output,
// replacing invalid UTF-8 sequences rather than failing — list/revert
// should never crash on an oddly-encoded path, they should just show it.
func DisplayPath(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
