package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDecodeKnownSyscalls checks the table against its own ModifyAt entry
// rather than a hardcoded syscall number, so it passes unmodified on both
// amd64 and arm64 despite openat's number differing between them.
func TestDecodeKnownSyscalls(t *testing.T) {
	found := false
	for num, d := range syscallTable {
		if d.Class != ClassModifyAt {
			continue
		}
		found = true
		got, ok := Decode(num)
		assert.True(t, ok, "Decode(%d) missing from the table it came from", num)
		assert.Equal(t, ClassModifyAt, got.Class)
	}
	assert.True(t, found, "no ClassModifyAt entry present in syscallTable")
}

func TestDecodeUnknownSyscall(t *testing.T) {
	const implausible = uint64(1 << 40)
	_, ok := Decode(implausible)
	assert.False(t, ok)
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "deleted", Deleted.String())
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "unknown", ChangeKind(99).String())
}
