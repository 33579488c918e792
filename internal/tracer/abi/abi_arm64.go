//go:build arm64

package abi

import (
	"debug/elf"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const unresolved = -1

// syscallTable is the aarch64 syscall-number -> classification table. The
// aarch64 syscall table is largely unified with the generic Linux numbers
// (unlike legacy x86_64 wrapper numbers), but open(2)/creat(2) aren't
// implemented as syscalls on arm64 at all — aarch64 libc always goes
// through openat — so only the numbers that exist on this architecture are
// present here.
var syscallTable = map[uint64]Decoded{
	34:  {Class: ClassModify, ArgIndex: unresolved},     // mkdirat
	35:  {Class: ClassModify, ArgIndex: unresolved},     // unlinkat
	36:  {Class: ClassModify, ArgIndex: unresolved},     // symlinkat
	37:  {Class: ClassModify, ArgIndex: unresolved},     // linkat
	38:  {Class: ClassModify, ArgIndex: unresolved},     // renameat
	39:  {Class: ClassModify, ArgIndex: unresolved},     // umount2
	46:  {Class: ClassModify, ArgIndex: unresolved},     // ftruncate
	51:  {Class: ClassModify, ArgIndex: unresolved},     // chroot
	52:  {Class: ClassModify, ArgIndex: unresolved},     // fchmod
	53:  {Class: ClassModify, ArgIndex: unresolved},     // fchmodat
	54:  {Class: ClassModify, ArgIndex: unresolved},     // fchownat
	55:  {Class: ClassModify, ArgIndex: unresolved},     // fchown
	56:  {Class: ClassModifyAt, DirfdArg: 0, PathArg: 1}, // openat
	61:  {Class: ClassModify, ArgIndex: unresolved},     // getdents64
	49:  {Class: ClassModify, ArgIndex: unresolved, InvalidatesCWD: true}, // chdir
	50:  {Class: ClassModify, ArgIndex: unresolved, InvalidatesCWD: true}, // fchdir
	57:  {Class: ClassIgnore, ClosesFd: true, ArgIndex: 0}, // close
	33:  {Class: ClassModify, ArgIndex: unresolved},     // mknodat
	5:   {Class: ClassModify, ArgIndex: unresolved},     // setxattr
	6:   {Class: ClassModify, ArgIndex: unresolved},     // lsetxattr
	7:   {Class: ClassModify, ArgIndex: unresolved},     // fsetxattr
	8:   {Class: ClassModify, ArgIndex: unresolved},     // getxattr
	9:   {Class: ClassModify, ArgIndex: unresolved},     // lgetxattr
	10:  {Class: ClassModify, ArgIndex: unresolved},     // fgetxattr
	11:  {Class: ClassModify, ArgIndex: unresolved},     // listxattr
	12:  {Class: ClassModify, ArgIndex: unresolved},     // llistxattr
	13:  {Class: ClassModify, ArgIndex: unresolved},     // flistxattr
	14:  {Class: ClassModify, ArgIndex: unresolved},     // removexattr
	15:  {Class: ClassModify, ArgIndex: unresolved},     // lremovexattr
	437: {Class: ClassModify, ArgIndex: unresolved},     // openat2
}

// ReadSyscallEntry retrieves the tracee's general-purpose register set and
// extracts the syscall number (x8) and its first three argument registers
// (x0-x2), per the aarch64 syscall ABI.
//
// Unlike x86_64, a native 64-bit aarch64 kernel only answers PTRACE_GETREGS
// for 32-bit compat tasks; a native tracee's registers must be read via
// PTRACE_GETREGSET against the NT_PRSTATUS regset instead.
func ReadSyscallEntry(pid int) (SyscallEntry, error) {
	var regs unix.PtraceRegs
	iov := unix.PtraceIovec{
		Base: (*byte)(unsafe.Pointer(&regs)),
		Len:  uint64(unsafe.Sizeof(regs)),
	}
	if err := unix.PtraceGetRegSet(pid, elf.NT_PRSTATUS, &iov); err != nil {
		return SyscallEntry{}, fmt.Errorf("ptrace getregset pid %d: %w", pid, err)
	}
	return SyscallEntry{
		Number: regs.Regs[8],
		Args:   [3]uint64{regs.Regs[0], regs.Regs[1], regs.Regs[2]},
	}, nil
}
