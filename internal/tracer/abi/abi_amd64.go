//go:build amd64

package abi

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// unresolved marks a Modify classification inherited from the original
// source's flattened "path unresolved" group (spec design notes §9): these
// syscalls are recognized as filesystem-relevant but no argument register
// is trusted to hold a resolvable path, so the Driver logs and skips the
// backup rather than fabricating one.
const unresolved = -1

// syscallTable is the x86_64 syscall-number -> classification table from
// the spec, grounded one-for-one on original_source/src/tracer/sniff.rs's
// match arms.
var syscallTable = map[uint64]Decoded{
	2:   {Class: ClassModify, ArgIndex: 0},             // open
	3:   {Class: ClassIgnore, ClosesFd: true, ArgIndex: 0}, // close
	76:  {Class: ClassModify, ArgIndex: unresolved},     // truncate
	77:  {Class: ClassModify, ArgIndex: unresolved},     // ftruncate
	80:  {Class: ClassModify, ArgIndex: unresolved, InvalidatesCWD: true}, // chdir
	81:  {Class: ClassModify, ArgIndex: unresolved, InvalidatesCWD: true}, // fchdir
	83:  {Class: ClassModify, ArgIndex: unresolved},     // mkdir
	84:  {Class: ClassModify, ArgIndex: unresolved},     // rmdir
	85:  {Class: ClassCreate, ArgIndex: 0},              // creat
	86:  {Class: ClassModify, ArgIndex: unresolved},     // link
	87:  {Class: ClassDelete, ArgIndex: 0},               // unlink
	88:  {Class: ClassModify, ArgIndex: unresolved},     // symlink
	90:  {Class: ClassModify, ArgIndex: unresolved},     // chmod
	91:  {Class: ClassModify, ArgIndex: unresolved},     // fchmod
	92:  {Class: ClassModify, ArgIndex: unresolved},     // chown
	93:  {Class: ClassModify, ArgIndex: unresolved},     // fchown
	94:  {Class: ClassModify, ArgIndex: unresolved},     // lchown
	95:  {Class: ClassModify, ArgIndex: unresolved},     // umask
	133: {Class: ClassModify, ArgIndex: unresolved},     // mknod
	161: {Class: ClassModify, ArgIndex: unresolved},     // chroot
	188: {Class: ClassModify, ArgIndex: unresolved},     // setxattr
	189: {Class: ClassModify, ArgIndex: unresolved},     // lsetxattr
	190: {Class: ClassModify, ArgIndex: unresolved},     // fsetxattr
	191: {Class: ClassModify, ArgIndex: unresolved},     // getxattr
	192: {Class: ClassModify, ArgIndex: unresolved},     // lgetxattr
	193: {Class: ClassModify, ArgIndex: unresolved},     // fgetxattr
	194: {Class: ClassModify, ArgIndex: unresolved},     // listxattr
	195: {Class: ClassModify, ArgIndex: unresolved},     // llistxattr
	196: {Class: ClassModify, ArgIndex: unresolved},     // flistxattr
	197: {Class: ClassModify, ArgIndex: unresolved},     // removexattr
	198: {Class: ClassModify, ArgIndex: unresolved},     // lremovexattr
	257: {Class: ClassModifyAt, DirfdArg: 0, PathArg: 1}, // openat
	258: {Class: ClassModify, ArgIndex: unresolved},     // mkdirat
	259: {Class: ClassModify, ArgIndex: unresolved},     // mknodat
	260: {Class: ClassModify, ArgIndex: unresolved},     // fchownat
	263: {Class: ClassModify, ArgIndex: unresolved},     // unlinkat
	264: {Class: ClassModify, ArgIndex: unresolved},     // renameat
	265: {Class: ClassModify, ArgIndex: unresolved},     // linkat
	266: {Class: ClassModify, ArgIndex: unresolved},     // symlinkat
	268: {Class: ClassModify, ArgIndex: unresolved},     // fchmodat
	437: {Class: ClassModify, ArgIndex: unresolved},     // openat2
}

// ReadSyscallEntry retrieves the tracee's general-purpose registers and
// extracts the syscall number (orig_rax) and its first three argument
// registers (rdi, rsi, rdx), per the x86_64 syscall ABI.
func ReadSyscallEntry(pid int) (SyscallEntry, error) {
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(pid, &regs); err != nil {
		return SyscallEntry{}, fmt.Errorf("ptrace getregs pid %d: %w", pid, err)
	}
	return SyscallEntry{
		Number: regs.Orig_rax,
		Args:   [3]uint64{regs.Rdi, regs.Rsi, regs.Rdx},
	}, nil
}
