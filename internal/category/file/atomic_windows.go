//go:build windows

package file

import (
	"syscall"
	"unsafe"
)

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = kernel32.NewProc("LockFileEx")
	procUnlockFileEx = kernel32.NewProc("UnlockFileEx")
)

const (
	lockfileExclusiveLock   = 0x00000002
	lockfileFailImmediately = 0x00000001
)

func lockFileEx(fd int, flags uintptr) error {
	handle := syscall.Handle(fd)
	var overlapped syscall.Overlapped

	ret, _, err := procLockFileEx.Call(
		uintptr(handle),
		flags,
		uintptr(0),
		uintptr(0xFFFFFFFF),
		uintptr(0xFFFFFFFF),
		uintptr(unsafe.Pointer(&overlapped)),
	)

	if ret == 0 {
		return err
	}
	return nil
}

// platformAcquireLock acquires an exclusive lock on the file
func platformAcquireLock(fd int) error {
	return lockFileEx(fd, lockfileExclusiveLock|lockfileFailImmediately)
}

// platformReleaseLock releases the lock on the file
func platformReleaseLock(fd int) error {
	handle := syscall.Handle(fd)
	var overlapped syscall.Overlapped

	ret, _, err := procUnlockFileEx.Call(
		uintptr(handle),
		uintptr(0),
		uintptr(0xFFFFFFFF),
		uintptr(0xFFFFFFFF),
		uintptr(unsafe.Pointer(&overlapped)),
	)

	if ret == 0 {
		return err
	}
	return nil
}

// platformAcquireSharedLock acquires a shared lock on the file
func platformAcquireSharedLock(fd int) error {
	// No exclusive flag = shared lock
	return lockFileEx(fd, lockfileFailImmediately)
}
