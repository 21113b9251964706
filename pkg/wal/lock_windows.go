//go:build windows

// pkg/wal/lock_windows.go
// Single-writer guard for the WAL. Windows has no flock; LockFileEx on a
// byte range of the log file stands in. The log file itself carries the
// lock (no separate lock file).
package wal

import (
	"syscall"
	"unsafe"
)

var (
	modkernel32      = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = modkernel32.NewProc("LockFileEx")
	procUnlockFileEx = modkernel32.NewProc("UnlockFileEx")
)

const (
	lockfileExclusiveLock   = 0x00000002
	lockfileFailImmediately = 0x00000001

	// errLockViolation is returned by LockFileEx when another handle
	// already holds the range.
	errLockViolation syscall.Errno = 33
)

// lockRange is the one byte the guard locks. It sits far past any real
// log offset so replay reads through a second handle are never blocked
// while the writer holds the lock.
func lockRange() syscall.Overlapped {
	return syscall.Overlapped{
		Offset:     0xFFFFFFFF,
		OffsetHigh: 0x7FFFFFFF,
	}
}

// acquireLock takes the single-writer lock on the open WAL handle. It
// never blocks: a second runtime opening the same log gets ErrWALLocked
// immediately rather than queueing behind the holder.
func (w *WAL) acquireLock() error {
	overlapped := lockRange()
	ok, _, err := procLockFileEx.Call(
		uintptr(w.file.Fd()),
		uintptr(lockfileExclusiveLock|lockfileFailImmediately),
		0,
		1,
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)
	if ok == 0 {
		if errno, isErrno := err.(syscall.Errno); isErrno && errno == errLockViolation {
			return ErrWALLocked
		}
		return err
	}
	return nil
}

// releaseLock drops the single-writer lock ahead of closing the handle.
func (w *WAL) releaseLock() error {
	overlapped := lockRange()
	ok, _, err := procUnlockFileEx.Call(
		uintptr(w.file.Fd()),
		0,
		1,
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)
	if ok == 0 {
		return err
	}
	return nil
}
