//go:build !windows

// pkg/wal/lock_unix.go
// Single-writer guard for the WAL. The log file itself carries the lock
// (no separate lock file), so a stale lock cannot outlive the holder's
// file descriptor.
package wal

import "golang.org/x/sys/unix"

// acquireLock takes an exclusive advisory flock on the open WAL handle.
// It never blocks: a second runtime opening the same log gets
// ErrWALLocked immediately rather than queueing behind the holder.
// Replay, which reads through a separate handle, is unaffected.
func (w *WAL) acquireLock() error {
	switch err := unix.Flock(int(w.file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err {
	case nil:
		return nil
	case unix.EWOULDBLOCK:
		return ErrWALLocked
	default:
		return err
	}
}

// releaseLock drops the single-writer lock ahead of closing the handle.
func (w *WAL) releaseLock() error {
	return unix.Flock(int(w.file.Fd()), unix.LOCK_UN)
}
