//go:build unix

package file

import (
	"errors"
	"fmt"
	"syscall"
)

// flock applies how without blocking. A conflicting holder is reported as
// ErrStoreBusy; interrupted calls are retried.
func flock(fd int, how int) error {
	for {
		err := syscall.Flock(fd, how|syscall.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, syscall.EINTR):
			continue
		case errors.Is(err, syscall.EWOULDBLOCK):
			return ErrStoreBusy
		default:
			return fmt.Errorf("flock: %w", err)
		}
	}
}

func platformAcquireLock(fd int) error {
	return flock(fd, syscall.LOCK_EX)
}

func platformAcquireSharedLock(fd int) error {
	return flock(fd, syscall.LOCK_SH)
}

func platformReleaseLock(fd int) error {
	return syscall.Flock(fd, syscall.LOCK_UN)
}
