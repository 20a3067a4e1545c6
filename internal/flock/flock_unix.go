//go:build unix

package flock

import (
	"errors"
	"syscall"
)

// Exclusive takes an exclusive lock on fd, failing immediately if it is held.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases the lock on fd.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}

// IsHeld reports whether err from Exclusive means another process holds the lock.
func IsHeld(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}
