package flock

import (
	"fmt"
	"os"
)

// File is a held lock on a file on disk.
type File struct {
	f    *os.File
	path string
}

// TryLock opens (creating if needed) the file at path and takes an exclusive
// non-blocking lock on it. The file is closed again when locking fails.
func TryLock(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- lock path is built by the caller from the repo's git dir
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	// Record the holder for humans inspecting a stale lock.
	_ = f.Truncate(0)
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())

	return &File{f: f, path: path}, nil
}

// Path returns the lock file path.
func (l *File) Path() string {
	return l.path
}

// Unlock releases the lock and closes the file. The file itself is left in
// place; an unlocked file does not block anyone. Unlock is safe to call twice.
func (l *File) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil

	unlockErr := Unlock(f.Fd())
	closeErr := f.Close()
	if unlockErr != nil {
		return fmt.Errorf("unlock %s: %w", l.path, unlockErr)
	}
	return closeErr
}
