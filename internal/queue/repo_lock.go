package queue

import (
	"fmt"
	"path/filepath"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/flock"
)

// RepoLock is an advisory lock held in the repository's git directory.
// It keeps two gitbatch processes (a watch loop and a manual commit, say)
// from interleaving batches in the same repository.
type RepoLock struct {
	file *flock.File
}

// LockRepo takes the repository lock without blocking. It returns
// ErrLockHeld when another process holds it.
func LockRepo(gitDir string) (*RepoLock, error) {
	path := filepath.Join(gitDir, constants.RepoLockName)

	f, err := flock.TryLock(path)
	if err != nil {
		if flock.IsHeld(err) {
			return nil, fmt.Errorf("%s: %w", path, gberrors.ErrLockHeld)
		}
		return nil, err
	}
	return &RepoLock{file: f}, nil
}

// Path returns the lock file path.
func (l *RepoLock) Path() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Path()
}

// Unlock releases the lock. Safe to call on nil and more than once.
func (l *RepoLock) Unlock() error {
	if l == nil {
		return nil
	}
	return l.file.Unlock()
}
