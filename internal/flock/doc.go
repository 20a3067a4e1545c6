// Package flock provides cross-platform advisory file locks.
//
// Locks are exclusive and non-blocking: a second holder fails immediately
// instead of waiting. gitbatch uses them to keep two processes from batching
// the same repository at once.
//
// Usage:
//
//	lock, err := flock.TryLock(filepath.Join(gitDir, "gitbatch.lock"))
//	if err != nil {
//	    // another process holds the lock
//	}
//	defer lock.Unlock()
package flock
