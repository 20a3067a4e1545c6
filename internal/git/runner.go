// Package git provides Git operations for gitbatch.
// This file defines the Runner interface for git CLI operations.
package git

import "context"

// Runner defines the git operations the batcher needs.
// All operations run in the repository working directory and use context for cancellation.
type Runner interface {
	// StatusPorcelain returns raw `git status --porcelain` output with quoted paths.
	StatusPorcelain(ctx context.Context) (string, error)

	// ListUntracked returns the untracked, non-ignored files under dir.
	ListUntracked(ctx context.Context, dir string) ([]string, error)

	// LineStats returns added/deleted line counts for path. When staged is
	// true only the index is compared against HEAD; otherwise the working tree is.
	LineStats(ctx context.Context, path string, staged bool) (LineStats, error)

	// UntrackedLineStats counts the lines of an untracked file as additions.
	UntrackedLineStats(ctx context.Context, path string) (LineStats, error)

	// Add stages the given paths. An empty list is a no-op.
	Add(ctx context.Context, paths []string) error

	// AddAll stages every change in the working tree (git add -A).
	AddAll(ctx context.Context) error

	// ResetIndex unstages everything, leaving the working tree untouched.
	ResetIndex(ctx context.Context) error

	// HasStagedChanges reports whether the index differs from HEAD.
	HasStagedChanges(ctx context.Context) (bool, error)

	// Commit creates a commit with the given message.
	Commit(ctx context.Context, message string) error

	// Push pushes commits to the remote repository.
	// If setUpstream is true, sets the upstream tracking reference.
	Push(ctx context.Context, remote, branch string, setUpstream bool) error

	// CurrentBranch returns the name of the currently checked out branch.
	// Returns an error if in detached HEAD state.
	CurrentBranch(ctx context.Context) (string, error)
}
