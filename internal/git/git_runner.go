// Package git provides Git operations for gitbatch.
// This file implements the CLIRunner which wraps git CLI commands.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// Compile-time interface check.
var _ Runner = (*CLIRunner)(nil)

// CLIRunner implements Runner using the git CLI.
type CLIRunner struct {
	workDir   string          // Working directory for git commands
	logger    zerolog.Logger  // Logger for lock retries
	lockRetry LockRetryConfig // Retry policy for index.lock contention
}

// CLIRunnerOption configures a CLIRunner.
type CLIRunnerOption func(*CLIRunner)

// WithRunnerLogger sets the logger for the runner.
func WithRunnerLogger(logger zerolog.Logger) CLIRunnerOption {
	return func(r *CLIRunner) {
		r.logger = logger
	}
}

// WithLockRetryConfig overrides the index.lock retry policy.
func WithLockRetryConfig(config LockRetryConfig) CLIRunnerOption {
	return func(r *CLIRunner) {
		r.lockRetry = config
	}
}

// NewRunner creates a new CLIRunner for the given working directory.
// Returns an error if the directory is not a git repository.
func NewRunner(ctx context.Context, workDir string, opts ...CLIRunnerOption) (*CLIRunner, error) {
	if workDir == "" {
		return nil, fmt.Errorf("work directory cannot be empty: %w", gberrors.ErrEmptyValue)
	}

	r := &CLIRunner{
		workDir:   workDir,
		logger:    zerolog.Nop(),
		lockRetry: DefaultLockRetryConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}

	// Verify this is a git repository
	if _, err := r.runGitCommand(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %w", gberrors.ErrNotGitRepo, err)
	}

	return r, nil
}

// WorkDir returns the directory the runner operates in.
func (r *CLIRunner) WorkDir() string {
	return r.workDir
}

// StatusPorcelain returns `git status --porcelain` output.
// Untracked directories are reported as a single "dir/" entry.
func (r *CLIRunner) StatusPorcelain(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := runRaw(ctx, r.workDir, "--literal-pathspecs", "status", "--porcelain=v1", "--untracked-files=normal")
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	return output, nil
}

// ListUntracked returns untracked, non-ignored files under dir.
// Uses -z so paths come back unquoted.
func (r *CLIRunner) ListUntracked(ctx context.Context, dir string) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	output, err := runRaw(ctx, r.workDir, "--literal-pathspecs", "ls-files", "-z", "--others", "--exclude-standard", "--", dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files in %s: %w", dir, err)
	}

	var files []string
	for _, f := range strings.Split(output, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// LineStats returns numstat counts for path.
func (r *CLIRunner) LineStats(ctx context.Context, path string, staged bool) (LineStats, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return LineStats{}, err
	}

	args := []string{"--literal-pathspecs", "diff", "--numstat"}
	if staged {
		args = append(args, "--cached")
	} else {
		args = append(args, "HEAD")
	}
	args = append(args, "--", path)

	output, err := r.runGitCommand(ctx, args...)
	if err != nil {
		return LineStats{}, fmt.Errorf("failed to get line stats for %s: %w", path, err)
	}
	return ParseNumstat(output), nil
}

// UntrackedLineStats counts the lines of an untracked file.
func (r *CLIRunner) UntrackedLineStats(ctx context.Context, path string) (LineStats, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return LineStats{}, err
	}

	f, err := os.Open(filepath.Join(r.workDir, filepath.FromSlash(path))) // #nosec G304 -- path comes from git ls-files inside the repository
	if err != nil {
		return LineStats{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return LineStats{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		// Directories (nested repositories) and symlinks have no line counts.
		return LineStats{}, nil
	}

	return countLines(f)
}

// Add stages the given paths. Paths are passed NUL-separated on stdin so
// large batches never hit the argument length limit.
func (r *CLIRunner) Add(ctx context.Context, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	var pathspec bytes.Buffer
	for _, p := range paths {
		pathspec.WriteString(p)
		pathspec.WriteByte(0)
	}
	input := pathspec.Bytes()

	err := RunWithLockRetryVoid(ctx, r.lockRetry, r.logger, func(ctx context.Context) error {
		_, err := RunCommandWithInput(ctx, r.workDir, bytes.NewReader(input),
			"--literal-pathspecs", "add", "--all", "--pathspec-from-file=-", "--pathspec-file-nul")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// AddAll stages every change in the working tree.
func (r *CLIRunner) AddAll(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	err := RunWithLockRetryVoid(ctx, r.lockRetry, r.logger, func(ctx context.Context) error {
		_, err := r.runGitCommand(ctx, "add", "-A")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add all files: %w", err)
	}
	return nil
}

// ResetIndex resets the index to HEAD. On an unborn branch the index is
// emptied instead, since there is no HEAD tree to reset to.
func (r *CLIRunner) ResetIndex(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	args := []string{"reset", "-q"}
	if _, err := r.runGitCommand(ctx, "rev-parse", "--verify", "-q", "HEAD"); err != nil {
		args = []string{"read-tree", "--empty"}
	}

	err := RunWithLockRetryVoid(ctx, r.lockRetry, r.logger, func(ctx context.Context) error {
		_, err := r.runGitCommand(ctx, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}
	return nil
}

// HasStagedChanges reports whether anything is staged.
func (r *CLIRunner) HasStagedChanges(ctx context.Context) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	output, err := r.runGitCommand(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	return output != "", nil
}

// Commit creates a commit with the given message, read from stdin so
// multi-line messages survive unchanged.
func (r *CLIRunner) Commit(ctx context.Context, message string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message cannot be empty: %w", gberrors.ErrEmptyValue)
	}

	// --cleanup=strip removes trailing whitespace and leading/trailing blank lines
	err := RunWithLockRetryVoid(ctx, r.lockRetry, r.logger, func(ctx context.Context) error {
		_, err := RunCommandWithInput(ctx, r.workDir, strings.NewReader(message), "commit", "-F", "-", "--cleanup=strip")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Push pushes commits to the remote repository.
func (r *CLIRunner) Push(ctx context.Context, remote, branch string, setUpstream bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, remote, branch)

	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// CurrentBranch returns the name of the currently checked out branch.
func (r *CLIRunner) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := r.runGitCommand(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	// Handle detached HEAD state
	if output == "HEAD" {
		return "", fmt.Errorf("repository is in detached HEAD state: %w", gberrors.ErrGitOperation)
	}

	return output, nil
}

// runGitCommand executes a git command and returns its output.
// This is a convenience wrapper around RunCommand that uses the runner's workDir.
func (r *CLIRunner) runGitCommand(ctx context.Context, args ...string) (string, error) {
	return RunCommand(ctx, r.workDir, args...)
}
