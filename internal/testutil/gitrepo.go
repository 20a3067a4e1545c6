package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireGit skips the test when the git binary is not installed.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// Git runs a git command in dir, fails the test on error and returns the
// trimmed combined output.
func Git(t testing.TB, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// NewRepo creates an empty repository on branch main with a test identity.
// Returns the path to the repo.
func NewRepo(t testing.TB) string {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	Git(t, dir, "init")
	Git(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	Git(t, dir, "config", "user.email", "test@gitbatch.local")
	Git(t, dir, "config", "user.name", "gitbatch Test")
	Git(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

// WriteFile creates a file with content in the repo, creating parent
// directories.
func WriteFile(t testing.TB, repo, name, content string) {
	t.Helper()
	path := filepath.Join(repo, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// CommitAll stages every change and commits it with message.
func CommitAll(t testing.TB, repo, message string) {
	t.Helper()
	Git(t, repo, "add", "-A")
	Git(t, repo, "commit", "-m", message)
}

// Subjects returns the commit subjects reachable from rev, newest first.
func Subjects(t testing.TB, dir, rev string) []string {
	t.Helper()
	return strings.Split(Git(t, dir, "log", "--format=%s", rev), "\n")
}
