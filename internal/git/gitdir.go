// Package git provides Git operations for gitbatch.
// This file resolves .git files used by linked worktrees.
package git

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidGitdirFormat indicates a .git file has an invalid format.
var ErrInvalidGitdirFormat = errors.New("invalid gitdir file format")

// readGitdirFile returns the target of a "gitdir: <path>" .git file.
// It returns "" without error when path is a directory.
func readGitdirFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", nil
	}

	content, err := os.ReadFile(path) // #nosec G304 -- path is the repository's .git entry
	if err != nil {
		return "", err
	}

	line := strings.TrimSpace(string(content))
	if dir, ok := strings.CutPrefix(line, "gitdir: "); ok {
		return dir, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidGitdirFormat, path)
}
