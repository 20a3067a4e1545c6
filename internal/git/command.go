// Package git provides Git operations for gitbatch.
// This file provides shared git command execution utilities.
package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// RunCommand executes a git command in the specified directory and returns its
// trimmed output. All errors are wrapped with ErrGitOperation and include
// stderr for debugging.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	out, err := run(ctx, workDir, nil, args)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RunCommandWithInput executes a git command with input on stdin.
// Used for commit messages (commit -F -) and NUL-separated pathspecs.
func RunCommandWithInput(ctx context.Context, workDir string, input io.Reader, args ...string) (string, error) {
	out, err := run(ctx, workDir, input, args)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runRaw executes a git command and returns stdout untouched except for the
// final newline. Porcelain output starts with significant spaces.
func runRaw(ctx context.Context, workDir string, args ...string) (string, error) {
	out, err := run(ctx, workDir, nil, args)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func run(ctx context.Context, workDir string, stdin io.Reader, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, paths are passed after "--" or on stdin
	cmd.Dir = workDir
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		name := subcommand(args)
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", name, strings.TrimSpace(stderr.String()), gberrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", name, gberrors.ErrGitOperation)
	}

	return stdout.String(), nil
}

// subcommand returns the first argument that is not a global option.
func subcommand(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
