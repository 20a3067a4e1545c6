package message

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/logging"
)

// CommandExecutor runs a prepared command. Tests replace it to avoid
// spawning processes.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor runs commands for real.
type DefaultExecutor struct{}

// Execute runs cmd and collects its output.
func (DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CommandGenerator asks an external program for the message. The changed
// paths are written to its stdin one per line; the cleaned stdout is the message.
type CommandGenerator struct {
	argv     []string
	workDir  string
	timeout  time.Duration
	executor CommandExecutor
	logger   zerolog.Logger
}

// Compile-time interface check.
var _ Generator = (*CommandGenerator)(nil)

// CommandOption configures a CommandGenerator.
type CommandOption func(*CommandGenerator)

// WithWorkDir sets the directory the command runs in.
func WithWorkDir(dir string) CommandOption {
	return func(g *CommandGenerator) {
		g.workDir = dir
	}
}

// WithTimeout bounds a single run.
func WithTimeout(d time.Duration) CommandOption {
	return func(g *CommandGenerator) {
		g.timeout = d
	}
}

// WithExecutor replaces the process executor.
func WithExecutor(e CommandExecutor) CommandOption {
	return func(g *CommandGenerator) {
		g.executor = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) CommandOption {
	return func(g *CommandGenerator) {
		g.logger = logger
	}
}

// NewCommandGenerator creates a generator running command. The command line
// is split on whitespace; no shell is involved.
func NewCommandGenerator(command string, opts ...CommandOption) (*CommandGenerator, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("message command: %w", gberrors.ErrEmptyValue)
	}

	g := &CommandGenerator{
		argv:     argv,
		timeout:  constants.DefaultMessageTimeout,
		executor: DefaultExecutor{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs the command once.
func (g *CommandGenerator) Generate(ctx context.Context, paths []string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, g.argv[0], g.argv[1:]...) //#nosec G204 -- command comes from the user's own configuration
	cmd.Dir = g.workDir
	cmd.Stdin = strings.NewReader(strings.Join(paths, "\n") + "\n")

	start := time.Now()
	stdout, stderr, err := g.executor.Execute(runCtx, cmd)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%s timed out after %s: %w", g.argv[0], g.timeout, gberrors.ErrMessageGeneration)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s failed: %s: %w: %w", g.argv[0],
			logging.FilterSensitiveValue(strings.TrimSpace(string(stderr))), gberrors.ErrMessageGeneration, err)
	}

	msg := Clean(string(stdout))
	if msg == "" {
		return "", fmt.Errorf("%s printed no message: %w", g.argv[0], gberrors.ErrMessageGeneration)
	}

	g.logger.Debug().
		Str("command", g.argv[0]).
		Dur("latency", time.Since(start)).
		Int("files", len(paths)).
		Msg("commit message generated")
	return msg, nil
}
