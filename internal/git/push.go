// Package git provides Git operations for gitbatch.
// This file implements the PushRunner, which pushes with retry on transient failures.
package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/logging"
)

// PushErrorType classifies push failures for appropriate handling.
type PushErrorType int

const (
	// PushErrorNone indicates no error occurred.
	PushErrorNone PushErrorType = iota
	// PushErrorAuth indicates authentication failed - don't retry.
	PushErrorAuth
	// PushErrorNetwork indicates a network issue - retry with backoff.
	PushErrorNetwork
	// PushErrorTimeout indicates a timeout - retry with backoff.
	PushErrorTimeout
	// PushErrorNonFastForward indicates the remote has commits the local branch lacks.
	PushErrorNonFastForward
	// PushErrorOther indicates an unknown error - don't retry.
	PushErrorOther
)

// String returns a string representation of the error type.
func (t PushErrorType) String() string {
	switch t {
	case PushErrorNone:
		return "none"
	case PushErrorAuth:
		return "auth"
	case PushErrorNetwork:
		return "network"
	case PushErrorTimeout:
		return "timeout"
	case PushErrorNonFastForward:
		return "non_fast_forward"
	case PushErrorOther:
		return "other"
	}
	return "other"
}

// PushOptions configures the push operation.
type PushOptions struct {
	// Remote is the remote to push to (default: "origin").
	Remote string
	// Branch is the remote branch to push to.
	Branch string
	// SetUpstream sets the upstream tracking reference if true.
	SetUpstream bool
}

// PushResult contains the outcome of a push operation.
type PushResult struct {
	// Success indicates whether the push succeeded.
	Success bool
	// ErrorType classifies the error if push failed.
	ErrorType PushErrorType
	// Attempts is the number of push attempts made.
	Attempts int
	// FinalErr is the last raw error if push failed.
	FinalErr error
}

// Pusher pushes the current branch. PushRunner is the production implementation.
type Pusher interface {
	Push(ctx context.Context, opts PushOptions) (*PushResult, error)
}

// Compile-time interface check.
var _ Pusher = (*PushRunner)(nil)

// PushRunner implements Pusher on top of a Runner.
type PushRunner struct {
	runner Runner
	logger zerolog.Logger
	config RetryConfig
}

// PushRunnerOption configures a PushRunner.
type PushRunnerOption func(*PushRunner)

// NewPushRunner creates a PushRunner with the given git runner.
func NewPushRunner(runner Runner, opts ...PushRunnerOption) *PushRunner {
	pr := &PushRunner{
		runner: runner,
		logger: zerolog.Nop(),
		config: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(pr)
	}
	return pr
}

// WithPushLogger sets the logger for push operations.
func WithPushLogger(logger zerolog.Logger) PushRunnerOption {
	return func(pr *PushRunner) {
		pr.logger = logger
	}
}

// WithPushRetryConfig sets custom retry configuration.
func WithPushRetryConfig(config RetryConfig) PushRunnerOption {
	return func(pr *PushRunner) {
		pr.config = config
	}
}

// Push pushes commits to the remote repository, retrying network failures
// and timeouts with exponential backoff.
func (p *PushRunner) Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if opts.Remote == "" {
		opts.Remote = constants.DefaultRemote
	}
	if opts.Branch == "" {
		return nil, fmt.Errorf("branch name cannot be empty: %w", gberrors.ErrEmptyValue)
	}

	op := &SimpleRetryOperation[PushErrorType]{
		AttemptFunc: func(ctx context.Context, attempt int) (PushErrorType, bool, error) {
			return p.attemptPush(ctx, opts, attempt)
		},
		ShouldRetryFunc: func(err error) bool {
			errType := classifyPushError(err)
			return errType == PushErrorNetwork || errType == PushErrorTimeout
		},
		OnRetryWaitFunc: func(attempt int, delay time.Duration) {
			p.logger.Info().
				Int("next_attempt", attempt+1).
				Dur("delay", delay).
				Msg("retrying push")
		},
	}

	errType, attempts, err := ExecuteWithRetry(ctx, p.config, op)
	result := &PushResult{Attempts: attempts}
	if err == nil {
		result.Success = true
		p.logger.Info().Int("attempts", attempts).Msg("push succeeded")
		return result, nil
	}

	// Parent context cancellation is returned as is; an operation timeout
	// (DeadlineExceeded without a done parent) is classified below.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result.ErrorType = errType
	result.FinalErr = err
	return result, buildPushError(result)
}

// attemptPush performs a single push attempt.
func (p *PushRunner) attemptPush(ctx context.Context, opts PushOptions, attempt int) (PushErrorType, bool, error) {
	p.logger.Info().
		Int("attempt", attempt).
		Str("remote", logging.SafeValue("remote", opts.Remote)).
		Str("branch", opts.Branch).
		Msg("pushing to remote")

	err := p.runner.Push(ctx, opts.Remote, opts.Branch, opts.SetUpstream)
	if err == nil {
		return PushErrorNone, true, nil
	}

	errType := classifyPushError(err)
	p.logger.Warn().
		Str("error", logging.FilterSensitiveValue(err.Error())).
		Int("attempt", attempt).
		Str("error_type", errType.String()).
		Msg("push failed")

	return errType, false, err
}

// buildPushError maps the final classification to a sentinel error.
func buildPushError(result *PushResult) error {
	switch result.ErrorType {
	case PushErrorAuth:
		return fmt.Errorf("authentication failed: %w", gberrors.ErrPushAuthFailed)
	case PushErrorNetwork, PushErrorTimeout:
		return fmt.Errorf("push failed after %d attempts: %w", result.Attempts, gberrors.ErrPushNetworkFailed)
	case PushErrorNonFastForward:
		return fmt.Errorf("push rejected (non-fast-forward): %w", result.FinalErr)
	case PushErrorNone, PushErrorOther:
	}
	return fmt.Errorf("failed to push: %w", result.FinalErr)
}

// classifyPushError classifies a push error for retry handling.
func classifyPushError(err error) PushErrorType {
	if err == nil {
		return PushErrorNone
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return PushErrorTimeout
	}

	errStr := err.Error()
	if MatchesAuthError(errStr) {
		return PushErrorAuth
	}
	if MatchesNetworkError(errStr) {
		return PushErrorNetwork
	}
	if MatchesNonFastForwardError(errStr) {
		return PushErrorNonFastForward
	}
	return PushErrorOther
}
