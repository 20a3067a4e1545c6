// Package git provides Git operations for gitbatch.
// This file implements retry logic for git lock file errors.
package git

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LockRetryConfig configures retry behavior for index.lock contention.
type LockRetryConfig = RetryConfig

// DefaultLockRetryConfig returns defaults for lock file retry. Delays are
// shorter than for network retries since lock files are released quickly.
func DefaultLockRetryConfig() LockRetryConfig {
	return LockRetryConfig{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
}

// RunWithLockRetry executes a git operation, retrying while it fails with a
// lock file error. Other errors are returned immediately.
func RunWithLockRetry[R any](
	ctx context.Context,
	config LockRetryConfig,
	logger zerolog.Logger,
	operation func(ctx context.Context) (R, error),
) (R, error) {
	op := &SimpleRetryOperation[R]{
		AttemptFunc: func(ctx context.Context, _ int) (R, bool, error) {
			res, err := operation(ctx)
			return res, err == nil, err
		},
		ShouldRetryFunc: func(err error) bool {
			return MatchesLockFileError(err.Error())
		},
		OnRetryWaitFunc: func(attempt int, delay time.Duration) {
			logger.Debug().
				Int("attempt", attempt).
				Int("max_attempts", config.MaxAttempts).
				Dur("delay", delay).
				Msg("git lock file error, retrying")
		},
	}

	result, attempts, err := ExecuteWithRetry(ctx, config, op)
	if err != nil && attempts == config.MaxAttempts && MatchesLockFileError(err.Error()) {
		logger.Warn().
			Int("attempts", attempts).
			Err(err).
			Msg("git lock file retry exhausted")
	}
	return result, err
}

// RunWithLockRetryVoid is RunWithLockRetry for operations without a result.
func RunWithLockRetryVoid(
	ctx context.Context,
	config LockRetryConfig,
	logger zerolog.Logger,
	operation func(ctx context.Context) error,
) error {
	_, err := RunWithLockRetry(ctx, config, logger, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	})
	return err
}
