// Package git provides Git operations for gitbatch.
// This file implements shared retry logic for git operations.
package git

import (
	"context"
	"time"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts.
	MaxAttempts int
	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier is the delay multiplier per attempt.
	Multiplier float64
}

// DefaultRetryConfig returns the retry configuration for push operations.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  constants.MaxRetryAttempts,
		InitialDelay: 2 * constants.InitialBackoff,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// next returns the delay that follows d.
func (c RetryConfig) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * c.Multiplier)
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// RetryableOperation defines the interface for operations that can be retried.
type RetryableOperation[R any] interface {
	// Attempt performs a single attempt and returns the result.
	// success indicates if the attempt succeeded.
	Attempt(ctx context.Context, attempt int) (result R, success bool, err error)

	// ShouldRetry returns true if the operation should be retried given the error.
	ShouldRetry(err error) bool

	// OnRetryWait is called before waiting for the next retry.
	OnRetryWait(attempt int, delay time.Duration)
}

// ExecuteWithRetry executes an operation with retry logic based on the provided config.
// Returns the result, total attempts made, and any final error.
func ExecuteWithRetry[R any](
	ctx context.Context,
	config RetryConfig,
	op RetryableOperation[R],
) (result R, attempts int, finalErr error) {
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctxutil.Canceled(ctx); err != nil {
			return result, attempts, err
		}
		attempts = attempt

		res, success, err := op.Attempt(ctx, attempt)
		if success {
			return res, attempts, nil
		}
		result, finalErr = res, err

		if !op.ShouldRetry(err) || attempt == config.MaxAttempts {
			break
		}

		op.OnRetryWait(attempt, delay)
		if err := ctxutil.Sleep(ctx, delay); err != nil {
			return result, attempts, err
		}
		delay = config.next(delay)
	}

	return result, attempts, finalErr
}

// SimpleRetryOperation adapts plain functions to RetryableOperation.
type SimpleRetryOperation[R any] struct {
	AttemptFunc     func(ctx context.Context, attempt int) (R, bool, error)
	ShouldRetryFunc func(err error) bool
	OnRetryWaitFunc func(attempt int, delay time.Duration)
}

// Attempt implements RetryableOperation.
func (s *SimpleRetryOperation[R]) Attempt(ctx context.Context, attempt int) (R, bool, error) {
	return s.AttemptFunc(ctx, attempt)
}

// ShouldRetry implements RetryableOperation.
func (s *SimpleRetryOperation[R]) ShouldRetry(err error) bool {
	if s.ShouldRetryFunc == nil {
		return false
	}
	return s.ShouldRetryFunc(err)
}

// OnRetryWait implements RetryableOperation.
func (s *SimpleRetryOperation[R]) OnRetryWait(attempt int, delay time.Duration) {
	if s.OnRetryWaitFunc != nil {
		s.OnRetryWaitFunc(attempt, delay)
	}
}

// Compile-time interface check.
var _ RetryableOperation[any] = (*SimpleRetryOperation[any])(nil)
