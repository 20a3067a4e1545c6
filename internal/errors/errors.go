// Package errors provides centralized error handling for gitbatch.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrGitOperation indicates that a git command (status, add, commit, push...)
	// failed during execution.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrMalformedStatusLine indicates a porcelain status line too short to carry
	// two state characters, a separator and a path.
	ErrMalformedStatusLine = errors.New("malformed status line")

	// ErrInvalidUTF8Path indicates a quoted path whose unescaped bytes are not valid UTF-8.
	// It is only ever reported inside a DecodeWarning.
	ErrInvalidUTF8Path = errors.New("quoted path is not valid utf-8")

	// ErrNoChanges indicates there is nothing staged to commit.
	// Callers treat it as a no-op rather than a failure.
	ErrNoChanges = errors.New("no changes to commit")

	// ErrStageFailed indicates that files could not be added to the index.
	ErrStageFailed = errors.New("failed to stage files")

	// ErrBatchCommitFailed indicates that a batch could not be staged, committed
	// or pushed. Subsequent batches are not attempted.
	ErrBatchCommitFailed = errors.New("batch commit failed")

	// ErrPushAuthFailed indicates that git push failed due to authentication.
	ErrPushAuthFailed = errors.New("push authentication failed")

	// ErrPushNetworkFailed indicates that git push failed due to network issues.
	ErrPushNetworkFailed = errors.New("push network error")

	// ErrLeaseRequired indicates the orchestrator was invoked without holding the
	// operation queue lease.
	ErrLeaseRequired = errors.New("operation lease required")

	// ErrLockHeld indicates another gitbatch process holds the repository lock.
	ErrLockHeld = errors.New("repository lock held by another process")

	// ErrMessageGeneration indicates the configured commit message generator failed.
	ErrMessageGeneration = errors.New("commit message generation failed")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidBatch indicates an invalid batch configuration value.
	ErrConfigInvalidBatch = errors.New("invalid batch configuration")

	// ErrConfigInvalidGit indicates an invalid git configuration value.
	ErrConfigInvalidGit = errors.New("invalid git configuration")

	// ErrConfigInvalidMessage indicates an invalid message configuration value.
	ErrConfigInvalidMessage = errors.New("invalid message configuration")

	// ErrConfigInvalidWatch indicates an invalid watch configuration value.
	ErrConfigInvalidWatch = errors.New("invalid watch configuration")

	// ErrInvalidSize indicates a byte size string could not be parsed.
	ErrInvalidSize = errors.New("invalid size")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrOperationCanceled indicates the user declined a prompt or interrupted
	// the run.
	ErrOperationCanceled = errors.New("operation canceled")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted without a terminal and without --yes.
	ErrNonInteractiveMode = errors.New("use --yes in non-interactive mode")
)
