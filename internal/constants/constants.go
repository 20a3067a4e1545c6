// Package constants provides centralized constant values used throughout gitbatch.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by gitbatch.
const (
	// AppHome is the hidden directory name in the user's home directory where
	// gitbatch keeps its global config and logs.
	AppHome = ".gitbatch"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the name of the rotating CLI log file.
	CLILogFileName = "gitbatch.log"

	// GlobalConfigName is the name of the global configuration file in AppHome.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the per-repository configuration file.
	ProjectConfigName = ".gitbatch.yaml"

	// RepoLockName is the advisory lock file created inside the .git directory.
	RepoLockName = "gitbatch.lock"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "GITBATCH"
)

// Size estimation defaults. A changed line is assumed to weigh a fixed number
// of bytes; files whose counts cannot be obtained get flat estimates.
const (
	// DefaultBytesPerLine is the assumed size of one added or deleted line.
	DefaultBytesPerLine int64 = 50

	// DefaultUnavailableSize is used when line counts are unavailable
	// (binary files, pure renames).
	DefaultUnavailableSize int64 = 1024

	// DefaultFailedQuerySize is used when the line-count query itself fails.
	DefaultFailedQuerySize int64 = 10 * 1024
)

// Batch planning and execution defaults.
const (
	// DefaultBatchSizeLimit is the default per-batch byte budget (10 MiB).
	DefaultBatchSizeLimit int64 = 10 * 1024 * 1024

	// MinBatchSizeLimit is the smallest accepted byte budget.
	MinBatchSizeLimit int64 = 1024

	// MaxBatchSizeLimit is the largest accepted byte budget.
	MaxBatchSizeLimit int64 = 1024 * 1024 * 1024

	// DefaultSafetyMargin scales the budget into the effective planning target.
	DefaultSafetyMargin = 0.8

	// DefaultBatchDelay is the pause between two consecutive batches.
	DefaultBatchDelay = 1 * time.Second

	// DefaultMaxListedFiles is how many paths a batch commit message lists
	// before summarizing the rest.
	DefaultMaxListedFiles = 10
)

// Git defaults.
const (
	// DefaultRemote is the remote batches are pushed to.
	DefaultRemote = "origin"

	// DefaultRemoteBranch is the branch batches are pushed to.
	DefaultRemoteBranch = "main"
)

// Retry configuration defaults for recoverable operations.
const (
	// MaxRetryAttempts is the maximum number of attempts for recoverable errors.
	MaxRetryAttempts = 3

	// InitialBackoff is the initial backoff duration before the first retry.
	InitialBackoff = 1 * time.Second
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated files are kept.
	LogMaxAgeDays = 28

	// LogCompress gzips rotated files.
	LogCompress = true
)

// Message generation and watch defaults.
const (
	// DefaultMessageTemplate is the text/template used when no message is given.
	DefaultMessageTemplate = "update {{.Count}} files - {{.Date}}"

	// DefaultMessageTimeout bounds an external message command.
	DefaultMessageTimeout = 2 * time.Minute

	// DefaultWatchInterval is the period between automatic commits.
	DefaultWatchInterval = 30 * time.Minute

	// DefaultEditingDelay is how long the tree must be quiet before a
	// scheduled automatic commit runs.
	DefaultEditingDelay = 5 * time.Minute
)

// DefaultExcludePatterns returns the substrings that exclude a path from
// the change list.
func DefaultExcludePatterns() []string {
	return []string{"node_modules/", ".git/"}
}
