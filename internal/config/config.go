// Package config provides configuration management for gitbatch with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (bound through FlagBinding)
//  2. Environment variables (GITBATCH_* prefix)
//  3. Repository config (<repo>/.gitbatch.yaml)
//  4. Global config (~/.gitbatch/config.yaml)
//  5. Built-in defaults
//
// This package may import internal/constants and internal/errors only.
package config

import (
	"time"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
)

// Message generation modes.
const (
	// MessageModeTemplate renders message.template.
	MessageModeTemplate = "template"

	// MessageModeCommand runs message.command and falls back to the template.
	MessageModeCommand = "command"
)

// Config is the root configuration structure for gitbatch.
type Config struct {
	// Status controls how the change list is collected.
	Status StatusConfig `yaml:"status" json:"status" toml:"status" mapstructure:"status"`

	// Batch controls size estimation, planning and batch execution.
	Batch BatchConfig `yaml:"batch" json:"batch" toml:"batch" mapstructure:"batch"`

	// Git contains remote and push settings.
	Git GitConfig `yaml:"git" json:"git" toml:"git" mapstructure:"git"`

	// Message controls how commit messages are produced when none is given.
	Message MessageConfig `yaml:"message" json:"message" toml:"message" mapstructure:"message"`

	// Watch controls the periodic auto-commit loop.
	Watch WatchConfig `yaml:"watch" json:"watch" toml:"watch" mapstructure:"watch"`
}

// StatusConfig contains change-list settings.
type StatusConfig struct {
	// ExcludePatterns are substrings; a path containing any of them is skipped.
	// Default: node_modules/, .git/
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns" toml:"exclude_patterns" mapstructure:"exclude_patterns"`
}

// BatchConfig contains batching settings.
type BatchConfig struct {
	// Enabled turns size-bounded batching on. When false every change goes
	// into a single commit.
	// Default: true
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled" mapstructure:"enabled"`

	// SizeLimit is the per-batch byte budget. Accepts "10MiB", "512KB" or a
	// plain byte count.
	// Default: 10 MiB, Valid range: 1 KiB to 1 GiB
	SizeLimit ByteSize `yaml:"size_limit" json:"size_limit" toml:"size_limit" mapstructure:"size_limit"`

	// BytesPerLine is the assumed weight of one added or deleted line.
	// Default: 50
	BytesPerLine int64 `yaml:"bytes_per_line" json:"bytes_per_line" toml:"bytes_per_line" mapstructure:"bytes_per_line"`

	// SafetyMargin scales the budget into the planning target.
	// Default: 0.8, Valid range: (0, 1]
	SafetyMargin float64 `yaml:"safety_margin" json:"safety_margin" toml:"safety_margin" mapstructure:"safety_margin"`

	// UnavailableSize is the estimate for files without line counts.
	// Default: 1 KiB
	UnavailableSize ByteSize `yaml:"unavailable_size" json:"unavailable_size" toml:"unavailable_size" mapstructure:"unavailable_size"`

	// FailedQuerySize is the estimate when the line-count query fails.
	// Default: 10 KiB
	FailedQuerySize ByteSize `yaml:"failed_query_size" json:"failed_query_size" toml:"failed_query_size" mapstructure:"failed_query_size"`

	// Delay is the pause between two consecutive batches.
	// Default: 1s
	Delay time.Duration `yaml:"delay" json:"delay" toml:"delay" mapstructure:"delay"`

	// MaxListedFiles is how many paths a batch message lists.
	// Default: 10
	MaxListedFiles int `yaml:"max_listed_files" json:"max_listed_files" toml:"max_listed_files" mapstructure:"max_listed_files"`
}

// GitConfig contains push settings.
type GitConfig struct {
	// PushOnCommit pushes after every commit.
	// Default: false
	PushOnCommit bool `yaml:"push_on_commit" json:"push_on_commit" toml:"push_on_commit" mapstructure:"push_on_commit"`

	// Remote is the remote to push to.
	// Default: "origin"
	Remote string `yaml:"remote" json:"remote" toml:"remote" mapstructure:"remote"`

	// RemoteBranch is the branch to push to. Empty means the current branch.
	// Default: "main"
	RemoteBranch string `yaml:"remote_branch" json:"remote_branch" toml:"remote_branch" mapstructure:"remote_branch"`
}

// MessageConfig contains commit message settings.
type MessageConfig struct {
	// Mode is "template" or "command".
	// Default: "template"
	Mode string `yaml:"mode" json:"mode" toml:"mode" mapstructure:"mode"`

	// Template is a text/template with .Count, .Files and .Date.
	Template string `yaml:"template" json:"template" toml:"template" mapstructure:"template"`

	// Command is run in command mode. Changed paths arrive on stdin and the
	// message is read from stdout.
	Command string `yaml:"command" json:"command" toml:"command" mapstructure:"command"`

	// Timeout bounds a single command run.
	// Default: 2m
	Timeout time.Duration `yaml:"timeout" json:"timeout" toml:"timeout" mapstructure:"timeout"`
}

// WatchConfig contains auto-commit loop settings.
type WatchConfig struct {
	// Interval is the time between automatic commits.
	// Default: 30m
	Interval time.Duration `yaml:"interval" json:"interval" toml:"interval" mapstructure:"interval"`

	// EditingDelay is how long the tree must be quiet before a due commit
	// runs. Zero disables file watching.
	// Default: 5m
	EditingDelay time.Duration `yaml:"editing_delay" json:"editing_delay" toml:"editing_delay" mapstructure:"editing_delay"`
}

// DefaultConfig returns a new Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Status: StatusConfig{
			ExcludePatterns: constants.DefaultExcludePatterns(),
		},
		Batch: BatchConfig{
			Enabled:         true,
			SizeLimit:       ByteSize(constants.DefaultBatchSizeLimit),
			BytesPerLine:    constants.DefaultBytesPerLine,
			SafetyMargin:    constants.DefaultSafetyMargin,
			UnavailableSize: ByteSize(constants.DefaultUnavailableSize),
			FailedQuerySize: ByteSize(constants.DefaultFailedQuerySize),
			Delay:           constants.DefaultBatchDelay,
			MaxListedFiles:  constants.DefaultMaxListedFiles,
		},
		Git: GitConfig{
			Remote:       constants.DefaultRemote,
			RemoteBranch: constants.DefaultRemoteBranch,
		},
		Message: MessageConfig{
			Mode:     MessageModeTemplate,
			Template: constants.DefaultMessageTemplate,
			Timeout:  constants.DefaultMessageTimeout,
		},
		Watch: WatchConfig{
			Interval:     constants.DefaultWatchInterval,
			EditingDelay: constants.DefaultEditingDelay,
		},
	}
}
