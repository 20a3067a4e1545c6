package config

import (
	"strings"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - batch.size_limit must be between 1 KiB and 1 GiB
//   - batch.safety_margin must be in (0, 1]
//   - batch.bytes_per_line must be positive
//   - batch.delay must not be negative
//   - git.remote must not be empty when push_on_commit is set
//   - message.mode must be template or command, and command mode needs a command
//   - watch.interval must be positive and watch.editing_delay not negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateBatchConfig(&cfg.Batch); err != nil {
		return err
	}

	if err := validateGitConfig(&cfg.Git); err != nil {
		return err
	}

	if err := validateMessageConfig(&cfg.Message); err != nil {
		return err
	}

	return validateWatchConfig(&cfg.Watch)
}

// validateBatchConfig checks batch-specific configuration values.
func validateBatchConfig(cfg *BatchConfig) error {
	limit := cfg.SizeLimit.Int64()
	if limit < constants.MinBatchSizeLimit || limit > constants.MaxBatchSizeLimit {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.size_limit must be between %s and %s, got %s",
			ByteSize(constants.MinBatchSizeLimit), ByteSize(constants.MaxBatchSizeLimit), cfg.SizeLimit)
	}

	if cfg.SafetyMargin <= 0 || cfg.SafetyMargin > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.safety_margin must be in (0, 1], got %g", cfg.SafetyMargin)
	}

	if cfg.BytesPerLine <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.bytes_per_line must be positive, got %d", cfg.BytesPerLine)
	}

	if cfg.UnavailableSize < 0 || cfg.FailedQuerySize < 0 {
		return errors.Wrap(errors.ErrConfigInvalidBatch,
			"batch.unavailable_size and batch.failed_query_size cannot be negative")
	}

	if cfg.Delay < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.delay cannot be negative, got %s", cfg.Delay)
	}

	if cfg.MaxListedFiles < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.max_listed_files cannot be negative, got %d", cfg.MaxListedFiles)
	}

	return nil
}

// validateGitConfig checks push settings.
func validateGitConfig(cfg *GitConfig) error {
	if cfg.PushOnCommit && strings.TrimSpace(cfg.Remote) == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit,
			"git.remote must not be empty when git.push_on_commit is enabled")
	}
	return nil
}

// validateMessageConfig checks message generation settings.
func validateMessageConfig(cfg *MessageConfig) error {
	switch cfg.Mode {
	case MessageModeTemplate:
	case MessageModeCommand:
		if strings.TrimSpace(cfg.Command) == "" {
			return errors.Wrap(errors.ErrConfigInvalidMessage,
				"message.command must be set when message.mode is command")
		}
		if cfg.Timeout <= 0 {
			return errors.Wrapf(errors.ErrConfigInvalidMessage,
				"message.timeout must be positive, got %s", cfg.Timeout)
		}
	default:
		return errors.Wrapf(errors.ErrConfigInvalidMessage,
			"message.mode must be %q or %q, got %q", MessageModeTemplate, MessageModeCommand, cfg.Mode)
	}
	return nil
}

// validateWatchConfig checks watch loop settings.
func validateWatchConfig(cfg *WatchConfig) error {
	if cfg.Interval <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.interval must be positive, got %s", cfg.Interval)
	}
	if cfg.EditingDelay < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.editing_delay cannot be negative, got %s", cfg.EditingDelay)
	}
	return nil
}
