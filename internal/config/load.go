package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// FlagBinding ties a config key to a CLI flag. The flag only wins when it
// was set on the command line.
type FlagBinding struct {
	Key  string
	Flag *pflag.Flag
}

// newViperInstance creates a new Viper instance with the GITBATCH_ env
// prefix, key replacer and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// repoRoot locates the repository config; an empty repoRoot skips it.
// Missing config files are not an error.
func Load(ctx context.Context, repoRoot string, bindings ...FlagBinding) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	if repoRoot != "" {
		if err := mergeConfigFile(v, ProjectConfigPath(repoRoot)); err != nil {
			return nil, errors.Wrap(err, "failed to read repository config file")
		}
	}

	if err := bindFlags(v, bindings); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Bool("batch.enabled", cfg.Batch.Enabled).
		Int64("batch.size_limit", cfg.Batch.SizeLimit.Int64()).
		Str("message.mode", cfg.Message.Mode).
		Bool("git.push_on_commit", cfg.Git.PushOnCommit).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		if err := mergeConfigFile(v, projectConfigPath); err != nil {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// loadGlobalConfig attempts to load ~/.gitbatch/config.yaml.
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// mergeConfigFile merges path over the values already loaded.
func mergeConfigFile(v *viper.Viper, path string) error {
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return err
	}
	return nil
}

func bindFlags(v *viper.Viper, bindings []FlagBinding) error {
	for _, b := range bindings {
		if b.Flag == nil {
			continue
		}
		if err := v.BindPFlag(b.Key, b.Flag); err != nil {
			return errors.Wrapf(err, "failed to bind flag --%s", b.Flag.Name)
		}
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("status.exclude_patterns", d.Status.ExcludePatterns)

	v.SetDefault("batch.enabled", d.Batch.Enabled)
	v.SetDefault("batch.size_limit", d.Batch.SizeLimit.Int64())
	v.SetDefault("batch.bytes_per_line", d.Batch.BytesPerLine)
	v.SetDefault("batch.safety_margin", d.Batch.SafetyMargin)
	v.SetDefault("batch.unavailable_size", d.Batch.UnavailableSize.Int64())
	v.SetDefault("batch.failed_query_size", d.Batch.FailedQuerySize.Int64())
	v.SetDefault("batch.delay", d.Batch.Delay.String())
	v.SetDefault("batch.max_listed_files", d.Batch.MaxListedFiles)

	v.SetDefault("git.push_on_commit", d.Git.PushOnCommit)
	v.SetDefault("git.remote", d.Git.Remote)
	v.SetDefault("git.remote_branch", d.Git.RemoteBranch)

	v.SetDefault("message.mode", d.Message.Mode)
	v.SetDefault("message.template", d.Message.Template)
	v.SetDefault("message.command", d.Message.Command)
	v.SetDefault("message.timeout", d.Message.Timeout.String())

	v.SetDefault("watch.interval", d.Watch.Interval.String())
	v.SetDefault("watch.editing_delay", d.Watch.EditingDelay.String())
}

// viperDecoderOption returns the decoder options for Viper unmarshal:
// durations and byte sizes from strings, comma-separated lists from env vars.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			StringToByteSizeHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
