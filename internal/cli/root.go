// Package cli provides the command-line interface for gitbatch.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ItsDalk-Lane/gitbatch/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   = zerolog.Nop() //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex    //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the logger initialized by the root command. Before
// PersistentPreRunE runs it returns a logger that discards everything.
//
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func setLogger(logger zerolog.Logger) {
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

// newRootCmd creates the root command for the gitbatch CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "gitbatch",
		Short: "Commit large working trees in size-bounded batches",
		Long: `gitbatch reads the repository status, estimates how large each change is and
commits everything in batches that stay under a byte budget. Each batch is
staged, committed and optionally pushed before the next one starts, so a
huge change set never turns into one oversized push.

Configuration is read from ~/.gitbatch/config.yaml, <repo>/.gitbatch.yaml
and GITBATCH_* environment variables. Flags override all of them.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd, flags); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if _, err := tui.ParseFormat(flags.Output); err != nil {
				return err
			}

			logger := InitLogger(flags.Verbose, flags.Quiet).
				With().Str("run_id", uuid.NewString()).Logger()
			setLogger(logger)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		SilenceUsage: true,
		// Execute renders errors itself so structured output stays parseable.
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddStatusCommand(cmd, flags)
	AddPlanCommand(cmd, flags)
	AddCommitCommand(cmd, flags)
	AddWatchCommand(cmd, flags)
	AddConfigCommand(cmd, flags)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// A returned error has already been shown to the user.
func Execute(ctx context.Context, info BuildInfo) error {
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		renderError(cmd, flags, err)
	}
	return err
}

// renderError writes err to stderr in the requested format, falling back to
// text when the format itself was invalid.
func renderError(cmd *cobra.Command, flags *GlobalFlags, err error) {
	format, parseErr := tui.ParseFormat(flags.Output)
	if parseErr != nil {
		format = tui.FormatText
	}
	tui.NewOutput(cmd.ErrOrStderr(), format).Error(err)
}
