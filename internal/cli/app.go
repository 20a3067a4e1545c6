package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ItsDalk-Lane/gitbatch/internal/batch"
	"github.com/ItsDalk-Lane/gitbatch/internal/clock"
	"github.com/ItsDalk-Lane/gitbatch/internal/config"
	"github.com/ItsDalk-Lane/gitbatch/internal/git"
	"github.com/ItsDalk-Lane/gitbatch/internal/message"
	"github.com/ItsDalk-Lane/gitbatch/internal/porcelain"
	"github.com/ItsDalk-Lane/gitbatch/internal/queue"
	"github.com/ItsDalk-Lane/gitbatch/internal/tui"
)

// app bundles what every repository command needs.
type app struct {
	repo   *git.Repo
	runner *git.CLIRunner
	cfg    *config.Config
	out    tui.Output
	queue  *queue.Queue
	logger zerolog.Logger
}

// newApp opens the repository named by --repo, loads its configuration and
// prepares output for cmd.
func newApp(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, bindings ...config.FlagBinding) (*app, error) {
	format, err := tui.ParseFormat(flags.Output)
	if err != nil {
		return nil, err
	}

	repo, err := git.OpenRepo(flags.Repo)
	if err != nil {
		return nil, err
	}

	logger := GetLogger().With().Str("repo", repo.Root()).Logger()

	cfg, err := config.Load(ctx, repo.Root(), bindings...)
	if err != nil {
		return nil, err
	}

	runner, err := git.NewRunner(ctx, repo.Root(), git.WithRunnerLogger(logger))
	if err != nil {
		return nil, err
	}

	return &app{
		repo:   repo,
		runner: runner,
		cfg:    cfg,
		out:    tui.NewOutput(cmd.OutOrStdout(), format),
		queue:  queue.New(queue.WithLogger(logger)),
		logger: logger,
	}, nil
}

// candidates collects the working tree changes as commit candidates.
func (a *app) candidates(ctx context.Context) ([]batch.Candidate, error) {
	entries, err := a.changes(ctx)
	if err != nil {
		return nil, err
	}
	return batch.CandidatesFromEntries(entries), nil
}

// changes collects the classified status entries, minus excluded paths.
func (a *app) changes(ctx context.Context) ([]porcelain.ChangeEntry, error) {
	collector := porcelain.NewCollector(a.runner, porcelain.WithLogger(a.logger))
	return collector.Collect(ctx, porcelain.Excludes(a.cfg.Status.ExcludePatterns))
}

// estimator builds a size estimator from the batch settings.
func (a *app) estimator() *batch.Estimator {
	return batch.NewEstimator(a.runner,
		batch.WithBytesPerLine(a.cfg.Batch.BytesPerLine),
		batch.WithUnavailableSize(a.cfg.Batch.UnavailableSize.Int64()),
		batch.WithFailedQuerySize(a.cfg.Batch.FailedQuerySize.Int64()),
		batch.WithEstimatorLogger(a.logger),
	)
}

// orchestrator builds an orchestrator from the configuration. Extra options
// are applied last.
func (a *app) orchestrator(batching bool, extra ...batch.Option) *batch.Orchestrator {
	opts := []batch.Option{
		batch.WithLogger(a.logger),
		batch.WithEstimator(a.estimator()),
		batch.WithPlanner(batch.Planner{SafetyMargin: a.cfg.Batch.SafetyMargin}),
		batch.WithBatching(batching),
		batch.WithDelay(a.cfg.Batch.Delay),
		batch.WithMaxListedFiles(a.cfg.Batch.MaxListedFiles),
		batch.WithHashReader(a.repo),
	}
	return batch.NewOrchestrator(a.runner, append(opts, extra...)...)
}

// pushOption wires a retrying pusher for the configured remote.
func (a *app) pushOption() batch.Option {
	pusher := git.NewPushRunner(a.runner, git.WithPushLogger(a.logger))
	return batch.WithPush(pusher, a.cfg.Git.Remote, a.cfg.Git.RemoteBranch)
}

// generator returns the commit message generator for the configured mode.
// Command mode falls back to the template when the command fails.
func (a *app) generator(clk clock.Clock) (message.Generator, error) {
	tmpl, err := message.NewTemplateGenerator(a.cfg.Message.Template, clk)
	if err != nil {
		return nil, err
	}
	if a.cfg.Message.Mode != config.MessageModeCommand {
		return tmpl, nil
	}

	cmdGen, err := message.NewCommandGenerator(a.cfg.Message.Command,
		message.WithWorkDir(a.repo.Root()),
		message.WithTimeout(a.cfg.Message.Timeout),
		message.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("message command: %w", err)
	}
	return &message.FallbackGenerator{Primary: cmdGen, Fallback: tmpl, Logger: a.logger}, nil
}

// lookupBinding binds a config key to a local flag of cmd.
func lookupBinding(cmd *cobra.Command, key, flag string) config.FlagBinding {
	return config.FlagBinding{Key: key, Flag: cmd.Flags().Lookup(flag)}
}
