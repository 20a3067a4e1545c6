package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ItsDalk-Lane/gitbatch/internal/clock"
	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/signal"
	"github.com/ItsDalk-Lane/gitbatch/internal/watch"
)

// watchOptions holds flags of the watch command.
type watchOptions struct {
	message      string
	push         bool
	limit        string
	once         bool
	interval     string
	editingDelay string
}

// AddWatchCommand adds the watch command to the root command.
func AddWatchCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newWatchCmd(flags))
}

func newWatchCmd(flags *GlobalFlags) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Commit changes periodically while the repository is edited",
		Long: `Run the commit flow on a schedule. A due run waits until no file in the
working tree has changed for the editing delay, so files are not committed
half-written. No confirmation is asked.

The first Ctrl+C stops the loop after the batch in flight; a second one
aborts it.

Examples:
  gitbatch watch
  gitbatch watch --interval 10m --editing-delay 1m --push
  gitbatch watch --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd, flags, opts, clock.RealClock{})
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "commit message (default: generated)")
	cmd.Flags().BoolVar(&opts.push, "push", false, "push after every commit")
	cmd.Flags().StringVar(&opts.limit, "limit", "", "per-batch size budget, e.g. 10MiB or 500KB")
	cmd.Flags().BoolVar(&opts.once, "once", false, "run the commit flow once and exit")
	cmd.Flags().StringVar(&opts.interval, "interval", constants.DefaultWatchInterval.String(), "time between commits")
	cmd.Flags().StringVar(&opts.editingDelay, "editing-delay", constants.DefaultEditingDelay.String(),
		"quiet time required before a commit (0 disables)")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *watchOptions, clk clock.Clock) error {
	if err := validateLimit(opts.limit); err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, flags,
		lookupBinding(cmd, "batch.size_limit", "limit"),
		lookupBinding(cmd, "git.push_on_commit", "push"),
		lookupBinding(cmd, "watch.interval", "interval"),
		lookupBinding(cmd, "watch.editing_delay", "editing-delay"),
	)
	if err != nil {
		return err
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()

	run := commitRun{
		message:  opts.message,
		batching: a.cfg.Batch.Enabled,
		push:     a.cfg.Git.PushOnCommit,
		stop:     handler.Interrupted(),
		clock:    clk,
	}
	if !a.out.Format().Structured() {
		run.progress = progressPrinter(a.out)
	}

	// Commits run on the handler context so the first signal lets the batch
	// in flight finish; only the loop itself stops right away.
	trigger := func(context.Context) error {
		return a.scheduledCommit(handler.Context(), run)
	}

	if opts.once {
		return trigger(handler.Context())
	}

	loopCtx, cancel := context.WithCancel(handler.Context())
	defer cancel()
	go func() {
		select {
		case <-handler.Interrupted():
			cancel()
		case <-loopCtx.Done():
		}
	}()

	if !a.out.Format().Structured() {
		a.out.Info(fmt.Sprintf("Watching %s: committing every %s once files are quiet for %s",
			a.repo.Root(), a.cfg.Watch.Interval, a.cfg.Watch.EditingDelay))
	}

	w := watch.New(a.repo.Root(), trigger,
		watch.WithInterval(a.cfg.Watch.Interval),
		watch.WithEditingDelay(a.cfg.Watch.EditingDelay),
		watch.WithLogger(a.logger),
	)
	return w.Run(loopCtx)
}

// scheduledCommit commits whatever changed since the last run.
func (a *app) scheduledCommit(ctx context.Context, run commitRun) error {
	candidates, err := a.candidates(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		a.logger.Debug().Msg("no changes, skipping scheduled commit")
		return nil
	}

	result, err := a.commit(ctx, candidates, run)
	renderCommitResult(a.out, result, err)
	return err
}

