package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ItsDalk-Lane/gitbatch/internal/batch"
	"github.com/ItsDalk-Lane/gitbatch/internal/clock"
	"github.com/ItsDalk-Lane/gitbatch/internal/config"
	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/queue"
	"github.com/ItsDalk-Lane/gitbatch/internal/signal"
	"github.com/ItsDalk-Lane/gitbatch/internal/tui"
)

// commitOptions holds flags of the commit command.
type commitOptions struct {
	message string
	push    bool
	limit   string
	yes     bool
	noBatch bool
}

// commitDeps holds the collaborators runCommitWithDeps needs, so tests can
// replace the terminal and the clock.
type commitDeps struct {
	prompter    tui.Prompter
	interactive func() bool
	clock       clock.Clock
}

func defaultCommitDeps() commitDeps {
	return commitDeps{
		prompter:    tui.NewHuhPrompter(),
		interactive: tui.IsInteractive,
		clock:       clock.RealClock{},
	}
}

// commitRun describes one pass of the commit flow.
type commitRun struct {
	message  string
	batching bool
	push     bool
	stop     <-chan struct{}
	clock    clock.Clock
	progress func(batch.BatchProgress)
}

// AddCommitCommand adds the commit command to the root command.
func AddCommitCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newCommitCmd(flags))
}

func newCommitCmd(flags *GlobalFlags) *cobra.Command {
	opts := &commitOptions{}
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit all changes, split into size-bounded batches",
		Long: `Commit every change in the repository. When the estimated size exceeds the
batch budget, the changes are split into batches. Each batch is staged,
committed and, with --push, pushed before the next batch starts.

Without -m the message comes from the configured template or command.
Batched commits get a "[batch i/N]" prefix and a list of their files.

Press Ctrl+C once to stop after the current batch, twice to abort.

Examples:
  gitbatch commit -m "import photos" --yes
  gitbatch commit --limit 5MiB --push
  gitbatch commit --no-batch -m "one commit"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommit(cmd.Context(), cmd, flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "commit message (default: generated)")
	cmd.Flags().BoolVar(&opts.push, "push", false, "push after every commit")
	cmd.Flags().StringVar(&opts.limit, "limit", "", "per-batch size budget, e.g. 10MiB or 500KB")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.noBatch, "no-batch", false, "commit everything at once regardless of size")
	return cmd
}

func runCommit(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *commitOptions) error {
	return runCommitWithDeps(ctx, cmd, flags, opts, defaultCommitDeps())
}

func runCommitWithDeps(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *commitOptions, deps commitDeps) error {
	if err := validateLimit(opts.limit); err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, flags,
		lookupBinding(cmd, "batch.size_limit", "limit"),
		lookupBinding(cmd, "git.push_on_commit", "push"),
	)
	if err != nil {
		return err
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	ctx = handler.Context()

	candidates, err := a.candidates(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		renderCommitResult(a.out, &batch.Result{NoChanges: true}, nil)
		return nil
	}

	msg := opts.message
	if !opts.yes {
		if msg, err = confirmCommit(ctx, a, candidates, msg, deps); err != nil {
			return err
		}
	}

	run := commitRun{
		message:  msg,
		batching: a.cfg.Batch.Enabled && !opts.noBatch,
		push:     a.cfg.Git.PushOnCommit,
		stop:     handler.Interrupted(),
		clock:    deps.clock,
	}
	if !a.out.Format().Structured() {
		run.progress = progressPrinter(a.out)
	}

	result, err := a.commit(ctx, candidates, run)
	renderCommitResult(a.out, result, err)
	return err
}

// confirmCommit asks before committing and returns the message to use.
// Without -m the generated message is offered for editing. Without a
// terminal it refuses, since nobody can answer.
func confirmCommit(ctx context.Context, a *app, candidates []batch.Candidate, msg string, deps commitDeps) (string, error) {
	if !deps.interactive() {
		return "", errors.ErrNonInteractiveMode
	}

	if strings.TrimSpace(msg) == "" {
		generated, err := a.generateMessage(ctx, candidates, deps.clock)
		if err != nil {
			return "", err
		}
		if msg, err = deps.prompter.Input("Commit message", generated); err != nil {
			return "", err
		}
	}

	question := fmt.Sprintf("Commit %d changed files in %s?", len(candidates), a.repo.Root())
	if a.cfg.Git.PushOnCommit {
		question = fmt.Sprintf("Commit and push %d changed files in %s?", len(candidates), a.repo.Root())
	}
	ok, err := deps.prompter.Confirm(question, true)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.ErrOperationCanceled
	}
	return msg, nil
}

// commit runs the stage, commit and push flow under the operation lease and
// the repository lock.
func (a *app) commit(ctx context.Context, candidates []batch.Candidate, run commitRun) (*batch.Result, error) {
	msg := run.message
	if strings.TrimSpace(msg) == "" {
		var err error
		if msg, err = a.generateMessage(ctx, candidates, run.clock); err != nil {
			return nil, err
		}
	}

	lease, err := a.queue.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	lock, err := queue.LockRepo(a.repo.GitDir())
	if err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			a.logger.Warn().Err(unlockErr).Str("path", lock.Path()).Msg("failed to release repository lock")
		}
	}()

	opts := []batch.Option{
		batch.WithClock(run.clock),
		batch.WithStop(run.stop),
		batch.WithProgress(run.progress),
	}
	if run.push {
		opts = append(opts, a.pushOption())
	}

	orch := a.orchestrator(run.batching, opts...)
	return orch.ExecuteBatched(ctx, lease, candidates, msg, a.cfg.Batch.SizeLimit.Int64())
}

// generateMessage produces a commit message for candidates with the
// configured generator.
func (a *app) generateMessage(ctx context.Context, candidates []batch.Candidate, clk clock.Clock) (string, error) {
	gen, err := a.generator(clk)
	if err != nil {
		return "", err
	}
	return gen.Generate(ctx, candidatePaths(candidates))
}

func candidatePaths(candidates []batch.Candidate) []string {
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.Path
	}
	return paths
}

// progressPrinter reports batch phases as text.
func progressPrinter(out tui.Output) func(batch.BatchProgress) {
	return func(p batch.BatchProgress) {
		switch p.Phase {
		case batch.PhaseStaging:
			if p.EstimatedSize > 0 {
				out.Info(fmt.Sprintf("[%d/%d] staging %d files (~%s)", p.Index, p.Total, p.Files, config.ByteSize(p.EstimatedSize)))
				return
			}
			out.Info(fmt.Sprintf("[%d/%d] staging %d files", p.Index, p.Total, p.Files))
		case batch.PhasePushing:
			out.Info(fmt.Sprintf("[%d/%d] pushing", p.Index, p.Total))
		}
	}
}

// renderCommitResult reports the outcome. Errors themselves are shown by
// Execute; here only the committed part of a failed run is summarized.
func renderCommitResult(out tui.Output, result *batch.Result, err error) {
	if result == nil {
		return
	}
	if out.Format().Structured() {
		if encErr := out.Encode(result); encErr != nil {
			out.Error(encErr)
		}
		return
	}

	if result.NoChanges {
		out.Info("Nothing to commit, working tree clean")
		return
	}

	for _, b := range result.Batches {
		switch {
		case b.Phase != batch.PhaseDone:
			continue
		case b.NoChanges:
			out.Warning(fmt.Sprintf("[%d/%d] nothing left to stage, skipped", b.Index, b.Total))
		default:
			out.Success(commitLine(b))
		}
	}

	committed := result.Committed()
	var batchErr *errors.BatchError
	switch {
	case err == nil && result.Batched:
		out.Success(fmt.Sprintf("Committed %d batches", committed))
	case stderrors.As(err, &batchErr) && batchErr.Completed > 0:
		out.Warning(fmt.Sprintf("%d of %d batches were committed before the failure and were kept", batchErr.Completed, batchErr.Total))
	case err != nil && committed > 0:
		out.Warning(fmt.Sprintf("Stopped after %d committed batches", committed))
	}
}

func commitLine(b batch.BatchResult) string {
	subject, _, _ := strings.Cut(b.Message, "\n")
	line := subject
	if b.Hash != "" {
		line = b.Hash + " " + subject
	}
	if b.Total > 1 {
		line = fmt.Sprintf("%s (%d files, ~%s)", line, len(b.Files), config.ByteSize(b.EstimatedSize))
	}
	if b.Pushed {
		line += ", pushed"
	}
	return line
}
