// Package batch splits a large change set into commit-sized batches.
// This file implements the stage, commit and push flow.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/clock"
	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/git"
	"github.com/ItsDalk-Lane/gitbatch/internal/queue"
)

// Phase is the step a batch is in.
type Phase int

const (
	// PhasePending means the batch has not started.
	PhasePending Phase = iota
	// PhaseStaging means the batch files are being added to the index.
	PhaseStaging
	// PhaseCommitting means the commit is being created.
	PhaseCommitting
	// PhasePushing means the commit is being pushed.
	PhasePushing
	// PhaseDone means the batch finished.
	PhaseDone
	// PhaseFailed means the batch failed; later batches were not attempted.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseStaging:
		return "staging"
	case PhaseCommitting:
		return "committing"
	case PhasePushing:
		return "pushing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// BatchResult is the outcome of one batch.
type BatchResult struct {
	Index         int      `json:"index" yaml:"index" toml:"index"`
	Total         int      `json:"total" yaml:"total" toml:"total"`
	Files         []string `json:"files" yaml:"files" toml:"files"`
	EstimatedSize int64    `json:"estimated_size" yaml:"estimated_size" toml:"estimated_size"`
	Message       string   `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Hash          string   `json:"hash,omitempty" yaml:"hash,omitempty" toml:"hash,omitempty"`
	Pushed        bool     `json:"pushed" yaml:"pushed" toml:"pushed"`
	// Phase is PhaseDone on success, otherwise the phase that failed.
	Phase Phase `json:"-" yaml:"-" toml:"-"`
	// NoChanges is set when staging produced an empty index and the commit
	// was skipped.
	NoChanges bool  `json:"no_changes,omitempty" yaml:"no_changes,omitempty" toml:"no_changes,omitempty"`
	Err       error `json:"-" yaml:"-" toml:"-"`
}

// Result is the outcome of ExecuteBatched.
type Result struct {
	// Batches holds one entry per attempted batch, in order.
	Batches []BatchResult `json:"batches" yaml:"batches" toml:"batches"`
	// Batched is false when everything went into a single commit.
	Batched bool `json:"batched" yaml:"batched" toml:"batched"`
	// NoChanges is set when there was nothing to commit at all.
	NoChanges bool `json:"no_changes" yaml:"no_changes" toml:"no_changes"`
	// TotalEstimatedSize is the summed estimate of all files. It is zero when
	// batching is disabled, since nothing is estimated then.
	TotalEstimatedSize int64 `json:"total_estimated_size" yaml:"total_estimated_size" toml:"total_estimated_size"`
}

// Committed returns the number of batches that produced a commit.
func (r *Result) Committed() int {
	n := 0
	for _, b := range r.Batches {
		if b.Phase == PhaseDone && !b.NoChanges {
			n++
		}
	}
	return n
}

// BatchProgress is reported each time a batch changes phase.
type BatchProgress struct {
	Index         int
	Total         int
	Phase         Phase
	Files         int
	EstimatedSize int64
	Err           error
}

// HashReader returns the abbreviated HEAD commit hash. git.Repo implements it.
type HashReader interface {
	HeadShortHash() (string, error)
}

// Orchestrator stages, commits and optionally pushes batches in sequence.
type Orchestrator struct {
	runner    git.Runner
	estimator *Estimator
	planner   Planner
	pusher    git.Pusher
	remote    string
	branch    string
	clock     clock.Clock
	delay     time.Duration
	maxListed int
	batching  bool
	hashes    HashReader
	progress  func(BatchProgress)
	stop      <-chan struct{}
	logger    zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithEstimator replaces the default estimator built over the runner.
func WithEstimator(e *Estimator) Option {
	return func(o *Orchestrator) {
		o.estimator = e
	}
}

// WithPlanner sets the planner.
func WithPlanner(p Planner) Option {
	return func(o *Orchestrator) {
		o.planner = p
	}
}

// WithPush enables pushing after every commit. An empty branch pushes the
// currently checked out branch.
func WithPush(pusher git.Pusher, remote, branch string) Option {
	return func(o *Orchestrator) {
		o.pusher = pusher
		o.remote = remote
		o.branch = branch
	}
}

// WithClock sets the clock used for the pause between batches.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithDelay sets the pause between two batches.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.delay = d
	}
}

// WithMaxListedFiles sets how many paths a batch message lists.
func WithMaxListedFiles(n int) Option {
	return func(o *Orchestrator) {
		o.maxListed = n
	}
}

// WithBatching turns batching on or off. When off, every change is
// committed at once without estimating sizes.
func WithBatching(enabled bool) Option {
	return func(o *Orchestrator) {
		o.batching = enabled
	}
}

// WithHashReader records the commit hash of each batch.
func WithHashReader(h HashReader) Option {
	return func(o *Orchestrator) {
		o.hashes = h
	}
}

// WithProgress registers a callback invoked on every phase change.
func WithProgress(fn func(BatchProgress)) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithStop registers a channel that, once closed, ends a batched run before
// the next batch starts. The batch in flight is finished first.
func WithStop(stop <-chan struct{}) Option {
	return func(o *Orchestrator) {
		o.stop = stop
	}
}

// NewOrchestrator creates an Orchestrator over runner. Sizes are estimated
// from the runner's line counts unless WithEstimator is given.
func NewOrchestrator(runner git.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:    runner,
		clock:     clock.RealClock{},
		delay:     constants.DefaultBatchDelay,
		maxListed: constants.DefaultMaxListedFiles,
		batching:  true,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.estimator == nil {
		o.estimator = NewEstimator(runner, WithEstimatorLogger(o.logger))
	}
	return o
}

// ExecuteBatched commits candidates. When batching is disabled or the total
// estimate fits the budget, everything goes into one commit with message
// unchanged. Otherwise the files are planned into batches and each batch is
// staged, committed with a batch-scoped message and pushed when push is
// enabled, pausing between batches.
//
// The caller must hold the queue lease; exclusivity is assumed, not checked
// beyond the lease being present.
//
// The first failing batch stops the run. The returned Result then contains
// the attempted batches and the error is a *errors.BatchError carrying the
// 1-based index and the number of batches that produced a commit. Batches
// committed before the failure are not rolled back.
//
// A batched run first unstages the whole index, so each commit holds exactly
// its planned files. Paths that were staged by hand but are not candidates
// (for example excluded ones) stay in the working tree uncommitted, while a
// single-commit run would include them.
func (o *Orchestrator) ExecuteBatched(ctx context.Context, lease *queue.Lease, candidates []Candidate, message string, budget int64) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, fmt.Errorf("execute batched: %w", gberrors.ErrLeaseRequired)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("commit message cannot be empty: %w", gberrors.ErrEmptyValue)
	}

	candidates = dedupeCandidates(candidates)
	if len(candidates) == 0 {
		o.logger.Info().Msg("no changes to commit")
		return &Result{NoChanges: true}, nil
	}

	if !o.batching {
		return o.commitSingle(ctx, candidates, message, 0)
	}

	files, err := o.estimator.EstimateAll(ctx, candidates)
	if err != nil {
		return nil, err
	}
	total := Total(files)

	if total <= budget {
		o.logger.Debug().
			Int64("total_estimated_size", total).
			Int64("budget", budget).
			Msg("changes fit the budget, committing at once")
		return o.commitSingle(ctx, candidates, message, total)
	}

	batches := o.planner.Plan(files, budget)
	o.logger.Info().
		Int("files", len(files)).
		Int("batches", len(batches)).
		Int64("total_estimated_size", total).
		Int64("budget", budget).
		Msg("committing in batches")

	result := &Result{Batched: true, TotalEstimatedSize: total}
	return result, o.commitBatches(ctx, result, batches, message)
}

// commitSingle stages all candidates and creates one commit.
func (o *Orchestrator) commitSingle(ctx context.Context, candidates []Candidate, message string, total int64) (*Result, error) {
	result := &Result{TotalEstimatedSize: total}

	var paths []string
	for _, c := range candidates {
		paths = append(paths, c.StagePaths()...)
	}

	br := BatchResult{Index: 1, Total: 1, EstimatedSize: total, Phase: PhaseStaging}
	for _, c := range candidates {
		br.Files = append(br.Files, c.Path)
	}
	o.report(br)

	if err := o.runner.Add(ctx, paths); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.Warn().Err(err).Msg("staging listed files failed, staging the whole working tree")
		if err := o.runner.AddAll(ctx); err != nil {
			return o.fail(result, br, fmt.Errorf("%w: %w", gberrors.ErrStageFailed, err))
		}
	}

	staged, err := o.runner.HasStagedChanges(ctx)
	if err != nil {
		br.Phase = PhaseCommitting
		return o.fail(result, br, err)
	}
	if !staged {
		o.logger.Info().Msg("nothing staged after adding changes, skipping commit")
		result.NoChanges = true
		return result, nil
	}

	br.Message = message
	if err := o.commitAndPush(ctx, &br); err != nil {
		return o.fail(result, br, err)
	}
	result.Batches = append(result.Batches, br)
	return result, nil
}

// commitBatches runs the planned batches in order, stopping at the first failure.
func (o *Orchestrator) commitBatches(ctx context.Context, result *Result, batches []Batch, message string) error {
	n := len(batches)

	// Start from a clean index so each commit holds exactly its batch.
	if err := o.runner.ResetIndex(ctx); err != nil {
		return &gberrors.BatchError{Index: 1, Total: n, Phase: PhaseStaging.String(), Err: fmt.Errorf("%w: %w", gberrors.ErrStageFailed, err)}
	}

	for i, b := range batches {
		index := i + 1
		if i > 0 {
			if err := o.clock.Sleep(ctx, o.delay); err != nil {
				return fmt.Errorf("stopped before batch %d/%d: %w", index, n, err)
			}
		}
		if err := ctxutil.Canceled(ctx); err != nil {
			return fmt.Errorf("stopped before batch %d/%d: %w", index, n, err)
		}
		if o.stopRequested() {
			return fmt.Errorf("stopped before batch %d/%d: %w", index, n, gberrors.ErrOperationCanceled)
		}

		br := o.runBatch(ctx, index, n, b, message)
		result.Batches = append(result.Batches, br)
		if br.Err != nil {
			return &gberrors.BatchError{
				Index:     index,
				Total:     n,
				Completed: result.Committed(),
				Phase:     br.Phase.String(),
				Err:       br.Err,
			}
		}
	}
	return nil
}

func (o *Orchestrator) stopRequested() bool {
	select {
	case <-o.stop:
		return true
	default:
		return false
	}
}

// runBatch stages, commits and pushes one batch.
func (o *Orchestrator) runBatch(ctx context.Context, index, total int, b Batch, message string) BatchResult {
	br := BatchResult{
		Index:         index,
		Total:         total,
		Files:         b.Paths(),
		EstimatedSize: b.EstimatedSize,
		Phase:         PhaseStaging,
	}
	log := o.logger.With().Int("batch", index).Int("total", total).Logger()
	log.Debug().Int("files", len(b.Files)).Int64("estimated_size", b.EstimatedSize).Msg("starting batch")
	o.report(br)

	if err := o.stageBatch(ctx, b.StagePaths()); err != nil {
		br.Err = err
		o.reportFailure(br)
		return br
	}

	staged, err := o.runner.HasStagedChanges(ctx)
	if err != nil {
		br.Phase = PhaseCommitting
		br.Err = err
		o.reportFailure(br)
		return br
	}
	if !staged {
		log.Info().Msg("batch has nothing staged, skipping commit")
		br.NoChanges = true
		br.Phase = PhaseDone
		o.report(br)
		return br
	}

	br.Message = FormatMessage(message, index, total, b, o.maxListed)
	if err := o.commitAndPush(ctx, &br); err != nil {
		br.Err = err
		o.reportFailure(br)
		return br
	}

	log.Info().Str("hash", br.Hash).Bool("pushed", br.Pushed).Msg("batch committed")
	return br
}

// stageBatch adds paths. When the bulk add fails each path is retried on
// its own. Unlike commitSingle it never falls back to staging the whole
// working tree, which would pull later batches' files into this commit.
func (o *Orchestrator) stageBatch(ctx context.Context, paths []string) error {
	err := o.runner.Add(ctx, paths)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	o.logger.Warn().Err(err).Int("files", len(paths)).Msg("staging batch failed, retrying file by file")
	for _, p := range paths {
		if err := o.runner.Add(ctx, []string{p}); err != nil {
			return fmt.Errorf("stage %s: %w: %w", p, gberrors.ErrStageFailed, err)
		}
	}
	return nil
}

// commitAndPush commits br.Message, records the hash and pushes when enabled.
// On return br.Phase is PhaseDone or the phase that failed.
func (o *Orchestrator) commitAndPush(ctx context.Context, br *BatchResult) error {
	br.Phase = PhaseCommitting
	o.report(*br)
	if err := o.runner.Commit(ctx, br.Message); err != nil {
		return err
	}
	br.Hash = o.headHash()

	if o.pusher != nil {
		br.Phase = PhasePushing
		o.report(*br)
		if err := o.push(ctx); err != nil {
			return err
		}
		br.Pushed = true
	}

	br.Phase = PhaseDone
	o.report(*br)
	return nil
}

func (o *Orchestrator) push(ctx context.Context) error {
	branch := o.branch
	if branch == "" {
		current, err := o.runner.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		branch = current
	}
	_, err := o.pusher.Push(ctx, git.PushOptions{Remote: o.remote, Branch: branch})
	return err
}

func (o *Orchestrator) headHash() string {
	if o.hashes == nil {
		return ""
	}
	hash, err := o.hashes.HeadShortHash()
	if err != nil {
		o.logger.Debug().Err(err).Msg("could not read HEAD hash")
		return ""
	}
	return hash
}

// fail records br as the failed single commit.
func (o *Orchestrator) fail(result *Result, br BatchResult, err error) (*Result, error) {
	br.Err = err
	o.reportFailure(br)
	result.Batches = append(result.Batches, br)
	return result, &gberrors.BatchError{Index: 1, Total: 1, Phase: br.Phase.String(), Err: err}
}

func (o *Orchestrator) report(br BatchResult) {
	if o.progress == nil {
		return
	}
	o.progress(BatchProgress{
		Index:         br.Index,
		Total:         br.Total,
		Phase:         br.Phase,
		Files:         len(br.Files),
		EstimatedSize: br.EstimatedSize,
		Err:           br.Err,
	})
}

func (o *Orchestrator) reportFailure(br BatchResult) {
	o.logger.Error().
		Err(br.Err).
		Int("batch", br.Index).
		Int("total", br.Total).
		Str("phase", br.Phase.String()).
		Msg("batch failed")
	if o.progress == nil {
		return
	}
	o.progress(BatchProgress{
		Index:         br.Index,
		Total:         br.Total,
		Phase:         PhaseFailed,
		Files:         len(br.Files),
		EstimatedSize: br.EstimatedSize,
		Err:           br.Err,
	})
}

func dedupeCandidates(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Path]; ok {
			continue
		}
		seen[c.Path] = struct{}{}
		out = append(out, c)
	}
	return out
}
