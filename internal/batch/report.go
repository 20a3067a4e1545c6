// Package batch splits a large change set into commit-sized batches.
// This file implements the dry-run plan report.
package batch

import (
	"context"

	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
)

// PlanReport describes what ExecuteBatched would do, without touching the
// repository.
type PlanReport struct {
	Files              []SizedFile `json:"files" yaml:"files" toml:"files"`
	TotalEstimatedSize int64       `json:"total_estimated_size" yaml:"total_estimated_size" toml:"total_estimated_size"`
	Budget             int64       `json:"budget" yaml:"budget" toml:"budget"`
	EffectiveTarget    int64       `json:"effective_target" yaml:"effective_target" toml:"effective_target"`
	// NeedsBatching is true when the changes will be split.
	NeedsBatching bool    `json:"needs_batching" yaml:"needs_batching" toml:"needs_batching"`
	Batches       []Batch `json:"batches" yaml:"batches" toml:"batches"`
}

// Plan estimates candidates and plans batches the same way ExecuteBatched
// does. When the total fits the budget or batching is disabled, the report
// holds a single batch with every file.
func (o *Orchestrator) Plan(ctx context.Context, candidates []Candidate, budget int64) (*PlanReport, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	files, err := o.estimator.EstimateAll(ctx, dedupeCandidates(candidates))
	if err != nil {
		return nil, err
	}

	report := &PlanReport{
		Files:              files,
		TotalEstimatedSize: Total(files),
		Budget:             budget,
		EffectiveTarget:    int64(o.planner.EffectiveTarget(budget)),
	}
	if len(files) == 0 {
		return report, nil
	}

	report.NeedsBatching = o.batching && report.TotalEstimatedSize > budget
	if report.NeedsBatching {
		report.Batches = o.planner.Plan(files, budget)
	} else {
		report.Batches = []Batch{{Files: files, EstimatedSize: report.TotalEstimatedSize}}
	}

	o.logger.Debug().
		Int("files", len(files)).
		Int("batches", len(report.Batches)).
		Bool("needs_batching", report.NeedsBatching).
		Msg("planned batches")
	return report, nil
}
