// Package batch splits a large change set into commit-sized batches.
// This file implements the greedy batch planner.
package batch

import (
	"cmp"
	"slices"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
)

// Planner packs files into batches with a greedy first-fit over a size-sorted list.
type Planner struct {
	// SafetyMargin scales the budget into the effective target. Values outside
	// (0, 1] fall back to the default.
	SafetyMargin float64
}

// PlanBatches plans with the default safety margin.
func PlanBatches(files []SizedFile, budget int64) []Batch {
	return Planner{}.Plan(files, budget)
}

// EffectiveTarget returns the packing target for budget.
func (p Planner) EffectiveTarget(budget int64) float64 {
	margin := p.SafetyMargin
	if margin <= 0 || margin > 1 {
		margin = constants.DefaultSafetyMargin
	}
	return float64(budget) * margin
}

// Plan partitions files into batches. Files are sorted by estimated size,
// largest first, keeping input order for equal sizes. A file larger than the
// effective target is committed alone; every other batch stays within it.
// Each path appears in exactly one batch and the result never contains an
// empty batch. Repeated paths are planned once, at their first occurrence.
func (p Planner) Plan(files []SizedFile, budget int64) []Batch {
	target := p.EffectiveTarget(budget)

	sorted := dedupe(files)
	slices.SortStableFunc(sorted, func(a, b SizedFile) int {
		return cmp.Compare(b.EstimatedSize, a.EstimatedSize)
	})

	var (
		batches []Batch
		current Batch
	)
	flush := func() {
		if len(current.Files) > 0 {
			batches = append(batches, current)
			current = Batch{}
		}
	}

	for _, f := range sorted {
		size := float64(f.EstimatedSize)
		switch {
		case size > target:
			flush()
			batches = append(batches, Batch{Files: []SizedFile{f}, EstimatedSize: f.EstimatedSize})
		case len(current.Files) > 0 && float64(current.EstimatedSize)+size > target:
			flush()
			current = Batch{Files: []SizedFile{f}, EstimatedSize: f.EstimatedSize}
		default:
			current.Files = append(current.Files, f)
			current.EstimatedSize += f.EstimatedSize
		}
	}
	flush()

	return batches
}

func dedupe(files []SizedFile) []SizedFile {
	seen := make(map[string]struct{}, len(files))
	out := make([]SizedFile, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.Path]; ok {
			continue
		}
		seen[f.Path] = struct{}{}
		out = append(out, f)
	}
	return out
}
