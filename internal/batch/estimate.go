// Package batch splits a large change set into commit-sized batches.
// This file estimates the committed size of each candidate from its line counts.
package batch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
	"github.com/ItsDalk-Lane/gitbatch/internal/git"
)

// LineStatsSource provides added/deleted line counts. git.CLIRunner implements it.
type LineStatsSource interface {
	LineStats(ctx context.Context, path string, staged bool) (git.LineStats, error)
	UntrackedLineStats(ctx context.Context, path string) (git.LineStats, error)
}

// Estimator converts line counts into approximate byte sizes.
// Sizes are a linear approximation, not the real diff size.
type Estimator struct {
	source          LineStatsSource
	bytesPerLine    int64
	unavailableSize int64
	failedSize      int64
	logger          zerolog.Logger
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithBytesPerLine sets the assumed size of one changed line.
func WithBytesPerLine(n int64) EstimatorOption {
	return func(e *Estimator) {
		e.bytesPerLine = n
	}
}

// WithUnavailableSize sets the size used when counts are unavailable.
func WithUnavailableSize(n int64) EstimatorOption {
	return func(e *Estimator) {
		e.unavailableSize = n
	}
}

// WithFailedQuerySize sets the size used when the count query fails.
func WithFailedQuerySize(n int64) EstimatorOption {
	return func(e *Estimator) {
		e.failedSize = n
	}
}

// WithEstimatorLogger sets the logger for estimation failures.
func WithEstimatorLogger(logger zerolog.Logger) EstimatorOption {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// NewEstimator creates an Estimator reading counts from source.
func NewEstimator(source LineStatsSource, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		source:          source,
		bytesPerLine:    constants.DefaultBytesPerLine,
		unavailableSize: constants.DefaultUnavailableSize,
		failedSize:      constants.DefaultFailedQuerySize,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the estimated change size of c. It never fails: a failed
// query yields the failed-query size and unavailable counts (binary files,
// pure renames) yield the unavailable size.
func (e *Estimator) Estimate(ctx context.Context, c Candidate) int64 {
	var (
		stats git.LineStats
		err   error
	)
	switch {
	case c.Untracked:
		stats, err = e.source.UntrackedLineStats(ctx, c.Path)
	case c.Staged && !c.Unstaged:
		stats, err = e.source.LineStats(ctx, c.Path, true)
	default:
		stats, err = e.source.LineStats(ctx, c.Path, false)
	}

	if err != nil {
		e.logger.Debug().Err(err).Str("path", c.Path).Msg("line count query failed, using fallback size")
		return e.failedSize
	}
	if !stats.Available {
		return e.unavailableSize
	}
	return int64(stats.Total()) * e.bytesPerLine
}

// EstimateAll estimates every candidate in order.
// It stops early only when ctx is done.
func (e *Estimator) EstimateAll(ctx context.Context, candidates []Candidate) ([]SizedFile, error) {
	files := make([]SizedFile, 0, len(candidates))
	for _, c := range candidates {
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}
		files = append(files, SizedFile{
			Path:          c.Path,
			OrigPath:      c.OrigPath,
			EstimatedSize: e.Estimate(ctx, c),
		})
	}
	return files, nil
}
