// Package porcelain parses `git status --porcelain` (v1) output into
// classified changes.
// This file implements the Collector, which runs status and expands
// untracked directories.
package porcelain

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
)

// Source provides the raw git output the Collector works from.
type Source interface {
	// StatusPorcelain returns `git status --porcelain` output.
	StatusPorcelain(ctx context.Context) (string, error)

	// ListUntracked returns the untracked, non-ignored files under dir.
	ListUntracked(ctx context.Context, dir string) ([]string, error)
}

// Collector builds the classified change list of a repository.
type Collector struct {
	source Source
	logger zerolog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithLogger sets the logger used for parse and expansion warnings.
func WithLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// NewCollector creates a Collector reading from source.
func NewCollector(source Source, opts ...CollectorOption) *Collector {
	c := &Collector{
		source: source,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns every change in the working tree that is not excluded.
//
// Branch headers and ignored entries are skipped. Malformed lines and
// undecodable paths are logged and do not fail the call. An untracked
// directory is replaced by the files inside it; when they cannot be listed
// the directory itself is kept so that nothing is silently dropped.
func (c *Collector) Collect(ctx context.Context, excludes Excludes) ([]ChangeEntry, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	output, err := c.source.StatusPorcelain(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var entries []ChangeEntry
	for _, line := range strings.Split(output, "\n") {
		if line == "" || strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "!! ") {
			continue
		}

		parsed, err := Parse(line)
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping status line")
			continue
		}
		if parsed.Warning != nil {
			c.logger.Warn().
				Err(parsed.Warning).
				Str("path", parsed.Path).
				Msg("path is not valid utf-8, using raw text")
		}

		if !parsed.NeedsExpansion {
			entries = append(entries, Classify(parsed, excludes)...)
			continue
		}

		expanded, err := c.expand(ctx, parsed.Path, excludes)
		if err != nil {
			return nil, err
		}
		entries = append(entries, expanded...)
	}

	c.logger.Debug().Int("entries", len(entries)).Msg("collected changes")
	return entries, nil
}

// expand lists the files of an untracked directory as untracked entries.
func (c *Collector) expand(ctx context.Context, dir string, excludes Excludes) ([]ChangeEntry, error) {
	if excludes.Match(dir) {
		return nil, nil
	}

	files, err := c.source.ListUntracked(ctx, dir)
	if err != nil {
		if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn().Err(err).Str("dir", dir).Msg("failed to list untracked directory, keeping directory entry")
		files = []string{dir}
	}

	var entries []ChangeEntry
	for _, f := range files {
		entries = append(entries, Classify(ParsedLine{
			Index:    Unmodified,
			Worktree: Untracked,
			Path:     f,
		}, excludes)...)
	}
	return entries, nil
}
