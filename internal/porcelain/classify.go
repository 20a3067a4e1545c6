// Package porcelain parses `git status --porcelain` (v1) output into
// classified changes.
// This file turns parsed lines into staged and unstaged change entries.
package porcelain

import "strings"

// ChangeEntry is one side of a change. A line changed in both the index and
// the working tree yields two entries with the same path.
type ChangeEntry struct {
	Path         string
	OrigPath     string
	IndexState   State
	WorkingState State
	// Staged is true for entries describing the index side.
	Staged bool
}

// Code returns the status code of the side this entry describes.
func (e ChangeEntry) Code() string {
	if e.Staged {
		return e.IndexState.Code()
	}
	return e.WorkingState.Code()
}

// Label returns the human-readable label of Code.
func (e ChangeEntry) Label() string {
	return Label(e.Code())
}

// Untracked reports whether the entry is an untracked file.
func (e ChangeEntry) Untracked() bool {
	return !e.Staged && e.WorkingState.Kind == KindUntracked
}

// Excludes is a list of substrings; a path containing any of them is dropped.
type Excludes []string

// Match reports whether path contains one of the patterns.
// Empty patterns never match.
func (x Excludes) Match(path string) bool {
	for _, pattern := range x {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// Classify turns a parsed line into zero, one or two change entries.
func Classify(p ParsedLine, excludes Excludes) []ChangeEntry {
	if excludes.Match(p.Path) {
		return nil
	}

	var entries []ChangeEntry
	if p.Index.Staged() {
		entries = append(entries, ChangeEntry{
			Path:         p.Path,
			OrigPath:     p.OrigPath,
			IndexState:   p.Index,
			WorkingState: Unmodified,
			Staged:       true,
		})
	}
	if p.Worktree.Meaningful() {
		entries = append(entries, ChangeEntry{
			Path:         p.Path,
			OrigPath:     p.OrigPath,
			IndexState:   Unmodified,
			WorkingState: p.Worktree,
		})
	}
	return entries
}

// Paths returns the distinct paths of entries in first-seen order.
func Paths(entries []ChangeEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Path]; ok {
			continue
		}
		seen[e.Path] = struct{}{}
		paths = append(paths, e.Path)
	}
	return paths
}
