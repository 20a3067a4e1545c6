// Package batch splits a large change set into commit-sized batches and
// commits them one after another.
//
// The flow is: candidates (from porcelain status) -> Estimator -> Planner ->
// Orchestrator. The Planner is pure; the Estimator and Orchestrator talk to
// git through small collaborator interfaces so they can be tested without a
// repository.
package batch

import "github.com/ItsDalk-Lane/gitbatch/internal/porcelain"

// Candidate is a changed path considered for committing.
type Candidate struct {
	// Path is the repository-relative path.
	Path string
	// OrigPath is the source path of a rename or copy. It is staged together
	// with Path so the removal side of a rename lands in the same commit.
	OrigPath string
	// Staged is true when the index side of the path changed.
	Staged bool
	// Unstaged is true when the working tree side of a tracked path changed.
	Unstaged bool
	// Untracked is true for files git does not know about yet.
	Untracked bool
}

// StagePaths returns the paths to pass to git add for this candidate.
func (c Candidate) StagePaths() []string {
	if c.OrigPath != "" && c.OrigPath != c.Path {
		return []string{c.Path, c.OrigPath}
	}
	return []string{c.Path}
}

// CandidatesFromEntries merges the staged and unstaged entries of each path
// into one candidate, keeping first-seen order.
func CandidatesFromEntries(entries []porcelain.ChangeEntry) []Candidate {
	index := make(map[string]int, len(entries))
	candidates := make([]Candidate, 0, len(entries))

	for _, e := range entries {
		i, ok := index[e.Path]
		if !ok {
			i = len(candidates)
			index[e.Path] = i
			candidates = append(candidates, Candidate{Path: e.Path})
		}
		c := &candidates[i]
		if e.OrigPath != "" {
			c.OrigPath = e.OrigPath
		}
		switch {
		case e.Staged:
			c.Staged = true
		case e.Untracked():
			c.Untracked = true
		default:
			c.Unstaged = true
		}
	}
	return candidates
}

// SizedFile is a path with its estimated change size in bytes.
type SizedFile struct {
	Path          string `json:"path" yaml:"path" toml:"path"`
	OrigPath      string `json:"orig_path,omitempty" yaml:"orig_path,omitempty" toml:"orig_path,omitempty"`
	EstimatedSize int64  `json:"estimated_size" yaml:"estimated_size" toml:"estimated_size"`
}

// Batch is an ordered group of files committed together.
type Batch struct {
	Files         []SizedFile `json:"files" yaml:"files" toml:"files"`
	EstimatedSize int64       `json:"estimated_size" yaml:"estimated_size" toml:"estimated_size"`
}

// Paths returns the file paths of the batch in order.
func (b Batch) Paths() []string {
	paths := make([]string, len(b.Files))
	for i, f := range b.Files {
		paths[i] = f.Path
	}
	return paths
}

// StagePaths returns every path to stage for the batch, including the
// source side of renames.
func (b Batch) StagePaths() []string {
	paths := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		paths = append(paths, f.Path)
		if f.OrigPath != "" && f.OrigPath != f.Path {
			paths = append(paths, f.OrigPath)
		}
	}
	return paths
}

// Total returns the summed estimated size of files.
func Total(files []SizedFile) int64 {
	var total int64
	for _, f := range files {
		total += f.EstimatedSize
	}
	return total
}
