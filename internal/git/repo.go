// Package git provides Git operations for gitbatch.
// This file provides repository discovery and HEAD inspection through go-git.
package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// shortHashLen is the abbreviated commit hash length shown to users.
const shortHashLen = 7

// Repo is an opened repository.
type Repo struct {
	repo   *gogit.Repository
	root   string
	gitDir string
}

// OpenRepo opens the repository containing path, searching parent
// directories for .git the way the git CLI does.
func OpenRepo(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", abs, gberrors.ErrNotGitRepo)
		}
		return nil, fmt.Errorf("open repository %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository %s has no working tree: %w", abs, gberrors.ErrNotGitRepo)
	}
	root := wt.Filesystem.Root()

	return &Repo{
		repo:   repo,
		root:   root,
		gitDir: resolveGitDir(root),
	}, nil
}

// Root returns the absolute path of the working tree root.
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the path of the repository's git directory.
func (r *Repo) GitDir() string {
	return r.gitDir
}

// HeadShortHash returns the abbreviated hash of the commit HEAD points to.
func (r *Repo) HeadShortHash() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	hash := ref.Hash().String()
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}
	return hash, nil
}

// Branch returns the short name of the checked out branch. An unborn branch
// (fresh repository without commits) is still reported by name.
func (r *Repo) Branch() (string, error) {
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", fmt.Errorf("repository is in detached HEAD state: %w", gberrors.ErrGitOperation)
	}
	return ref.Target().Short(), nil
}

// resolveGitDir returns root/.git, following a "gitdir:" file for linked
// worktrees and submodules.
func resolveGitDir(root string) string {
	dotGit := filepath.Join(root, ".git")
	dir, err := readGitdirFile(dotGit)
	if err != nil || dir == "" {
		return dotGit
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir)
}
