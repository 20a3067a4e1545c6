package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsDalk-Lane/gitbatch/internal/batch"
	"github.com/ItsDalk-Lane/gitbatch/internal/clock"
	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// addThreeFiles creates three untracked files estimated at 2000 bytes each.
func addThreeFiles(t *testing.T, repo string) {
	t.Helper()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeRepoFile(t, repo, name, lines(40))
	}
}

func TestStatus_JSON(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)

	writeRepoFile(t, repo, "README.md", "changed\n")
	writeRepoFile(t, repo, "staged.txt", "new\n")
	gitCmd(t, repo, "add", "staged.txt")
	writeRepoFile(t, repo, "notes/a.md", "a\n")
	writeRepoFile(t, repo, "notes/b.md", "b\n")

	stdout, _, err := runCLI(t, "status", "-q", "-o", "json", "--repo", repo)
	require.NoError(t, err)

	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	byPath := make(map[string]statusEntry)
	for _, e := range report.Changes {
		byPath[e.Path] = e
	}
	require.Len(t, byPath, 4)
	assert.Equal(t, statusEntry{Path: "README.md", Code: "M", State: "Modified"}, byPath["README.md"])
	assert.Equal(t, statusEntry{Path: "staged.txt", Code: "A", State: "Added", Staged: true}, byPath["staged.txt"])
	assert.Equal(t, "Untracked", byPath["notes/a.md"].State)
	assert.Equal(t, "Untracked", byPath["notes/b.md"].State)
}

func TestStatus_Text(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)

	stdout, _, err := runCLI(t, "status", "-q", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to commit")

	writeRepoFile(t, repo, "README.md", "changed\n")
	stdout, _, err = runCLI(t, "status", "-q", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "PATH")
	assert.Contains(t, stdout, "README.md")
	assert.Contains(t, stdout, "Modified")
}

func TestStatus_ExcludePatternsFromRepoConfig(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)

	writeRepoFile(t, repo, ".gitbatch.yaml", "status:\n  exclude_patterns:\n    - notes/\n")
	writeRepoFile(t, repo, "notes/a.md", "a\n")
	writeRepoFile(t, repo, "keep.md", "k\n")

	stdout, _, err := runCLI(t, "status", "-q", "-o", "json", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "keep.md")
	assert.NotContains(t, stdout, "notes/a.md")
}

func TestPlan_SplitsIntoBatches(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	stdout, _, err := runCLI(t, "plan", "-q", "-o", "json", "--limit", "4KiB", "--repo", repo)
	require.NoError(t, err)

	var report batch.PlanReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.NeedsBatching)
	assert.Equal(t, int64(6000), report.TotalEstimatedSize)
	assert.Equal(t, int64(4096), report.Budget)
	assert.Equal(t, int64(3276), report.EffectiveTarget)
	require.Len(t, report.Batches, 3)
	for _, b := range report.Batches {
		assert.Len(t, b.Files, 1)
	}

	// Nothing was staged or committed.
	assert.Equal(t, []string{"initial commit"}, commitSubjects(t, repo))
	assert.Empty(t, gitCmd(t, repo, "diff", "--cached", "--name-only"))
}

func TestPlan_TextFitsBudget(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	stdout, _, err := runCLI(t, "plan", "-q", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "fits in a single commit")
	assert.Contains(t, stdout, "FIRST FILE")
}

func TestPlan_InvalidLimit(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)

	_, stderr, err := runCLI(t, "plan", "-q", "--limit", "lots", "--repo", repo)
	require.ErrorIs(t, err, errors.ErrInvalidSize)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	assert.Contains(t, stderr, "invalid size")
}

func TestCommit_Batched(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	stdout, _, err := runCLI(t, "commit", "-q", "-o", "json", "--yes", "-m", "import", "--limit", "4KiB", "--repo", repo)
	require.NoError(t, err)

	var result batch.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.True(t, result.Batched)
	require.Len(t, result.Batches, 3)
	for i, b := range result.Batches {
		assert.Equal(t, i+1, b.Index)
		assert.NotEmpty(t, b.Hash)
	}

	assert.Equal(t, []string{
		"import [batch 3/3]",
		"import [batch 2/3]",
		"import [batch 1/3]",
		"initial commit",
	}, commitSubjects(t, repo))
	assert.Empty(t, gitCmd(t, repo, "status", "--porcelain"))

	body := gitCmd(t, repo, "log", "-1", "--format=%b")
	assert.Contains(t, body, "- files: 1")
	assert.Contains(t, body, "- batch: 3/3")
}

func TestCommit_SingleWhenWithinBudget(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	stdout, _, err := runCLI(t, "commit", "-q", "--yes", "-m", "import", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "import")
	assert.Equal(t, []string{"import", "initial commit"}, commitSubjects(t, repo))
}

func TestCommit_NoBatchIgnoresLimit(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	_, _, err := runCLI(t, "commit", "-q", "--yes", "--no-batch", "-m", "import", "--limit", "4KiB", "--repo", repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"import", "initial commit"}, commitSubjects(t, repo))
}

func TestCommit_GeneratedMessage(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	_, _, err := runCLI(t, "commit", "-q", "--yes", "--repo", repo)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(commitSubjects(t, repo)[0], "update 3 files - "))
}

func TestCommit_NothingToCommit(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)

	stdout, _, err := runCLI(t, "commit", "-q", "--yes", "-m", "noop", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to commit")
	assert.Equal(t, []string{"initial commit"}, commitSubjects(t, repo))
}

func TestCommit_PushesEachBatch(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)

	remote := t.TempDir()
	gitCmd(t, remote, "init", "--bare")
	gitCmd(t, repo, "remote", "add", "origin", remote)
	addThreeFiles(t, repo)

	_, _, err := runCLI(t, "commit", "-q", "--yes", "--push", "-m", "import", "--limit", "4KiB", "--repo", repo)
	require.NoError(t, err)

	remoteLog := strings.Split(gitCmd(t, remote, "log", "--format=%s", "main"), "\n")
	assert.Equal(t, commitSubjects(t, repo), remoteLog)
}

func TestCommit_PushFailureStopsAfterFirstBatch(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	gitCmd(t, repo, "remote", "add", "origin", filepath.Join(t.TempDir(), "missing.git"))
	addThreeFiles(t, repo)

	_, stderr, err := runCLI(t, "commit", "-q", "--yes", "--push", "-m", "import", "--limit", "4KiB", "--repo", repo)
	require.Error(t, err)

	var batchErr *errors.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, 3, batchErr.Total)
	assert.Equal(t, "pushing", batchErr.Phase)
	assert.Contains(t, stderr, "batch 1/3 failed")

	// The first batch stays committed.
	assert.Equal(t, []string{"import [batch 1/3]", "initial commit"}, commitSubjects(t, repo))
}

type fakePrompter struct {
	answer  bool
	asked   string
	offered string
	edited  string
}

func (p *fakePrompter) Confirm(message string, _ bool) (bool, error) {
	p.asked = message
	return p.answer, nil
}

func (p *fakePrompter) Input(_, def string) (string, error) {
	p.offered = def
	if p.edited != "" {
		return p.edited, nil
	}
	return def, nil
}

func runCommitForTest(t *testing.T, repo string, deps commitDeps) (string, error) {
	t.Helper()
	flags := &GlobalFlags{Output: "text", Repo: repo}
	cmd := newCommitCmd(flags)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	err := runCommitWithDeps(context.Background(), cmd, flags, &commitOptions{message: "confirmed"}, deps)
	return buf.String(), err
}

func TestCommit_Confirmation(t *testing.T) {
	isolateHome(t)

	t.Run("non-interactive without --yes", func(t *testing.T) {
		repo := setupRepo(t)
		writeRepoFile(t, repo, "a.txt", "a\n")

		_, err := runCommitForTest(t, repo, commitDeps{
			prompter:    &fakePrompter{answer: true},
			interactive: func() bool { return false },
			clock:       clock.RealClock{},
		})
		require.ErrorIs(t, err, errors.ErrNonInteractiveMode)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
		assert.Equal(t, []string{"initial commit"}, commitSubjects(t, repo))
	})

	t.Run("declined", func(t *testing.T) {
		repo := setupRepo(t)
		writeRepoFile(t, repo, "a.txt", "a\n")
		prompter := &fakePrompter{answer: false}

		_, err := runCommitForTest(t, repo, commitDeps{
			prompter:    prompter,
			interactive: func() bool { return true },
			clock:       clock.RealClock{},
		})
		require.ErrorIs(t, err, errors.ErrOperationCanceled)
		assert.Contains(t, prompter.asked, "Commit 1 changed files")
		assert.Equal(t, []string{"initial commit"}, commitSubjects(t, repo))
	})

	t.Run("accepted", func(t *testing.T) {
		repo := setupRepo(t)
		writeRepoFile(t, repo, "a.txt", "a\n")

		out, err := runCommitForTest(t, repo, commitDeps{
			prompter:    &fakePrompter{answer: true},
			interactive: func() bool { return true },
			clock:       clock.RealClock{},
		})
		require.NoError(t, err)
		assert.Contains(t, out, "confirmed")
		assert.Equal(t, []string{"confirmed", "initial commit"}, commitSubjects(t, repo))
	})
}

func TestCommit_ConfirmationEditsGeneratedMessage(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	writeRepoFile(t, repo, "a.txt", "a\n")
	prompter := &fakePrompter{answer: true, edited: "hand written"}

	flags := &GlobalFlags{Output: "text", Repo: repo}
	cmd := newCommitCmd(flags)
	cmd.SetOut(&bytes.Buffer{})
	err := runCommitWithDeps(context.Background(), cmd, flags, &commitOptions{}, commitDeps{
		prompter:    prompter,
		interactive: func() bool { return true },
		clock:       clock.RealClock{},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompter.offered, "update 1 files - "))
	assert.Equal(t, []string{"hand written", "initial commit"}, commitSubjects(t, repo))
}

func TestWatch_Once(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	addThreeFiles(t, repo)

	_, _, err := runCLI(t, "watch", "-q", "--once", "--limit", "4KiB", "--repo", repo)
	require.NoError(t, err)

	subjects := commitSubjects(t, repo)
	require.Len(t, subjects, 4)
	assert.True(t, strings.HasPrefix(subjects[0], "update 3 files - "))
	assert.True(t, strings.HasSuffix(subjects[0], "[batch 3/3]"))

	// A second run with a clean tree is a no-op.
	_, _, err = runCLI(t, "watch", "-q", "--once", "--repo", repo)
	require.NoError(t, err)
	assert.Len(t, commitSubjects(t, repo), 4)
}

func TestConfigShow(t *testing.T) {
	isolateHome(t)
	repo := setupRepo(t)
	writeRepoFile(t, repo, ".gitbatch.yaml", "batch:\n  size_limit: 5MiB\ngit:\n  remote: upstream\n")

	stdout, _, err := runCLI(t, "config", "show", "-q", "-o", "json", "--repo", repo)
	require.NoError(t, err)

	var cfg map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "5.0 MiB", cfg["batch"]["size_limit"])
	assert.Equal(t, "upstream", cfg["git"]["remote"])
}

func TestConfigShow_OutsideRepository(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".gitbatch"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".gitbatch", "config.yaml"), []byte("git:\n  remote: backup\n"), 0o600))

	stdout, _, err := runCLI(t, "config", "show", "-q", "--repo", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "remote: backup")
}

func TestConfigPath(t *testing.T) {
	home := isolateHome(t)
	repo := setupRepo(t)

	stdout, _, err := runCLI(t, "config", "path", "-q", "-o", "json", "--repo", repo)
	require.NoError(t, err)

	var paths configPaths
	require.NoError(t, json.Unmarshal([]byte(stdout), &paths))
	assert.Equal(t, filepath.Join(home, ".gitbatch", "config.yaml"), paths.Global)
	assert.Equal(t, filepath.Join(home, ".gitbatch", "logs", "gitbatch.log"), paths.Log)
	assert.Equal(t, filepath.Join(repo, ".gitbatch.yaml"), paths.Project)
}

func TestRoot_Errors(t *testing.T) {
	isolateHome(t)

	t.Run("invalid output format", func(t *testing.T) {
		_, stderr, err := runCLI(t, "status", "-o", "xml")
		require.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
		assert.Contains(t, stderr, "invalid output format")
	})

	t.Run("not a repository", func(t *testing.T) {
		_, _, err := runCLI(t, "status", "-q", "--repo", t.TempDir())
		require.ErrorIs(t, err, errors.ErrNotGitRepo)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})

	t.Run("structured error", func(t *testing.T) {
		_, stderr, err := runCLI(t, "status", "-q", "-o", "json", "--repo", t.TempDir())
		require.Error(t, err)

		var rec map[string]string
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stderr)), &rec))
		assert.Equal(t, "error", rec["type"])
	})

	t.Run("verbose and quiet are exclusive", func(t *testing.T) {
		_, _, err := runCLI(t, "status", "-v", "-q")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})
}
