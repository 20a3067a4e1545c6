package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/git"
	"github.com/ItsDalk-Lane/gitbatch/internal/queue"
)

// mockRunner implements git.Runner with overridable behavior and a call log.
type mockRunner struct {
	mu    sync.Mutex
	calls []string

	stats            map[string]git.LineStats
	AddFunc          func(paths []string) error
	AddAllFunc       func() error
	ResetIndexFunc   func() error
	HasStagedFunc    func() (bool, error)
	CommitFunc       func(message string) error
	PushFunc         func(remote, branch string) error
	CurrentBranchVal string

	commits []string
}

var _ git.Runner = (*mockRunner)(nil)

func (m *mockRunner) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockRunner) StatusPorcelain(context.Context) (string, error) { return "", nil }

func (m *mockRunner) ListUntracked(context.Context, string) ([]string, error) { return nil, nil }

func (m *mockRunner) LineStats(_ context.Context, path string, _ bool) (git.LineStats, error) {
	return m.stats[path], nil
}

func (m *mockRunner) UntrackedLineStats(_ context.Context, path string) (git.LineStats, error) {
	return m.stats[path], nil
}

func (m *mockRunner) Add(_ context.Context, paths []string) error {
	m.record("add " + strings.Join(paths, ","))
	if m.AddFunc != nil {
		return m.AddFunc(paths)
	}
	return nil
}

func (m *mockRunner) AddAll(context.Context) error {
	m.record("add-all")
	if m.AddAllFunc != nil {
		return m.AddAllFunc()
	}
	return nil
}

func (m *mockRunner) ResetIndex(context.Context) error {
	m.record("reset")
	if m.ResetIndexFunc != nil {
		return m.ResetIndexFunc()
	}
	return nil
}

func (m *mockRunner) HasStagedChanges(context.Context) (bool, error) {
	if m.HasStagedFunc != nil {
		return m.HasStagedFunc()
	}
	return true, nil
}

func (m *mockRunner) Commit(_ context.Context, message string) error {
	m.record("commit")
	if m.CommitFunc != nil {
		if err := m.CommitFunc(message); err != nil {
			return err
		}
	}
	m.commits = append(m.commits, message)
	return nil
}

func (m *mockRunner) Push(_ context.Context, remote, branch string, _ bool) error {
	m.record("push " + remote + " " + branch)
	if m.PushFunc != nil {
		return m.PushFunc(remote, branch)
	}
	return nil
}

func (m *mockRunner) CurrentBranch(context.Context) (string, error) {
	if m.CurrentBranchVal == "" {
		return "main", nil
	}
	return m.CurrentBranchVal, nil
}

// fakeClock records sleeps instead of sleeping.
type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

type fakeHashes struct{ n int }

func (h *fakeHashes) HeadShortHash() (string, error) {
	h.n++
	return strings.Repeat(string(rune('a'+h.n-1)), 7), nil
}

// lines returns stats worth size bytes at the default 50 bytes per line.
func lines(size int) git.LineStats {
	return git.LineStats{Added: size / 50, Available: true}
}

func testLease(t *testing.T) *queue.Lease {
	t.Helper()
	lease, ok := queue.New().TryAcquire()
	require.True(t, ok)
	t.Cleanup(lease.Release)
	return lease
}

func candidates(paths ...string) []Candidate {
	out := make([]Candidate, len(paths))
	for i, p := range paths {
		out[i] = Candidate{Path: p, Unstaged: true}
	}
	return out
}

func TestExecuteBatched_SingleCommitWhenWithinBudget(t *testing.T) {
	runner := &mockRunner{stats: map[string]git.LineStats{
		"a.md": lines(2000),
		"b.md": lines(2000),
	}}
	clk := &fakeClock{}
	o := NewOrchestrator(runner, WithClock(clk))

	result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a.md", "b.md"), "update notes", 10000)
	require.NoError(t, err)

	assert.False(t, result.Batched)
	assert.Equal(t, int64(4000), result.TotalEstimatedSize)
	require.Len(t, result.Batches, 1)
	assert.Equal(t, []string{"update notes"}, runner.commits, "message is used unchanged")
	assert.Equal(t, []string{"add a.md,b.md", "commit"}, runner.calls)
	assert.Empty(t, clk.sleeps)
	assert.Equal(t, 1, result.Committed())
}

func TestExecuteBatched_Batches(t *testing.T) {
	runner := &mockRunner{stats: map[string]git.LineStats{
		"big.md":   lines(3000),
		"mid.md":   lines(2000),
		"small.md": lines(1000),
		"tiny.md":  lines(500),
	}}
	clk := &fakeClock{}
	hashes := &fakeHashes{}
	var phases []string
	o := NewOrchestrator(runner,
		WithClock(clk),
		WithHashReader(hashes),
		WithProgress(func(p BatchProgress) {
			phases = append(phases, p.Phase.String())
		}),
	)

	// budget 4000 -> target 3200: [big], [mid, small], [tiny]
	result, err := o.ExecuteBatched(context.Background(), testLease(t),
		candidates("tiny.md", "small.md", "mid.md", "big.md"), "update notes\nbody", 4000)
	require.NoError(t, err)

	assert.True(t, result.Batched)
	require.Len(t, result.Batches, 3)
	assert.Equal(t, []string{"big.md"}, result.Batches[0].Files)
	assert.Equal(t, []string{"mid.md", "small.md"}, result.Batches[1].Files)
	assert.Equal(t, []string{"tiny.md"}, result.Batches[2].Files)
	assert.Equal(t, "aaaaaaa", result.Batches[0].Hash)
	assert.Equal(t, "ccccccc", result.Batches[2].Hash)
	assert.Equal(t, 3, result.Committed())

	require.Len(t, runner.commits, 3)
	assert.True(t, strings.HasPrefix(runner.commits[0], "update notes [batch 1/3]\n"))
	assert.True(t, strings.HasPrefix(runner.commits[2], "update notes [batch 3/3]\n"))

	assert.Equal(t, []time.Duration{time.Second, time.Second}, clk.sleeps, "delay between batches only")
	assert.Equal(t, []string{
		"reset",
		"add big.md", "commit",
		"add mid.md,small.md", "commit",
		"add tiny.md", "commit",
	}, runner.calls)
	assert.Equal(t, []string{
		"staging", "committing", "done",
		"staging", "committing", "done",
		"staging", "committing", "done",
	}, phases)
}

func TestExecuteBatched_FailureStopsRemainingBatches(t *testing.T) {
	commitErr := errors.New("hook rejected commit")
	n := 0
	runner := &mockRunner{
		stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000), "c": lines(3000)},
		CommitFunc: func(string) error {
			n++
			if n == 2 {
				return commitErr
			}
			return nil
		},
	}
	clk := &fakeClock{}
	o := NewOrchestrator(runner, WithClock(clk))

	result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b", "c"), "update", 4000)
	require.Error(t, err)
	require.ErrorIs(t, err, gberrors.ErrBatchCommitFailed)
	require.ErrorIs(t, err, commitErr)

	var batchErr *gberrors.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Index)
	assert.Equal(t, 3, batchErr.Total)
	assert.Equal(t, 1, batchErr.Completed)
	assert.Equal(t, "committing", batchErr.Phase)

	require.NotNil(t, result)
	require.Len(t, result.Batches, 2, "third batch is never attempted")
	assert.Equal(t, PhaseCommitting, result.Batches[1].Phase)
	assert.Equal(t, 1, result.Committed())
	assert.Len(t, clk.sleeps, 1)
	assert.NotContains(t, runner.calls, "add c")
}

func TestExecuteBatched_CompletedCountsOnlyCommittedBatches(t *testing.T) {
	staged := 0
	runner := &mockRunner{
		stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000), "c": lines(3000)},
		HasStagedFunc: func() (bool, error) {
			staged++
			return staged > 1, nil
		},
		CommitFunc: func(string) error { return errors.New("hook rejected commit") },
	}
	o := NewOrchestrator(runner, WithClock(&fakeClock{}))

	result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b", "c"), "update", 4000)
	require.ErrorIs(t, err, gberrors.ErrBatchCommitFailed)

	var batchErr *gberrors.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Index)
	assert.Equal(t, 0, batchErr.Completed, "the skipped first batch produced no commit")

	require.Len(t, result.Batches, 2)
	assert.True(t, result.Batches[0].NoChanges)
	assert.Equal(t, 0, result.Committed())
	assert.Empty(t, runner.commits)
}

func TestExecuteBatched_ResetsIndexOnlyWhenBatching(t *testing.T) {
	tests := []struct {
		name      string
		budget    int64
		wantReset bool
	}{
		{name: "within budget", budget: 10000, wantReset: false},
		{name: "batched", budget: 4000, wantReset: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := &mockRunner{stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000)}}
			o := NewOrchestrator(runner, WithClock(&fakeClock{}))

			_, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b"), "update", tc.budget)
			require.NoError(t, err)

			if tc.wantReset {
				require.NotEmpty(t, runner.calls)
				assert.Equal(t, "reset", runner.calls[0], "index is cleared before the first batch")
				assert.Equal(t, 1, strings.Count(strings.Join(runner.calls, "|"), "reset"))
				return
			}
			assert.NotContains(t, runner.calls, "reset")
		})
	}
}

func TestExecuteBatched_PushPerBatch(t *testing.T) {
	runner := &mockRunner{
		stats:            map[string]git.LineStats{"a": lines(3000), "b": lines(3000)},
		CurrentBranchVal: "notes",
	}
	pusher := git.NewPushRunner(runner)
	o := NewOrchestrator(runner, WithClock(&fakeClock{}), WithPush(pusher, "origin", ""))

	result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b"), "update", 4000)
	require.NoError(t, err)

	for _, b := range result.Batches {
		assert.True(t, b.Pushed)
	}
	assert.Equal(t, []string{
		"reset",
		"add a", "commit", "push origin notes",
		"add b", "commit", "push origin notes",
	}, runner.calls)
}

func TestExecuteBatched_PushFailureIsBatchFailure(t *testing.T) {
	runner := &mockRunner{
		stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000)},
		PushFunc: func(string, string) error {
			return errors.New("fatal: Authentication failed for 'https://example.com/r.git/'")
		},
	}
	o := NewOrchestrator(runner, WithClock(&fakeClock{}), WithPush(git.NewPushRunner(runner), "origin", "main"))

	result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b"), "update", 4000)
	require.ErrorIs(t, err, gberrors.ErrPushAuthFailed)

	var batchErr *gberrors.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, "pushing", batchErr.Phase)
	assert.Len(t, runner.commits, 1, "commit stays, no rollback")
	assert.False(t, result.Batches[0].Pushed)
}

func TestExecuteBatched_StageFallback(t *testing.T) {
	t.Run("single commit stages whole tree", func(t *testing.T) {
		runner := &mockRunner{
			stats:   map[string]git.LineStats{"a": lines(100)},
			AddFunc: func([]string) error { return errors.New("pathspec did not match") },
		}
		o := NewOrchestrator(runner)

		_, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a"), "update", 10000)
		require.NoError(t, err)
		assert.Equal(t, []string{"add a", "add-all", "commit"}, runner.calls)
	})

	t.Run("single commit fails when whole tree staging fails", func(t *testing.T) {
		runner := &mockRunner{
			AddFunc:    func([]string) error { return errors.New("add failed") },
			AddAllFunc: func() error { return errors.New("add -A failed") },
		}
		o := NewOrchestrator(runner, WithBatching(false))

		result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a"), "update", 10000)
		require.ErrorIs(t, err, gberrors.ErrStageFailed)
		require.ErrorIs(t, err, gberrors.ErrBatchCommitFailed)
		assert.Equal(t, PhaseStaging, result.Batches[0].Phase)
		assert.Empty(t, runner.commits)
	})

	t.Run("batched mode retries file by file", func(t *testing.T) {
		runner := &mockRunner{
			stats: map[string]git.LineStats{"a": lines(1000), "b": lines(1000), "c": lines(3000)},
			AddFunc: func(paths []string) error {
				if len(paths) > 1 {
					return errors.New("bulk add failed")
				}
				return nil
			},
		}
		o := NewOrchestrator(runner, WithClock(&fakeClock{}))

		_, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b", "c"), "update", 4000)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"reset",
			"add c", "commit",
			"add a,b", "add a", "add b", "commit",
		}, runner.calls)
		assert.NotContains(t, runner.calls, "add-all")
	})

	t.Run("batched mode fails when a single file cannot be staged", func(t *testing.T) {
		runner := &mockRunner{
			stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000)},
			AddFunc: func(paths []string) error {
				if paths[0] == "b" {
					return errors.New("permission denied")
				}
				return nil
			},
		}
		o := NewOrchestrator(runner, WithClock(&fakeClock{}))

		_, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b"), "update", 4000)
		var batchErr *gberrors.BatchError
		require.ErrorAs(t, err, &batchErr)
		assert.Equal(t, 2, batchErr.Index)
		assert.Equal(t, "staging", batchErr.Phase)
		require.ErrorIs(t, err, gberrors.ErrStageFailed)
	})
}

func TestExecuteBatched_NoChanges(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		runner := &mockRunner{}
		result, err := NewOrchestrator(runner).ExecuteBatched(context.Background(), testLease(t), nil, "update", 100)
		require.NoError(t, err)
		assert.True(t, result.NoChanges)
		assert.Empty(t, runner.calls)
	})

	t.Run("nothing staged in single mode", func(t *testing.T) {
		runner := &mockRunner{HasStagedFunc: func() (bool, error) { return false, nil }}
		result, err := NewOrchestrator(runner, WithBatching(false)).
			ExecuteBatched(context.Background(), testLease(t), candidates("a"), "update", 100)
		require.NoError(t, err)
		assert.True(t, result.NoChanges)
		assert.Empty(t, runner.commits)
	})

	t.Run("empty batch is skipped", func(t *testing.T) {
		staged := []bool{false, true}
		runner := &mockRunner{
			stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000)},
			HasStagedFunc: func() (bool, error) {
				v := staged[0]
				staged = staged[1:]
				return v, nil
			},
		}
		result, err := NewOrchestrator(runner, WithClock(&fakeClock{})).
			ExecuteBatched(context.Background(), testLease(t), candidates("a", "b"), "update", 4000)
		require.NoError(t, err)
		require.Len(t, result.Batches, 2)
		assert.True(t, result.Batches[0].NoChanges)
		assert.Equal(t, PhaseDone, result.Batches[0].Phase)
		assert.Equal(t, 1, result.Committed())
	})
}

func TestExecuteBatched_Preconditions(t *testing.T) {
	o := NewOrchestrator(&mockRunner{})

	_, err := o.ExecuteBatched(context.Background(), nil, candidates("a"), "update", 100)
	require.ErrorIs(t, err, gberrors.ErrLeaseRequired)

	_, err = o.ExecuteBatched(context.Background(), testLease(t), candidates("a"), " \n", 100)
	require.ErrorIs(t, err, gberrors.ErrEmptyValue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.ExecuteBatched(ctx, testLease(t), candidates("a"), "update", 100)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecuteBatched_CancelBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &mockRunner{
		stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000)},
		CommitFunc: func(string) error {
			cancel()
			return nil
		},
	}
	o := NewOrchestrator(runner, WithClock(&fakeClock{}))

	result, err := o.ExecuteBatched(ctx, testLease(t), candidates("a", "b"), "update", 4000)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, gberrors.ErrBatchCommitFailed)
	require.Len(t, result.Batches, 1)
	assert.Equal(t, 1, result.Committed())
}

func TestExecuteBatched_StopFinishesCurrentBatch(t *testing.T) {
	stop := make(chan struct{})
	runner := &mockRunner{
		stats: map[string]git.LineStats{"a": lines(3000), "b": lines(3000), "c": lines(3000)},
		CommitFunc: func(string) error {
			select {
			case <-stop:
			default:
				close(stop)
			}
			return nil
		},
	}
	o := NewOrchestrator(runner, WithClock(&fakeClock{}), WithStop(stop))

	result, err := o.ExecuteBatched(context.Background(), testLease(t), candidates("a", "b", "c"), "update", 4000)
	require.ErrorIs(t, err, gberrors.ErrOperationCanceled)
	assert.Contains(t, err.Error(), "stopped before batch 2/3")
	assert.Equal(t, 1, result.Committed())
	assert.Len(t, runner.commits, 1)
}

func TestExecuteBatched_ResetFailure(t *testing.T) {
	runner := &mockRunner{
		stats:          map[string]git.LineStats{"a": lines(3000), "b": lines(3000)},
		ResetIndexFunc: func() error { return errors.New("index locked") },
	}
	_, err := NewOrchestrator(runner).ExecuteBatched(context.Background(), testLease(t), candidates("a", "b"), "update", 4000)
	require.ErrorIs(t, err, gberrors.ErrStageFailed)
	assert.Empty(t, runner.commits)
}

func TestOrchestrator_Plan(t *testing.T) {
	runner := &mockRunner{stats: map[string]git.LineStats{
		"a": lines(3000), "b": lines(1000), "c": lines(1000),
	}}
	o := NewOrchestrator(runner)

	report, err := o.Plan(context.Background(), candidates("a", "b", "c"), 4000)
	require.NoError(t, err)
	assert.True(t, report.NeedsBatching)
	assert.Equal(t, int64(5000), report.TotalEstimatedSize)
	assert.Equal(t, int64(3200), report.EffectiveTarget)
	assert.Len(t, report.Batches, 2)
	assert.Empty(t, runner.calls, "planning never touches the repository")

	report, err = o.Plan(context.Background(), candidates("b", "c"), 4000)
	require.NoError(t, err)
	assert.False(t, report.NeedsBatching)
	require.Len(t, report.Batches, 1)
	assert.Len(t, report.Batches[0].Files, 2)

	report, err = o.Plan(context.Background(), nil, 4000)
	require.NoError(t, err)
	assert.Empty(t, report.Batches)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "pending", PhasePending.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
