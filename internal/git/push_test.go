package git

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// MockRunner implements Runner interface for testing.
type MockRunner struct {
	PushFunc func(ctx context.Context, remote, branch string, setUpstream bool) error
}

func (m *MockRunner) StatusPorcelain(context.Context) (string, error) { return "", nil }

func (m *MockRunner) ListUntracked(context.Context, string) ([]string, error) { return nil, nil }

func (m *MockRunner) LineStats(context.Context, string, bool) (LineStats, error) {
	return LineStats{}, nil
}

func (m *MockRunner) UntrackedLineStats(context.Context, string) (LineStats, error) {
	return LineStats{}, nil
}

func (m *MockRunner) Add(context.Context, []string) error { return nil }

func (m *MockRunner) AddAll(context.Context) error { return nil }

func (m *MockRunner) ResetIndex(context.Context) error { return nil }

func (m *MockRunner) HasStagedChanges(context.Context) (bool, error) { return true, nil }

func (m *MockRunner) Commit(context.Context, string) error { return nil }

func (m *MockRunner) Push(ctx context.Context, remote, branch string, setUpstream bool) error {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, remote, branch, setUpstream)
	}
	return nil
}

func (m *MockRunner) CurrentBranch(context.Context) (string, error) { return "main", nil }

var _ Runner = (*MockRunner)(nil)

func pushErr(stderr string) error {
	return fmt.Errorf("failed to push: git push failed: %s: %w", stderr, gberrors.ErrGitOperation)
}

func TestPushRunner_Push(t *testing.T) {
	t.Run("success on first attempt uses default remote", func(t *testing.T) {
		var gotRemote, gotBranch string
		runner := &MockRunner{PushFunc: func(_ context.Context, remote, branch string, _ bool) error {
			gotRemote, gotBranch = remote, branch
			return nil
		}}

		result, err := NewPushRunner(runner).Push(context.Background(), PushOptions{Branch: "main"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Attempts)
		assert.Equal(t, "origin", gotRemote)
		assert.Equal(t, "main", gotBranch)
	})

	t.Run("retries network errors", func(t *testing.T) {
		calls := 0
		runner := &MockRunner{PushFunc: func(context.Context, string, string, bool) error {
			calls++
			if calls < 3 {
				return pushErr("fatal: unable to access 'https://x/': Could not resolve host: x")
			}
			return nil
		}}

		result, err := NewPushRunner(runner, WithPushRetryConfig(fastRetryConfig(3))).
			Push(context.Background(), PushOptions{Remote: "origin", Branch: "main"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 3, result.Attempts)
	})

	t.Run("network exhaustion maps to sentinel", func(t *testing.T) {
		runner := &MockRunner{PushFunc: func(context.Context, string, string, bool) error {
			return pushErr("connection refused")
		}}

		result, err := NewPushRunner(runner, WithPushRetryConfig(fastRetryConfig(2))).
			Push(context.Background(), PushOptions{Branch: "main"})
		require.ErrorIs(t, err, gberrors.ErrPushNetworkFailed)
		assert.Equal(t, 2, result.Attempts)
		assert.Equal(t, PushErrorNetwork, result.ErrorType)
	})

	t.Run("auth errors are not retried", func(t *testing.T) {
		calls := 0
		runner := &MockRunner{PushFunc: func(context.Context, string, string, bool) error {
			calls++
			return pushErr("fatal: Authentication failed for 'https://example.com/r.git/'")
		}}

		_, err := NewPushRunner(runner, WithPushRetryConfig(fastRetryConfig(3))).
			Push(context.Background(), PushOptions{Branch: "main"})
		require.ErrorIs(t, err, gberrors.ErrPushAuthFailed)
		assert.Equal(t, 1, calls)
	})

	t.Run("non-fast-forward keeps raw error", func(t *testing.T) {
		runner := &MockRunner{PushFunc: func(context.Context, string, string, bool) error {
			return pushErr("! [rejected] main -> main (fetch first)")
		}}

		result, err := NewPushRunner(runner).Push(context.Background(), PushOptions{Branch: "main"})
		require.ErrorIs(t, err, gberrors.ErrGitOperation)
		assert.Contains(t, err.Error(), "non-fast-forward")
		assert.Equal(t, PushErrorNonFastForward, result.ErrorType)
	})

	t.Run("empty branch", func(t *testing.T) {
		_, err := NewPushRunner(&MockRunner{}).Push(context.Background(), PushOptions{})
		require.ErrorIs(t, err, gberrors.ErrEmptyValue)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewPushRunner(&MockRunner{}).Push(ctx, PushOptions{Branch: "main"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestClassifyPushError(t *testing.T) {
	assert.Equal(t, PushErrorNone, classifyPushError(nil))
	assert.Equal(t, PushErrorTimeout, classifyPushError(fmt.Errorf("x: %w", context.DeadlineExceeded)))
	assert.Equal(t, PushErrorOther, classifyPushError(errors.New("something else")))
	assert.Equal(t, "non_fast_forward", PushErrorNonFastForward.String())
}
