package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// TestHandler_FirstSignalInterruptsOnly verifies that the first signal
// requests a graceful stop without canceling running work.
func TestHandler_FirstSignalInterruptsOnly(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()

	assert.True(t, isClosed(h.Interrupted()), "interrupted channel should be closed after signal")
	assert.NoError(t, h.Context().Err(), "context stays usable for the batch in flight")
}

// TestHandler_SecondSignalCancelsContext verifies the hard stop.
func TestHandler_SecondSignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()
	h.handleSignal()
	h.handleSignal()

	require.Error(t, h.Context().Err())
	assert.Equal(t, context.Canceled, h.Context().Err())
	assert.True(t, isClosed(h.Interrupted()))
}

// TestHandler_ListenProcessesRepeatedSignals sends signals through the
// channel the way the runtime does.
func TestHandler_ListenProcessesRepeatedSignals(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.sigChan <- nil
	assert.Eventually(t, func() bool { return isClosed(h.Interrupted()) }, time.Second, 5*time.Millisecond)

	h.sigChan <- nil
	assert.Eventually(t, func() bool { return h.Context().Err() != nil }, time.Second, 5*time.Millisecond)
}

func TestHandler_InitialState(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	assert.False(t, isClosed(h.Interrupted()), "interrupted channel should be open initially")
	assert.NoError(t, h.Context().Err())
}

// TestHandler_Stop_IsIdempotent verifies that Stop() can be called multiple
// times and cancels the context.
func TestHandler_Stop_IsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	h.Stop()

	assert.Error(t, h.Context().Err())
	assert.False(t, isClosed(h.Interrupted()), "Stop is not an interrupt")
}

// TestHandler_ParentContextCanceled verifies that the handler respects
// parent context cancellation.
func TestHandler_ParentContextCanceled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	assert.Error(t, h.Context().Err())
}
