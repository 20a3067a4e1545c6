// Package signal turns SIGINT and SIGTERM into a two-stage shutdown for
// gitbatch commands.
//
// The first signal closes Interrupted: a batched commit finishes the batch
// in flight and stops before the next one. A second signal cancels Context,
// which aborts running git processes.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler manages shutdown by listening for interrupt signals.
type Handler struct {
	ctx         context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	mu          sync.Mutex
	received    int
	stopOnce    sync.Once
	sigChan     chan os.Signal
}

// NewHandler creates a signal handler that listens for SIGINT and SIGTERM.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	orch := batch.NewOrchestrator(runner, batch.WithStop(h.Interrupted()))
//	result, err := orch.ExecuteBatched(h.Context(), lease, candidates, msg, budget)
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffer of 1 so signal.Notify does not drop a signal while busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context canceled by the second signal or by Stop.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes on the first signal.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop stops listening for signals and cancels Context.
// Always call this when done to prevent resource leaks.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// handleSignal advances the shutdown by one stage.
func (h *Handler) handleSignal() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.received++
	switch h.received {
	case 1:
		close(h.interrupted)
	case 2:
		h.cancel()
	}
}

// listen handles signals until Stop is called or the context ends.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
