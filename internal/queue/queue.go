// Package queue serializes operations that touch the repository.
//
// A Queue has a single slot. Whoever holds its Lease is the only caller
// allowed to stage, commit or push. The batch orchestrator takes the lease
// as a parameter and assumes exclusivity while it runs; it does not enforce it.
package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
)

// Queue is a single-slot operation queue.
type Queue struct {
	sem    *semaphore.Weighted
	logger zerolog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger for lease tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// New creates an empty Queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		sem:    semaphore.NewWeighted(1),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Acquire blocks until the slot is free or ctx is done.
func (q *Queue) Acquire(ctx context.Context) (*Lease, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := q.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	q.logger.Debug().Msg("operation lease acquired")
	return &Lease{q: q}, nil
}

// TryAcquire takes the slot if it is free. It never blocks.
func (q *Queue) TryAcquire() (*Lease, bool) {
	if !q.sem.TryAcquire(1) {
		return nil, false
	}
	q.logger.Debug().Msg("operation lease acquired")
	return &Lease{q: q}, true
}

// Lease is the token proving the holder owns the queue slot.
type Lease struct {
	q    *Queue
	once sync.Once
}

// Release returns the slot. Calling it more than once is a no-op.
func (l *Lease) Release() {
	if l == nil || l.q == nil {
		return
	}
	l.once.Do(func() {
		l.q.sem.Release(1)
		l.q.logger.Debug().Msg("operation lease released")
	})
}
