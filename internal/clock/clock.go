// Package clock provides an abstraction for time operations to improve testability.
// Code that needs the current time or has to pause uses Clock so tests can
// substitute a fake that records delays instead of sleeping.
package clock

import (
	"context"
	"time"

	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses for d, returning early with the context error if ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks on a real timer.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	return ctxutil.Sleep(ctx, d)
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}
