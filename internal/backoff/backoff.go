// Package backoff holds the waits shared by the fetch and notification
// retry loops.
package backoff

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter
// case. A non-positive d only reports whether ctx is already done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Exponential returns base doubled once per completed attempt, so attempt 0
// waits base. The shift is capped to stay clear of overflow.
func Exponential(base time.Duration, attempt int) time.Duration {
	return base << uint(min(max(attempt, 0), 16))
}

// Linear returns step multiplied by attempt.
func Linear(step time.Duration, attempt int) time.Duration {
	return step * time.Duration(attempt)
}
