// Helper functions that deal with atomic counters shared between goroutines
package atomics

import (
	"context"
	"sync/atomic"
	"time"
)

// Blocks until the counter reads 0 on consecutive polls or the context ends.
// Polling interval backs off exponentially up to a cap.
func WaitUntilZero(ctx context.Context, value *atomic.Int64) (reachedZero bool, lastValue int64) {
	const successfulStreakCount = 2

	backoff := 5 * time.Millisecond
	maxBackoff := 250 * time.Millisecond
	zeroStreak := 0

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			lastValue = value.Load()
			reachedZero = lastValue == 0 && zeroStreak > 0
			return
		case <-timer.C:
		}

		lastValue = value.Load()
		if lastValue == 0 {
			zeroStreak++
			if zeroStreak >= successfulStreakCount {
				reachedZero = true
				return
			}
		} else {
			zeroStreak = 0
		}

		timer.Reset(backoff)
		if backoff < maxBackoff {
			backoff = min(backoff*2, maxBackoff)
		}
	}
}
