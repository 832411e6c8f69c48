package dialect

import (
	"context"
	"time"

	"github.com/fluxforge/fluxforge/fferr"
)

// backoffSchedule is the exponential backoff spec §7 mandates for
// ConnectionError: three retries at 1s, 2s, 4s before surfacing.
var backoffSchedule = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// ConnectWithRetry calls connect up to len(backoffSchedule)+1 times,
// sleeping the schedule between attempts, and wraps the final failure as
// fferr.ErrConnection. ctx cancellation aborts the wait immediately.
func ConnectWithRetry[T any](ctx context.Context, connect func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; ; attempt++ {
		v, err := connect(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= len(backoffSchedule) {
			break
		}
		select {
		case <-ctx.Done():
			return zero, fferr.Wrap(fferr.ErrCancelled, "connect cancelled: %v", ctx.Err())
		case <-time.After(backoffSchedule[attempt]):
		}
	}

	return zero, fferr.Wrap(fferr.ErrConnection, "failed to connect after %d attempts: %v", len(backoffSchedule)+1, lastErr)
}
