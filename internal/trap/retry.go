package trap

import (
	"context"
	"time"
)

// withRetry runs op up to maxAttempts times, giving each attempt its own
// timeout slice. Timeouts, transport errors, and bad payloads all consume an
// attempt the same way; the last error comes back only once the budget is
// spent. A fired timeout abandons the in-flight attempt (a late result is
// discarded with its context).
func withRetry[T any](ctx context.Context, maxAttempts int, perAttempt time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		result, err := op(attemptCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
