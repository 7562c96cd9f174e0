package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is done. Non-positive durations return at once.
func WaitFor(ctx context.Context, d time.Duration) error {
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

// Backoff is the linear delay before retry attempt n (1-based), capped at ceiling when it is positive.
func Backoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}
	d := time.Duration(attempt) * base
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}
