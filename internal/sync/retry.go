package sync

import (
	"context"
	"time"

	"github.com/codecontext/codecontext/internal/errs"
)

// retryDo calls fn up to attempts times, waiting base*2^n between
// attempts (n = 0-indexed failure count), stopping early if ctx is
// cancelled. No pack repo ships a composable backoff helper, so this is
// a small hand-rolled primitive, justified in DESIGN.md.
func retryDo(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		wait := base << attempt
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return errs.Wrap(errs.Indexing, "exhausted retries", lastErr)
}
