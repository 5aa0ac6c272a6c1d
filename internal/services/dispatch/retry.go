package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/rentradar/internal/interfaces"
)

// RetryPolicy retries transient extraction failures with linear backoff.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// IsTransient reports whether an extraction error is worth retrying.
// Invalid-content failures are deterministic: the same page produces the same
// failure, so retrying only burns model budget.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, interfaces.ErrInvalidContent)
}

// Wait sleeps the linear backoff for a completed attempt (1-based), honoring
// context cancellation.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	backoff := time.Duration(attempt) * p.Backoff
	if backoff <= 0 {
		return nil
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
