package d1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// RetryPolicy bounds how often a transient failure is retried. The
// delay between attempts doubles each time, starting at BaseDelay.
// Errors not marked ErrTransient propagate on the first attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do runs op under the policy, honoring ctx between attempts.
func (p RetryPolicy) Do(ctx context.Context, log *slog.Logger, op func(context.Context) error) error {
	delay := p.BaseDelay
	var err error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = op(ctx)
		if err == nil || !errors.Is(err, ErrTransient) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		log.Warn("transient failure, retrying",
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("retry budget exhausted after %d attempts: %w", p.MaxAttempts, err)
}
