package checkout

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/freegames/claimer/internal/config"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/logger"
)

// RetryPolicy wraps the top-level claim invocation with a bounded retry
// restricted to timeout-class failures. Everything else is already absorbed
// per item inside the orchestrator, so a non-timeout error here is terminal
// and re-raised unchanged.
type RetryPolicy struct {
	maxAttempts int
	log         *logger.Logger
}

func NewRetryPolicy(cfg *config.Configuration, log *logger.Logger) *RetryPolicy {
	return &RetryPolicy{
		maxAttempts: cfg.Checkout.BatchAttempts,
		log:         log,
	}
}

// Execute runs op up to the configured attempt count.
func (r *RetryPolicy) Execute(ctx context.Context, op func() error) error {
	attempt := 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(r.maxAttempts-1)),
		ctx,
	)

	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !ierr.IsTimeout(err) {
			return backoff.Permanent(err)
		}
		r.log.Warnw("claim attempt timed out", "attempt", attempt, "max_attempts", r.maxAttempts)
		return err
	}, policy)
}
