// Package workflow sequences a single claim run: session check, ledger
// reconciliation, and the checkout batch.
package workflow

import (
	"context"
	"time"

	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/catalog"
	"github.com/freegames/claimer/internal/checkout"
	"github.com/freegames/claimer/internal/config"
	"github.com/freegames/claimer/internal/ledger"
	"github.com/freegames/claimer/internal/logger"
	"github.com/freegames/claimer/internal/types"
)

const (
	navigationSelector = "//egs-navigation"
	loginStateAttr     = "isloggedin"

	loginCheckWait = 10 * time.Second
)

// Controller is the top-level sequencer. It assumes exclusive ownership of
// the page for the duration of a run; concurrent runs against the same
// account context are a caller-side error.
type Controller struct {
	cfg     *config.Configuration
	log     *logger.Logger
	page    browser.Page
	catalog catalog.Service
	ledger  ledger.Service
	claimer checkout.BatchClaimer
	retry   *checkout.RetryPolicy
}

func NewController(
	cfg *config.Configuration,
	log *logger.Logger,
	page browser.Page,
	catalogSvc catalog.Service,
	ledgerSvc ledger.Service,
	claimer checkout.BatchClaimer,
	retry *checkout.RetryPolicy,
) *Controller {
	return &Controller{
		cfg:     cfg,
		log:     log,
		page:    page,
		catalog: catalogSvc,
		ledger:  ledgerSvc,
		claimer: claimer,
		retry:   retry,
	}
}

// Run executes one workflow run. It always returns a result: internal
// failures downgrade to logged warnings, and only exhaustion of the bounded
// top-level retry surfaces as the run's error outcome.
func (c *Controller) Run(ctx context.Context) *types.RunResult {
	result := &types.RunResult{
		RunID:     types.GenerateRunID(),
		StartedAt: time.Now(),
	}
	log := c.log.With("run_id", result.RunID)
	defer func() {
		result.CompletedAt = time.Now()
		log.Infow("workflow run complete",
			"state", result.State,
			"outstanding", result.Outstanding,
			"duration", result.CompletedAt.Sub(result.StartedAt))
	}()

	if !c.sessionValid(log) {
		// Clean "ignored" outcome: no purchase logic runs on an
		// unauthenticated session.
		result.State = types.RunStateSessionInvalid
		return result
	}

	outstanding := c.outstanding(ctx)
	result.Outstanding = len(outstanding)
	if len(outstanding) == 0 {
		log.Infow("all current promotions are already in the library")
		result.State = types.RunStateNothingOutstanding
		return result
	}

	for _, promotion := range outstanding {
		log.Infow("outstanding promotion", "title", promotion.Title, "url", promotion.URL)
	}

	err := c.retry.Execute(ctx, func() error {
		return c.claimer.Claim(ctx, c.page, outstanding)
	})
	if err != nil {
		log.Errorw("claim batch failed", "error", err)
		result.State = types.RunStateFailed
		result.Err = err
		return result
	}

	result.State = types.RunStateCompleted
	return result
}

// sessionValid navigates to the promotions landing page and reads the login
// indicator. Any failure to read it is treated as an invalid session.
func (c *Controller) sessionValid(log *logger.Logger) bool {
	if err := c.page.Goto(c.cfg.Store.LandingURL, browser.WaitDOMContentLoaded); err != nil {
		log.Warnw("failed to load promotions landing page", "error", err)
		return false
	}

	state, err := c.page.Locator(navigationSelector).GetAttribute(loginStateAttr, loginCheckWait)
	if err != nil {
		log.Warnw("failed to read login indicator", "error", err)
		return false
	}
	if state == "false" {
		log.Errorw("session cookies are not valid, skipping run", "login_url", c.cfg.Store.LoginURL)
		return false
	}
	return true
}

// outstanding fetches the catalog and diffs it against the ownership ledger.
// The ledger diff runs first because it is cheap; the live "In Library" check
// during checkout remains the authoritative guard.
func (c *Controller) outstanding(ctx context.Context) []types.Promotion {
	promotions := c.catalog.Promotions(ctx)
	if len(promotions) == 0 {
		return nil
	}
	return c.ledger.Outstanding(ctx, promotions)
}
