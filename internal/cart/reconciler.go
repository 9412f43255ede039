// Package cart reconciles the shared shopping cart down to free items only.
package cart

import (
	"context"
	"time"

	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/config"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/logger"
)

const (
	offerCardSelector  = "//div[@data-testid='offer-card-layout-wrapper']"
	freeMarkerSelector = "//span[text()='Free']"
	wishlistSelector   = "//button//span[text()='Move to wishlist']"

	wishlistClickTimeout = 5 * time.Second
)

// Reconciler strips non-free line items out of the cart before checkout.
type Reconciler interface {
	// Reconcile sweeps the visible offer cards and moves every paid one to
	// the wishlist, waiting for the cart to re-render between passes. It
	// returns nil once a pass finds no paid items. Exhausting the pass
	// budget with paid items still present returns ErrCartUnreconciled.
	// An empty cart is trivially reconciled.
	Reconcile(ctx context.Context, page browser.Page) error
}

type reconciler struct {
	cfg *config.Configuration
	log *logger.Logger
}

func NewReconciler(cfg *config.Configuration, log *logger.Logger) Reconciler {
	return &reconciler{cfg: cfg, log: log}
}

func (r *reconciler) Reconcile(ctx context.Context, page browser.Page) error {
	budget := r.cfg.Checkout.ReconcileBudget
	for {
		moved, err := r.sweep(page)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to sweep paid items out of the cart").
				Mark(ierr.ErrCartUnreconciled)
		}
		if moved == 0 {
			return nil
		}
		r.log.Debugw("moved paid items to wishlist", "count", moved, "budget_left", budget)
		if budget == 0 {
			return ierr.NewError("cart reconciliation budget exhausted").
				WithHintf("cart still held paid items after %d passes", r.cfg.Checkout.ReconcileBudget).
				Mark(ierr.ErrCartUnreconciled)
		}
		budget--
		page.Pause(r.cfg.Checkout.ReconcileWait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// sweep walks the current offer cards once and fires the wishlist control on
// every card without a free marker. Returns how many removals were issued.
func (r *reconciler) sweep(page browser.Page) (int, error) {
	cards := page.Locator(offerCardSelector)
	count, err := cards.Count()
	if err != nil {
		return 0, err
	}

	moved := 0
	for i := 0; i < count; i++ {
		card := cards.Nth(i)
		free, err := card.Locator(freeMarkerSelector).IsVisible()
		if err != nil {
			return moved, err
		}
		if free {
			continue
		}
		if err := card.Locator(wishlistSelector).Click(browser.ClickOptions{
			Timeout: wishlistClickTimeout,
		}); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
