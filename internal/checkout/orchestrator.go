// Package checkout drives the storefront's two checkout paths for a batch of
// outstanding promotions: single-item instant checkout and multi-item cart
// checkout.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/cart"
	"github.com/freegames/claimer/internal/challenge"
	"github.com/freegames/claimer/internal/config"
	"github.com/freegames/claimer/internal/logger"
	"github.com/freegames/claimer/internal/types"
)

const (
	continueButtonSelector = "//button//span[text()='Continue']"
	asideButtonsSelector   = "//aside//button"
	purchaseCTASelector    = "//aside//button[@data-testid='purchase-cta-button']"
	checkOutSelector       = "//button//span[text()='Check Out']"
	agreeLabelSelector     = "//label[@for='agree']"
	acceptButtonSelector   = "//button//span[text()='Accept']"
	ukConfirmSelector      = "//button[contains(@class, 'payment-confirm__btn')]"

	labelInLibrary  = "In Library"
	labelBuyNow     = "Buy Now"
	labelGet        = "Get"
	labelAddToCart  = "Add To Cart"
	labelViewInCart = "View In Cart"

	contentWarningWait = 5 * time.Second
	asideTextWait      = 5 * time.Second
	ctaTextWait        = 5 * time.Second
	viewInCartWait     = 10 * time.Second
	challengeGraceWait = 3 * time.Second
	confirmHiddenWait  = 20 * time.Second
	licenseWait        = 4 * time.Second
	ukEnabledWait      = 5 * time.Second
)

// BatchClaimer drives the checkout of a batch of outstanding promotions
// against a single exclusively-owned page.
type BatchClaimer interface {
	Claim(ctx context.Context, page browser.Page, promotions []types.Promotion) error
}

type orchestrator struct {
	cfg     *config.Configuration
	log     *logger.Logger
	gate    *challenge.Gate
	cart    cart.Reconciler
	matcher *ConfirmMatcher
}

func NewOrchestrator(
	cfg *config.Configuration,
	log *logger.Logger,
	gate *challenge.Gate,
	reconciler cart.Reconciler,
) BatchClaimer {
	return &orchestrator{
		cfg:     cfg,
		log:     log,
		gate:    gate,
		cart:    reconciler,
		matcher: NewConfirmMatcher(log),
	}
}

// Claim routes every promotion through its purchase affordance, then runs the
// cart checkout sequence once if any item landed in the cart. Per-item
// failures are logged and skipped; they never abort the batch.
func (o *orchestrator) Claim(ctx context.Context, page browser.Page, promotions []types.Promotion) error {
	pendingCart := false

	for _, promotion := range promotions {
		added, err := o.route(ctx, page, promotion)
		if err != nil {
			o.log.Warnw("failed to process promotion",
				"title", promotion.Title, "url", promotion.URL, "error", err)
			continue
		}
		pendingCart = pendingCart || added
	}

	if !pendingCart {
		o.log.Infow("claim batch complete, nothing pending in cart")
		return nil
	}

	if err := o.cartCheckout(ctx, page); err != nil {
		return err
	}

	if err := page.WaitForURL(o.cfg.Store.CartSuccessURL, o.cfg.Checkout.SuccessWait); err != nil {
		// Non-fatal: the order may still have gone through without the
		// expected navigation.
		o.log.Warnw("did not observe cart success navigation", "error", err)
		return nil
	}
	o.log.Infow("cart checkout confirmed")
	return nil
}

// route resolves a single promotion's purchase affordance and either claims
// it instantly or adds it to the cart. Returns whether a cart item is now
// pending.
func (o *orchestrator) route(ctx context.Context, page browser.Page, promotion types.Promotion) (bool, error) {
	if err := page.Goto(promotion.URL, browser.WaitLoad); err != nil {
		return false, err
	}

	o.dismissContentWarning(page)

	owned, err := o.alreadyInLibrary(page)
	if err != nil {
		return false, err
	}
	if owned {
		// Second line of defense after the ledger diff: the live page is
		// authoritative when the order history lags.
		o.log.Infow("already in library", "title", promotion.Title)
		return false, nil
	}

	cta := page.Locator(purchaseCTASelector)
	label, err := cta.TextContent(ctaTextWait)
	if err != nil {
		return false, err
	}

	switch {
	case strings.Contains(label, labelBuyNow),
		!strings.Contains(label, labelGet) && !strings.Contains(label, labelAddToCart):
		o.log.Warnw("not claimable as a free promotion", "title", promotion.Title, "label", label)
		return false, nil

	case strings.Contains(label, labelGet):
		o.log.Debugw("starting instant checkout", "title", promotion.Title)
		if err := cta.Click(browser.ClickOptions{}); err != nil {
			return false, err
		}
		o.instantCheckout(ctx, page)
		return false, nil

	default: // Add To Cart
		o.log.Debugw("adding to cart", "title", promotion.Title)
		if err := cta.Click(browser.ClickOptions{}); err != nil {
			return false, err
		}
		if err := cta.WaitForText(labelViewInCart, viewInCartWait); err != nil {
			o.log.Debugw("cta label did not flip to view-in-cart", "title", promotion.Title)
		}
		return true, nil
	}
}

// instantCheckout runs the purchase-confirmation modal flow. Failures abandon
// the current item after a page reload; they are never propagated.
func (o *orchestrator) instantCheckout(ctx context.Context, page browser.Page) {
	if err := o.runInstant(ctx, page); err != nil {
		o.log.Errorw("instant checkout failed", "error", err)
		_ = page.Reload()
	}
}

func (o *orchestrator) runInstant(ctx context.Context, page browser.Page) error {
	_, confirm, err := o.matcher.Resolve(page)
	if err != nil {
		return err
	}

	if err := confirm.Click(browser.ClickOptions{Force: true}); err != nil {
		return err
	}

	// Give a verification challenge time to surface before gating on it.
	page.Pause(challengeGraceWait)
	if err := o.gate.Await(ctx, page); err != nil {
		return err
	}

	// If the confirm control survived the challenge, the click was most
	// likely swallowed by the overlay. One idempotent re-submission.
	visible, err := confirm.IsVisible()
	if err != nil {
		return err
	}
	if visible {
		o.log.Warnw("confirm control still visible after challenge, clicking again")
		if err := confirm.Click(browser.ClickOptions{Force: true}); err != nil {
			return err
		}
	}

	if err := confirm.WaitHidden(confirmHiddenWait); err != nil {
		// Non-fatal for the batch: log and move on to the next item.
		o.log.Errorw("order confirmation timed out, confirm control still visible")
		return nil
	}

	o.log.Infow("instant checkout confirmed")
	return nil
}

// cartCheckout runs the cart checkout sequence, reloading and retrying the
// whole sequence on failure up to the configured attempt bound. The upstream
// behavior retried without bound; the bound makes a persistently broken page
// a terminal failure instead of a hang.
func (o *orchestrator) cartCheckout(ctx context.Context, page browser.Page) error {
	sequence := func() error {
		if err := page.Goto(o.cfg.Store.CartURL, browser.WaitDOMContentLoaded); err != nil {
			return err
		}

		if err := o.cart.Reconcile(ctx, page); err != nil {
			if o.cfg.Checkout.StrictCartGate {
				// Never check out a cart that may still hold paid items.
				return backoff.Permanent(err)
			}
			o.log.Warnw("cart not fully reconciled, proceeding anyway", "error", err)
		}

		if err := page.Locator(checkOutSelector).Click(browser.ClickOptions{}); err != nil {
			return err
		}

		o.agreeLicense(page)

		frame, _, err := o.matcher.Resolve(page)
		if err != nil {
			return err
		}

		o.ukConfirmOrder(frame)

		return o.gate.Await(ctx, page)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(o.cfg.Checkout.CartAttempts-1)),
		ctx,
	)

	return backoff.RetryNotify(sequence, policy, func(err error, _ time.Duration) {
		o.log.Warnw("cart checkout attempt failed, reloading", "error", err)
		_ = page.Reload()
	})
}

// dismissContentWarning clicks through an age/content warning dialog when one
// is present. Absence is the normal case.
func (o *orchestrator) dismissContentWarning(page browser.Page) {
	continueButton := page.Locator(continueButtonSelector)
	if err := continueButton.WaitVisible(contentWarningWait); err != nil {
		return
	}
	o.log.Debugw("dismissing content warning")
	_ = continueButton.Click(browser.ClickOptions{})
}

// alreadyInLibrary scans the side panel affordances for the library badge.
func (o *orchestrator) alreadyInLibrary(page browser.Page) (bool, error) {
	buttons := page.Locator(asideButtonsSelector)
	count, err := buttons.Count()
	if err != nil {
		return false, err
	}

	var texts strings.Builder
	for i := 0; i < count; i++ {
		text, err := buttons.Nth(i).TextContent(asideTextWait)
		if err != nil {
			return false, err
		}
		texts.WriteString(text)
	}
	return strings.Contains(texts.String(), labelInLibrary), nil
}

// agreeLicense accepts the license checkbox and its confirmation button when
// the storefront interjects them. Absence is not an error.
func (o *orchestrator) agreeLicense(page browser.Page) {
	if err := page.Locator(agreeLabelSelector).Click(browser.ClickOptions{
		Timeout: licenseWait,
	}); err != nil {
		return
	}
	o.log.Debugw("agreeing to license")

	accept := page.Locator(acceptButtonSelector)
	if enabled, err := accept.IsEnabled(licenseWait); err == nil && enabled {
		_ = accept.Click(browser.ClickOptions{})
	}
}

// ukConfirmOrder clicks the region-specific confirm control; its absence is
// tolerated.
func (o *orchestrator) ukConfirmOrder(frame browser.Frame) {
	control := frame.Locator(ukConfirmSelector)
	enabled, err := control.IsEnabled(ukEnabledWait)
	if err != nil || !enabled {
		return
	}
	if err := control.Click(browser.ClickOptions{}); err == nil {
		o.log.Debugw("confirmed order via region-specific control")
	}
}
