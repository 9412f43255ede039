package checkout

import (
	"time"

	"github.com/freegames/claimer/internal/browser"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/logger"
)

const purchaseFrameSelector = "//iframe[contains(@id, 'webPurchaseContainer') or contains(@src, 'purchase')]"

// confirmStrategy is one way of locating the payment frame's confirm control,
// with its own resolution timeout.
type confirmStrategy struct {
	name    string
	timeout time.Duration
	locate  func(frame browser.Frame) browser.Locator
}

// ConfirmMatcher resolves the payment confirm control by trying an ordered
// list of strategies until one finds a visible control. The storefront ships
// two shapes of the control; the text-labeled one gets the longer timeout.
type ConfirmMatcher struct {
	strategies []confirmStrategy
	log        *logger.Logger
}

func NewConfirmMatcher(log *logger.Logger) *ConfirmMatcher {
	return &ConfirmMatcher{
		log: log,
		strategies: []confirmStrategy{
			{
				name:    "place_order_text",
				timeout: 15 * time.Second,
				locate: func(frame browser.Frame) browser.Locator {
					return frame.LocatorWithText("button", "PLACE ORDER")
				},
			},
			{
				name:    "confirm_class",
				timeout: 5 * time.Second,
				locate: func(frame browser.Frame) browser.Locator {
					return frame.Locator("//button[contains(@class, 'payment-confirm__btn')]")
				},
			},
		},
	}
}

// Resolve returns the payment frame and its confirm control. All strategies
// failing is fatal for the current checkout flow.
func (m *ConfirmMatcher) Resolve(page browser.Page) (browser.Frame, browser.Locator, error) {
	frame := page.FrameLocator(purchaseFrameSelector)

	for _, strategy := range m.strategies {
		control := strategy.locate(frame)
		err := control.WaitVisible(strategy.timeout)
		if err == nil {
			m.log.Debugw("resolved payment confirm control", "strategy", strategy.name)
			return frame, control, nil
		}
		if !ierr.IsTimeout(err) {
			return nil, nil, err
		}
	}

	return nil, nil, ierr.NewError("payment confirm control not found").
		WithHint("No matcher strategy resolved the confirm control in the purchase frame").
		Mark(ierr.ErrNotFound)
}
