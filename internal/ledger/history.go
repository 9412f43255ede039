package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/config"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/types"
)

const historyBodyTimeout = 10 * time.Second

// pageHistoryFetcher reads the order-history endpoint through the
// authenticated page session. The endpoint renders the JSON payload inside a
// <pre> element.
type pageHistoryFetcher struct {
	cfg  *config.Configuration
	page browser.Page
}

// NewPageHistoryFetcher returns a HistoryFetcher backed by the live session.
func NewPageHistoryFetcher(cfg *config.Configuration, page browser.Page) HistoryFetcher {
	return &pageHistoryFetcher{cfg: cfg, page: page}
}

func (f *pageHistoryFetcher) FetchOrderHistory(ctx context.Context) (*types.OrderHistory, error) {
	if err := f.page.Goto(f.cfg.Store.OrderHistoryURL, browser.WaitDOMContentLoaded); err != nil {
		return nil, err
	}

	body, err := f.page.Locator("//pre").TextContent(historyBodyTimeout)
	if err != nil {
		return nil, err
	}

	var history types.OrderHistory
	if err := json.Unmarshal([]byte(body), &history); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Order history payload was not valid JSON").
			Mark(ierr.ErrValidation)
	}
	return &history, nil
}
