package testutil

import (
	"context"

	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/types"
)

// FakeSolver implements challenge.Solver with a scripted outcome sequence.
type FakeSolver struct {
	Errs  []error
	Calls int
}

func (s *FakeSolver) WaitForChallenge(_ context.Context, _ browser.Page) error {
	s.Calls++
	if len(s.Errs) == 0 {
		return nil
	}
	err := s.Errs[0]
	s.Errs = s.Errs[1:]
	return err
}

// FakeHistoryFetcher implements ledger.HistoryFetcher.
type FakeHistoryFetcher struct {
	History *types.OrderHistory
	Err     error
	Calls   int
}

func (f *FakeHistoryFetcher) FetchOrderHistory(_ context.Context) (*types.OrderHistory, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.History, nil
}

// FakeCatalog implements catalog.Service with a fixed promotion list.
type FakeCatalog struct {
	Items []types.Promotion
}

func (c *FakeCatalog) Promotions(_ context.Context) []types.Promotion {
	return c.Items
}

// FakeClaimer implements checkout.BatchClaimer with a scripted outcome
// sequence, one entry per attempt.
type FakeClaimer struct {
	Errs    []error
	Calls   int
	Claimed [][]types.Promotion
}

func (c *FakeClaimer) Claim(_ context.Context, _ browser.Page, promotions []types.Promotion) error {
	c.Calls++
	c.Claimed = append(c.Claimed, promotions)
	if len(c.Errs) == 0 {
		return nil
	}
	err := c.Errs[0]
	c.Errs = c.Errs[1:]
	return err
}
