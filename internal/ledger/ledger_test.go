package ledger

import (
	"strings"
	"testing"

	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/testutil"
	"github.com/freegames/claimer/internal/types"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseTestSuite
	fetcher *testutil.FakeHistoryFetcher
	service Service
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseTestSuite.SetupTest()
	s.fetcher = &testutil.FakeHistoryFetcher{History: &types.OrderHistory{}}
	s.service = NewService(s.GetConfig(), s.fetcher, s.GetCache(), s.GetLogger())
}

func ns(r string) string {
	return strings.Repeat(r, types.NamespaceLength)
}

func (s *LedgerServiceSuite) TestOnlyValidPurchaseItemsEnterLedger() {
	s.fetcher.History = &types.OrderHistory{Orders: []types.Order{
		{OrderType: types.OrderTypePurchase, Items: []types.OrderItem{
			{Namespace: ns("a")},
			{Namespace: "too-short"},
		}},
		{OrderType: "GIFT", Items: []types.OrderItem{
			{Namespace: ns("b")},
		}},
		{OrderType: "REFUND", Items: []types.OrderItem{
			{Namespace: ns("c")},
		}},
	}}

	owned := s.service.Ledger(s.GetContext())

	s.Len(owned, 1)
	s.True(owned.Owns(ns("a")))
	s.False(owned.Owns(ns("b")))
	s.False(owned.Owns(ns("c")))
	s.False(owned.Owns("too-short"))
}

func (s *LedgerServiceSuite) TestHistoryFetchedOncePerRun() {
	s.service.Ledger(s.GetContext())
	s.service.Ledger(s.GetContext())
	s.service.Outstanding(s.GetContext(), nil)

	s.Equal(1, s.fetcher.Calls)
}

func (s *LedgerServiceSuite) TestFetchFailureDegradesToEmptyLedger() {
	s.fetcher.Err = ierr.NewError("order history endpoint down").Mark(ierr.ErrTimeout)
	promotions := []types.Promotion{
		{Namespace: ns("a"), Title: "A"},
		{Namespace: ns("b"), Title: "B"},
	}

	outstanding := s.service.Outstanding(s.GetContext(), promotions)

	// Conservative: everything stays outstanding.
	s.Len(outstanding, 2)
}

func (s *LedgerServiceSuite) TestOutstandingIsSetDifference() {
	s.fetcher.History = &types.OrderHistory{Orders: []types.Order{
		{OrderType: types.OrderTypePurchase, Items: []types.OrderItem{
			{Namespace: ns("a")},
		}},
	}}

	owned := types.Promotion{Namespace: ns("a"), Title: "Owned"}
	missing := types.Promotion{Namespace: ns("b"), Title: "Missing"}

	outstanding := s.service.Outstanding(s.GetContext(), []types.Promotion{owned, missing})

	s.Len(outstanding, 1)
	s.Equal(missing.Namespace, outstanding[0].Namespace)
}

func (s *LedgerServiceSuite) TestOutstandingRecomputedEachCall() {
	first := s.service.Outstanding(s.GetContext(), []types.Promotion{
		{Namespace: ns("a")},
	})
	second := s.service.Outstanding(s.GetContext(), []types.Promotion{
		{Namespace: ns("b")},
		{Namespace: ns("c")},
	})

	s.Len(first, 1)
	s.Len(second, 2)
}
