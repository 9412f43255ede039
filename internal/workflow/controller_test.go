package workflow

import (
	"strings"
	"testing"

	"github.com/freegames/claimer/internal/checkout"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/ledger"
	"github.com/freegames/claimer/internal/testutil"
	"github.com/freegames/claimer/internal/types"
	"github.com/stretchr/testify/suite"
)

type ControllerSuite struct {
	testutil.BaseTestSuite
	page    *testutil.FakePage
	catalog *testutil.FakeCatalog
	fetcher *testutil.FakeHistoryFetcher
	claimer *testutil.FakeClaimer
}

func TestController(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.BaseTestSuite.SetupTest()
	s.page = testutil.NewFakePage()
	s.catalog = &testutil.FakeCatalog{}
	s.fetcher = &testutil.FakeHistoryFetcher{History: &types.OrderHistory{}}
	s.claimer = &testutil.FakeClaimer{}
	s.loggedIn(true)
}

func (s *ControllerSuite) loggedIn(ok bool) {
	indicator := testutil.NewFakeElement("")
	if ok {
		indicator.Attrs[loginStateAttr] = "true"
	} else {
		indicator.Attrs[loginStateAttr] = "false"
	}
	s.page.SetElement(navigationSelector, indicator)
}

func (s *ControllerSuite) controller() *Controller {
	ledgerSvc := ledger.NewService(s.GetConfig(), s.fetcher, s.GetCache(), s.GetLogger())
	retry := checkout.NewRetryPolicy(s.GetConfig(), s.GetLogger())
	return NewController(s.GetConfig(), s.GetLogger(), s.page, s.catalog, ledgerSvc, s.claimer, retry)
}

func promo(title string) types.Promotion {
	return types.Promotion{Namespace: ns(title), Title: title, URL: "https://store.example.com/p/" + title}
}

// ns pads a readable marker out to a well-formed catalog namespace.
func ns(marker string) string {
	return (marker + strings.Repeat("x", types.NamespaceLength))[:types.NamespaceLength]
}

func (s *ControllerSuite) TestInvalidSessionShortCircuits() {
	s.loggedIn(false)

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateSessionInvalid, result.State)
	s.Equal(0, s.claimer.Calls)
	s.Equal(0, s.fetcher.Calls)
}

func (s *ControllerSuite) TestUnreadableLoginIndicatorIsInvalidSession() {
	s.page.SetElement(navigationSelector, nil)

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateSessionInvalid, result.State)
	s.Equal(0, s.claimer.Calls)
}

func (s *ControllerSuite) TestEmptyCatalogMeansNothingOutstanding() {
	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateNothingOutstanding, result.State)
	s.Equal(0, result.Outstanding)
	s.Equal(0, s.claimer.Calls)
}

func (s *ControllerSuite) TestFullyOwnedCatalogMeansNothingOutstanding() {
	s.catalog.Items = []types.Promotion{promo("owned-game")}
	s.fetcher.History = &types.OrderHistory{Orders: []types.Order{
		{OrderType: types.OrderTypePurchase, Items: []types.OrderItem{
			{Namespace: ns("owned-game")},
		}},
	}}

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateNothingOutstanding, result.State)
	s.Equal(0, s.claimer.Calls)
}

func (s *ControllerSuite) TestOutstandingBatchClaimed() {
	s.catalog.Items = []types.Promotion{promo("a"), promo("b")}

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateCompleted, result.State)
	s.Equal(2, result.Outstanding)
	s.Require().Equal(1, s.claimer.Calls)
	s.Len(s.claimer.Claimed[0], 2)
}

func (s *ControllerSuite) TestTimeoutFailureRetriedThenCompleted() {
	s.catalog.Items = []types.Promotion{promo("a")}
	s.claimer.Errs = []error{
		ierr.NewError("page stalled mid-claim").Mark(ierr.ErrTimeout),
	}

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateCompleted, result.State)
	s.Equal(2, s.claimer.Calls)
	s.NoError(result.Err)
}

func (s *ControllerSuite) TestRetryExhaustionFailsRun() {
	s.catalog.Items = []types.Promotion{promo("a")}
	timeout := ierr.NewError("page stalled mid-claim").Mark(ierr.ErrTimeout)
	s.claimer.Errs = []error{timeout, timeout, timeout}

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateFailed, result.State)
	s.Equal(s.GetConfig().Checkout.BatchAttempts, s.claimer.Calls)
	s.True(ierr.IsTimeout(result.Err))
}

func (s *ControllerSuite) TestNonTimeoutFailureIsTerminal() {
	s.catalog.Items = []types.Promotion{promo("a")}
	s.claimer.Errs = []error{
		ierr.NewError("cart could not be cleaned").Mark(ierr.ErrCartUnreconciled),
	}

	result := s.controller().Run(s.GetContext())

	s.Equal(types.RunStateFailed, result.State)
	s.Equal(1, s.claimer.Calls)
	s.True(ierr.IsCartUnreconciled(result.Err))
}
