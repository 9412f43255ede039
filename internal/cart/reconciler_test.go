package cart

import (
	"testing"

	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type CartReconcilerSuite struct {
	testutil.BaseTestSuite
	page       *testutil.FakePage
	reconciler Reconciler
}

func TestCartReconciler(t *testing.T) {
	suite.Run(t, new(CartReconcilerSuite))
}

func (s *CartReconcilerSuite) SetupTest() {
	s.BaseTestSuite.SetupTest()
	s.page = testutil.NewFakePage()
	s.GetConfig().Checkout.ReconcileWait = 0
	s.reconciler = NewReconciler(s.GetConfig(), s.GetLogger())
}

func freeCard(title string) *testutil.FakeElement {
	return testutil.NewFakeElement(title).
		WithSub(freeMarkerSelector, testutil.NewFakeElement("Free"))
}

func (s *CartReconcilerSuite) TestEmptyCartTriviallyReconciled() {
	s.NoError(s.reconciler.Reconcile(s.GetContext(), s.page))
}

func (s *CartReconcilerSuite) TestAllFreeCartNeedsNoAction() {
	cards := testutil.NewFakeElement("")
	cards.Children = []*testutil.FakeElement{freeCard("A"), freeCard("B")}
	s.page.SetElement(offerCardSelector, cards)

	s.NoError(s.reconciler.Reconcile(s.GetContext(), s.page))
	s.Len(cards.Children, 2)
}

func (s *CartReconcilerSuite) TestPaidLineMovedToWishlist() {
	cards := testutil.NewFakeElement("")
	one := freeCard("Free One")
	two := freeCard("Free Two")

	wishlist := testutil.NewFakeElement("Move to wishlist")
	paid := testutil.NewFakeElement("Paid Game").WithSub(wishlistSelector, wishlist)
	wishlist.OnClick = func() {
		cards.Children = []*testutil.FakeElement{one, two}
	}

	cards.Children = []*testutil.FakeElement{one, paid, two}
	s.page.SetElement(offerCardSelector, cards)

	s.NoError(s.reconciler.Reconcile(s.GetContext(), s.page))

	s.Equal(1, wishlist.Clicks)
	s.Len(cards.Children, 2)
}

func (s *CartReconcilerSuite) TestBudgetExhaustionIsSoftFailure() {
	s.GetConfig().Checkout.ReconcileBudget = 2

	// A paid line whose removal never takes effect in the UI.
	wishlist := testutil.NewFakeElement("Move to wishlist")
	cards := testutil.NewFakeElement("")
	cards.Children = []*testutil.FakeElement{
		testutil.NewFakeElement("Sticky Paid Game").WithSub(wishlistSelector, wishlist),
	}
	s.page.SetElement(offerCardSelector, cards)

	err := s.reconciler.Reconcile(s.GetContext(), s.page)

	s.Error(err)
	s.True(ierr.IsCartUnreconciled(err))
	// One initial pass plus the two budgeted re-passes.
	s.Equal(3, wishlist.Clicks)
}

func (s *CartReconcilerSuite) TestMissingWishlistControlFailsSweep() {
	cards := testutil.NewFakeElement("")
	cards.Children = []*testutil.FakeElement{
		testutil.NewFakeElement("Paid, no wishlist control"),
	}
	s.page.SetElement(offerCardSelector, cards)

	err := s.reconciler.Reconcile(s.GetContext(), s.page)

	s.Error(err)
	s.True(ierr.IsCartUnreconciled(err))
}
