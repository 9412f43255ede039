package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/freegames/claimer/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type CatalogServiceSuite struct {
	testutil.BaseTestSuite
	client  *testutil.MockHTTPClient
	service Service
}

func TestCatalogService(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.BaseTestSuite.SetupTest()
	s.client = testutil.NewMockHTTPClient()
	s.GetConfig().Runtime.Dir = s.T().TempDir()
	s.service = NewService(s.GetConfig(), s.client, s.GetCache(), s.GetLogger())
}

const feedRoute = "freeGamesPromotions?locale=en-US"

func feedBody(elements ...string) []byte {
	body := `{"data":{"Catalog":{"searchStore":{"elements":[`
	for i, e := range elements {
		if i > 0 {
			body += ","
		}
		body += e
	}
	return []byte(body + `]}}}}`)
}

func element(title, namespace, extra string, discountPercentage int) string {
	return fmt.Sprintf(`{
		"title": %q,
		"namespace": %q,
		"price": {"totalPrice": {"originalPrice": 1999, "discountPrice": %d}},
		"promotions": {"promotionalOffers": [{"promotionalOffers": [
			{"discountSetting": {"discountPercentage": %d}}
		]}]}%s
	}`, title, namespace, discountPercentage*10, discountPercentage, extra)
}

func (s *CatalogServiceSuite) TestZeroDiscountFilterAndURLResolution() {
	testCases := []struct {
		name        string
		body        []byte
		expectCount int
		expectURL   string
	}{
		{
			name: "zero_discount_with_page_slug",
			body: feedBody(
				element("Free Game", "ns-free", `,"offerMappings":[{"pageSlug":"abc"}]`, 0),
				element("Paid Game", "ns-paid", `,"offerMappings":[{"pageSlug":"def"}]`, 25),
			),
			expectCount: 1,
			expectURL:   "/p/abc",
		},
		{
			name: "product_slug_fallback",
			body: feedBody(
				element("Fallback Game", "ns-fb", `,"productSlug":"fallback-slug"`, 0),
			),
			expectCount: 1,
			expectURL:   "/p/fallback-slug",
		},
		{
			name: "page_slug_preferred_over_product_slug",
			body: feedBody(
				element("Both Slugs", "ns-both", `,"productSlug":"worse","offerMappings":[{"pageSlug":"better"}]`, 0),
			),
			expectCount: 1,
			expectURL:   "/p/better",
		},
		{
			name: "bundle_resolves_under_bundles_base",
			body: feedBody(
				element("Mega Bundle", "ns-bundle", `,"offerType":"BUNDLE","offerMappings":[{"pageSlug":"mega"}]`, 0),
			),
			expectCount: 1,
			expectURL:   "/bundles/mega",
		},
		{
			name: "no_slug_dropped",
			body: feedBody(
				element("Slugless", "ns-none", ``, 0),
			),
			expectCount: 0,
		},
		{
			name: "no_promotions_block_excluded",
			body: feedBody(
				`{"title":"No Promos","namespace":"ns-np","productSlug":"np"}`,
			),
			expectCount: 0,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.client.RegisterJSONResponse(feedRoute, tc.body)

			promotions := s.service.Promotions(s.GetContext())

			s.Len(promotions, tc.expectCount)
			if tc.expectCount == 1 {
				s.True(promotions[0].IsFree())
				s.Contains(promotions[0].URL, tc.expectURL)
			}
		})
	}
}

func (s *CatalogServiceSuite) TestUnreachableFeedDegradesToEmptyCatalog() {
	// No route registered: the mock answers 404.
	promotions := s.service.Promotions(s.GetContext())
	s.Empty(promotions)
}

func (s *CatalogServiceSuite) TestMalformedFeedDegradesToEmptyCatalog() {
	s.client.RegisterJSONResponse(feedRoute, []byte("not json at all"))

	promotions := s.service.Promotions(s.GetContext())
	s.Empty(promotions)
}

func (s *CatalogServiceSuite) TestRawFeedStashedForDiagnostics() {
	body := feedBody(element("Free Game", "ns-free", `,"offerMappings":[{"pageSlug":"abc"}]`, 0))
	s.client.RegisterJSONResponse(feedRoute, body)

	s.service.Promotions(s.GetContext())

	stashed, err := os.ReadFile(filepath.Join(s.GetConfig().Runtime.Dir, rawFeedFile))
	s.NoError(err)
	s.Equal(body, stashed)
}
