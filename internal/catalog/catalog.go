// Package catalog fetches the storefront promotions feed and keeps only the
// items currently discounted to zero.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/freegames/claimer/internal/cache"
	"github.com/freegames/claimer/internal/config"
	"github.com/freegames/claimer/internal/httpclient"
	"github.com/freegames/claimer/internal/logger"
	"github.com/freegames/claimer/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const rawFeedFile = "promotions.json"

// Service resolves the current zero-cost promotions.
type Service interface {
	// Promotions returns the current free promotions with resolved product
	// URLs. A broken or unreachable feed degrades to an empty catalog; the
	// failure is logged, never propagated.
	Promotions(ctx context.Context) []types.Promotion
}

type service struct {
	cfg    *config.Configuration
	client httpclient.Client
	cache  cache.Cache
	log    *logger.Logger
}

func NewService(
	cfg *config.Configuration,
	client httpclient.Client,
	c cache.Cache,
	log *logger.Logger,
) Service {
	return &service{
		cfg:    cfg,
		client: client,
		cache:  c,
		log:    log,
	}
}

func (s *service) Promotions(ctx context.Context) []types.Promotion {
	feedURL := s.cfg.Store.FeedURL + "?locale=" + url.QueryEscape(s.cfg.Store.Locale)

	resp, err := s.client.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    feedURL,
	})
	if err != nil {
		s.log.Warnw("failed to fetch promotions feed", "error", err)
		return nil
	}

	var feed feedResponse
	if err := json.Unmarshal(resp.Body, &feed); err != nil {
		s.log.Warnw("failed to parse promotions feed", "error", err)
		return nil
	}

	s.stashRawFeed(ctx, resp.Body)

	elements := feed.Data.Catalog.SearchStore.Elements
	free := lo.Filter(elements, func(e feedElement, _ int) bool {
		return e.hasZeroDiscountOffer()
	})

	promotions := make([]types.Promotion, 0, len(free))
	for _, e := range free {
		productURL, ok := s.resolveURL(e)
		if !ok {
			s.log.Infow("dropping promotion without a resolvable URL", "title", e.Title)
			continue
		}
		promotions = append(promotions, types.Promotion{
			Namespace:     e.Namespace,
			Title:         e.Title,
			URL:           productURL,
			OriginalPrice: decimal.NewFromInt(e.Price.TotalPrice.OriginalPrice),
			DiscountPrice: decimal.NewFromInt(e.Price.TotalPrice.DiscountPrice),
		})
		s.log.Infow("discovered free promotion", "title", e.Title, "url", productURL)
	}

	return promotions
}

// resolveURL prefers the offer mapping's page slug and falls back to the
// top-level product slug. Bundle offers resolve under the bundles base.
func (s *service) resolveURL(e feedElement) (string, bool) {
	slug := ""
	if len(e.OfferMappings) > 0 && e.OfferMappings[0].PageSlug != "" {
		slug = e.OfferMappings[0].PageSlug
	} else if e.ProductSlug != "" {
		slug = e.ProductSlug
	}
	if slug == "" {
		return "", false
	}

	base := s.cfg.Store.ProductBaseURL
	if e.OfferType == offerTypeBundle {
		base = s.cfg.Store.BundleBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + slug, true
}

// stashRawFeed keeps the raw payload around for diagnostics. Best effort:
// write failures are ignored.
func (s *service) stashRawFeed(ctx context.Context, body []byte) {
	s.cache.Set(ctx, cache.GenerateKey(cache.PrefixPromotions, s.cfg.Store.Locale), body, 0)

	dir := s.cfg.Runtime.Dir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(dir, rawFeedFile), body, 0o644)
}
