// Package ledger derives the set of already-owned product namespaces from
// the account's purchase history and reconciles it against the promotion
// catalog.
package ledger

import (
	"context"

	"github.com/freegames/claimer/internal/cache"
	"github.com/freegames/claimer/internal/config"
	"github.com/freegames/claimer/internal/logger"
	"github.com/freegames/claimer/internal/types"
	"github.com/samber/lo"
)

// Ledger is the set of owned product namespaces.
type Ledger map[string]struct{}

// Owns reports whether the namespace is already in the account's library
// according to the purchase history.
func (l Ledger) Owns(namespace string) bool {
	_, ok := l[namespace]
	return ok
}

// HistoryFetcher loads the account's raw order history. The production
// implementation reads it through the authenticated browser session.
type HistoryFetcher interface {
	FetchOrderHistory(ctx context.Context) (*types.OrderHistory, error)
}

// Service builds the ownership ledger and computes the outstanding list.
type Service interface {
	// Ledger returns the owned-namespace set. The history is fetched at
	// most once per run; later calls hit the run-scoped cache. A failed
	// fetch degrades to an empty ledger so no available promotion is ever
	// silently skipped — the live "In Library" check during checkout is
	// the second line of defense.
	Ledger(ctx context.Context) Ledger

	// Outstanding returns the promotions whose namespace is absent from
	// the ledger. The difference is recomputed on every call.
	Outstanding(ctx context.Context, promotions []types.Promotion) []types.Promotion
}

type service struct {
	cfg     *config.Configuration
	history HistoryFetcher
	cache   cache.Cache
	log     *logger.Logger
}

func NewService(
	cfg *config.Configuration,
	history HistoryFetcher,
	c cache.Cache,
	log *logger.Logger,
) Service {
	return &service{
		cfg:     cfg,
		history: history,
		cache:   c,
		log:     log,
	}
}

func (s *service) Ledger(ctx context.Context) Ledger {
	key := cache.GenerateKey(cache.PrefixLedger, s.cfg.Account.Email)
	if cached, ok := s.cache.Get(ctx, key); ok {
		if l, ok := cached.(Ledger); ok {
			return l
		}
	}

	built := s.build(ctx)
	s.cache.Set(ctx, key, built, 0)
	return built
}

func (s *service) Outstanding(ctx context.Context, promotions []types.Promotion) []types.Promotion {
	owned := s.Ledger(ctx)
	return lo.Filter(promotions, func(p types.Promotion, _ int) bool {
		return !owned.Owns(p.Namespace)
	})
}

func (s *service) build(ctx context.Context) Ledger {
	built := make(Ledger)

	history, err := s.history.FetchOrderHistory(ctx)
	if err != nil {
		// Conservative: treat everything as outstanding rather than
		// skipping claimable items on stale data.
		s.log.Warnw("failed to fetch order history, proceeding with empty ledger", "error", err)
		return built
	}

	for _, order := range history.Orders {
		if !order.Owned() {
			continue
		}
		for _, item := range order.Items {
			if !item.WellFormed() {
				continue
			}
			built[item.Namespace] = struct{}{}
		}
	}

	s.log.Debugw("built ownership ledger", "owned", len(built))
	return built
}
