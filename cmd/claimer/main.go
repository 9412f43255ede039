package main

import (
	"context"
	"time"

	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/cache"
	"github.com/freegames/claimer/internal/cart"
	"github.com/freegames/claimer/internal/catalog"
	"github.com/freegames/claimer/internal/challenge"
	"github.com/freegames/claimer/internal/checkout"
	"github.com/freegames/claimer/internal/config"
	"github.com/freegames/claimer/internal/httpclient"
	"github.com/freegames/claimer/internal/ledger"
	"github.com/freegames/claimer/internal/logger"
	"github.com/freegames/claimer/internal/types"
	"github.com/freegames/claimer/internal/workflow"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			cache.NewInMemoryCache,
			httpclient.NewDefaultClient,

			// Browser session; one page per run.
			browser.NewSession,
			func(s *browser.Session) browser.Page { return s.Page() },

			// Domain services
			catalog.NewService,
			ledger.NewPageHistoryFetcher,
			ledger.NewService,
			challenge.NewClient,
			challenge.NewGate,
			cart.NewReconciler,
			checkout.NewOrchestrator,
			checkout.NewRetryPolicy,
			workflow.NewController,
		),
		fx.Invoke(run),
		fx.NopLogger,
	)

	app.Run()
}

// run executes a single claim workflow and shuts the application down with
// the run's outcome as the exit code.
func run(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	controller *workflow.Controller,
	session *browser.Session,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				result := controller.Run(context.Background())
				if result.State == types.RunStateFailed {
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := session.Close(); err != nil {
				log.Warnw("failed to close browser session", "error", err)
			}
			return nil
		},
	})
}
