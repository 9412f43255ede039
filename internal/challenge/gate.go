// Package challenge is the synchronization boundary between checkout and the
// external anti-automation challenge solver.
package challenge

import (
	"context"

	"github.com/freegames/claimer/internal/browser"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/logger"
)

// Solver resolves an active verification challenge on the page, returning
// once no challenge blocks the checkout. The solving algorithm itself lives
// outside this repository; implementations only report completion or failure.
type Solver interface {
	WaitForChallenge(ctx context.Context, page browser.Page) error
}

// Gate suspends a checkout sequence until the solver has resolved any active
// challenge. It imposes no logic of its own beyond classifying the failure.
type Gate struct {
	solver Solver
	log    *logger.Logger
}

func NewGate(solver Solver, log *logger.Logger) *Gate {
	return &Gate{solver: solver, log: log}
}

// Await blocks until the challenge is resolved or the solver gives up.
func (g *Gate) Await(ctx context.Context, page browser.Page) error {
	if err := g.solver.WaitForChallenge(ctx, page); err != nil {
		return ierr.WithError(err).
			WithHint("External solver could not resolve the verification challenge").
			Mark(ierr.ErrChallengeUnresolved)
	}
	return nil
}
