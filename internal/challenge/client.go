package challenge

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/freegames/claimer/internal/browser"
	"github.com/freegames/claimer/internal/config"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/httpclient"
	"github.com/freegames/claimer/internal/logger"
)

const (
	challengeFrameSelector = "//iframe[contains(@src, 'hcaptcha')]"

	// surfaceWait is how long a challenge gets to appear before the client
	// decides the checkout was not challenged at all.
	surfaceWait = 3 * time.Second

	pollInterval = 2 * time.Second
)

// Client is the adapter to the remote challenge-solving service. It is
// constructed once with the configured base URL, model and credentials; the
// vendor client is never mutated at runtime.
type Client struct {
	solver  config.SolverConfig
	baseURL string
	http    httpclient.Client
	log     *logger.Logger
}

// NewClient builds the solver adapter from configuration.
func NewClient(cfg *config.Configuration, http httpclient.Client, log *logger.Logger) Solver {
	return &Client{
		solver:  cfg.Solver,
		baseURL: normalizeBaseURL(cfg.Solver.BaseURL),
		http:    http,
		log:     log,
	}
}

// normalizeBaseURL strips a trailing /v1 segment and anchors the solver path
// under /gemini, matching what the relay endpoint expects.
func normalizeBaseURL(raw string) string {
	base := strings.TrimRight(raw, "/")
	base = strings.TrimSuffix(base, "/v1")
	if !strings.HasSuffix(base, "/gemini") {
		base += "/gemini"
	}
	return base
}

// WaitForChallenge returns immediately when no challenge surfaces. When one
// does, it dispatches the remote solver and blocks until the challenge frame
// detaches or the configured deadline passes.
func (c *Client) WaitForChallenge(ctx context.Context, page browser.Page) error {
	frame := page.Locator(challengeFrameSelector)

	if err := frame.WaitVisible(surfaceWait); err != nil {
		if ierr.IsTimeout(err) {
			return nil
		}
		return err
	}

	c.log.Infow("verification challenge surfaced", "url", page.URL())

	if c.solver.Enabled && c.solver.APIKey != "" {
		if err := c.dispatch(ctx, page); err != nil {
			return err
		}
	} else {
		c.log.Warnw("no solver configured, waiting for the challenge to clear on its own")
	}

	return c.awaitCleared(ctx, frame)
}

// dispatch hands the challenge to the remote solving service.
func (c *Client) dispatch(ctx context.Context, page browser.Page) error {
	payload, err := json.Marshal(map[string]string{
		"model":    c.solver.Model,
		"page_url": page.URL(),
	})
	if err != nil {
		return err
	}

	_, err = c.http.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/v1/challenge:solve",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.solver.APIKey,
		},
		Body: payload,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Solver dispatch failed").
			Error()
	}
	return nil
}

// awaitCleared polls until the challenge frame is gone or the deadline hits.
func (c *Client) awaitCleared(ctx context.Context, frame browser.Locator) error {
	deadline := time.Now().Add(c.solver.WaitTimeout)
	for {
		visible, err := frame.IsVisible()
		if err != nil {
			return err
		}
		if !visible {
			c.log.Infow("verification challenge cleared")
			return nil
		}
		if time.Now().After(deadline) {
			return ierr.NewError("challenge still active after deadline").
				WithHintf("challenge did not clear within %s", c.solver.WaitTimeout).
				Error()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
