// Package browser narrows the automation driver down to the handful of page
// operations the claim workflow needs. Components accept these interfaces so
// the checkout logic can be exercised against a scripted fake; the only
// playwright-aware code lives in the adapter.
package browser

import "time"

// WaitEvent selects which navigation lifecycle event Goto waits for.
type WaitEvent string

const (
	WaitLoad             WaitEvent = "load"
	WaitDOMContentLoaded WaitEvent = "domcontentloaded"
)

// ClickOptions mirrors the subset of driver click options in use.
type ClickOptions struct {
	Force   bool
	Timeout time.Duration
}

// Page is one browser tab. A page is exclusively owned by a single in-flight
// workflow run; nothing here is safe for concurrent use.
type Page interface {
	Goto(url string, wait WaitEvent) error
	Reload() error
	URL() string
	// WaitForURL blocks until the page navigates to the given URL. Expiry
	// surfaces as a timeout-class error.
	WaitForURL(url string, timeout time.Duration) error
	// Pause sleeps on the page's clock. Used to let the UI settle where no
	// observable signal exists.
	Pause(d time.Duration)
	Locator(selector string) Locator
	LocatorWithText(selector, hasText string) Locator
	FrameLocator(selector string) Frame
}

// Frame scopes locators to an embedded frame, e.g. the payment container.
type Frame interface {
	Locator(selector string) Locator
	LocatorWithText(selector, hasText string) Locator
}

// Locator lazily addresses zero or more elements. Every bounded wait returns
// a timeout-class error on expiry rather than hanging.
type Locator interface {
	Click(opts ClickOptions) error
	TextContent(timeout time.Duration) (string, error)
	GetAttribute(name string, timeout time.Duration) (string, error)
	IsVisible() (bool, error)
	IsEnabled(timeout time.Duration) (bool, error)
	WaitVisible(timeout time.Duration) error
	WaitHidden(timeout time.Duration) error
	// WaitForText blocks until the element's text contains the given
	// substring.
	WaitForText(text string, timeout time.Duration) error
	Count() (int, error)
	Nth(i int) Locator
	Locator(selector string) Locator
}
