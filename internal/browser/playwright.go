package browser

import (
	"strings"
	"time"

	"github.com/freegames/claimer/internal/config"
	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/playwright-community/playwright-go"
)

// Session owns the playwright driver and a persistent browser context. The
// persistent context keeps the authenticated storefront cookies between runs.
type Session struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
}

// NewSession starts the driver and opens (or reuses) the context's first page.
func NewSession(cfg *config.Configuration) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Is the playwright driver installed? Run `playwright install chromium`").
			Mark(ierr.ErrSystem)
	}

	context, err := pw.Chromium.LaunchPersistentContext(cfg.Browser.UserDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(cfg.Browser.Headless),
		})
	if err != nil {
		_ = pw.Stop()
		return nil, ierr.WithError(err).
			WithHint("Failed to launch browser context").
			Mark(ierr.ErrSystem)
	}

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			_ = context.Close()
			_ = pw.Stop()
			return nil, ierr.WithError(err).
				WithHint("Failed to open a page").
				Mark(ierr.ErrSystem)
		}
	}
	page.SetDefaultTimeout(float64(cfg.Browser.NavigationTimeout.Milliseconds()))

	return &Session{pw: pw, context: context, page: page}, nil
}

// Page returns the session's single page behind the driver-neutral interface.
func (s *Session) Page() Page {
	return &pwPage{page: s.page}
}

// Close tears down the context and the driver.
func (s *Session) Close() error {
	if err := s.context.Close(); err != nil {
		return err
	}
	return s.pw.Stop()
}

// markTimeout converts the driver's timeout errors into the workflow's
// timeout class so callers never need to import playwright.
func markTimeout(err error) error {
	if err == nil {
		return nil
	}
	var perr *playwright.Error
	if ierr.As(err, &perr) && perr.Name == "TimeoutError" {
		return ierr.WithError(err).Mark(ierr.ErrTimeout)
	}
	return err
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Goto(url string, wait WaitEvent) error {
	state := playwright.WaitUntilStateLoad
	if wait == WaitDOMContentLoaded {
		state = playwright.WaitUntilStateDomcontentloaded
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{WaitUntil: state})
	return markTimeout(err)
}

func (p *pwPage) Reload() error {
	_, err := p.page.Reload()
	return markTimeout(err)
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) WaitForURL(url string, timeout time.Duration) error {
	err := p.page.WaitForURL(url, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return markTimeout(err)
}

func (p *pwPage) Pause(d time.Duration) {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

func (p *pwPage) Locator(selector string) Locator {
	return &pwLocator{loc: p.page.Locator(selector)}
}

func (p *pwPage) LocatorWithText(selector, hasText string) Locator {
	return &pwLocator{loc: p.page.Locator(selector, playwright.PageLocatorOptions{
		HasText: hasText,
	})}
}

func (p *pwPage) FrameLocator(selector string) Frame {
	return &pwFrame{frame: p.page.FrameLocator(selector).First()}
}

type pwFrame struct {
	frame playwright.FrameLocator
}

func (f *pwFrame) Locator(selector string) Locator {
	return &pwLocator{loc: f.frame.Locator(selector)}
}

func (f *pwFrame) LocatorWithText(selector, hasText string) Locator {
	return &pwLocator{loc: f.frame.Locator(selector, playwright.FrameLocatorLocatorOptions{
		HasText: hasText,
	})}
}

type pwLocator struct {
	loc playwright.Locator
}

func (l *pwLocator) Click(opts ClickOptions) error {
	clickOpts := playwright.LocatorClickOptions{}
	if opts.Force {
		clickOpts.Force = playwright.Bool(true)
	}
	if opts.Timeout > 0 {
		clickOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}
	return markTimeout(l.loc.Click(clickOpts))
}

func (l *pwLocator) TextContent(timeout time.Duration) (string, error) {
	text, err := l.loc.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return text, markTimeout(err)
}

func (l *pwLocator) GetAttribute(name string, timeout time.Duration) (string, error) {
	value, err := l.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return value, markTimeout(err)
}

func (l *pwLocator) IsVisible() (bool, error) {
	return l.loc.IsVisible()
}

func (l *pwLocator) IsEnabled(timeout time.Duration) (bool, error) {
	enabled, err := l.loc.IsEnabled(playwright.LocatorIsEnabledOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return enabled, markTimeout(err)
}

func (l *pwLocator) WaitVisible(timeout time.Duration) error {
	return markTimeout(l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}))
}

func (l *pwLocator) WaitHidden(timeout time.Duration) error {
	return markTimeout(l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}))
}

func (l *pwLocator) WaitForText(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		content, err := l.loc.TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(1000),
		})
		if err == nil && strings.Contains(content, text) {
			return nil
		}
		if time.Now().After(deadline) {
			return ierr.NewError("text did not appear").
				WithHintf("expected %q to show up within %s", text, timeout).
				Mark(ierr.ErrTimeout)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func (l *pwLocator) Count() (int, error) {
	return l.loc.Count()
}

func (l *pwLocator) Nth(i int) Locator {
	return &pwLocator{loc: l.loc.Nth(i)}
}

func (l *pwLocator) Locator(selector string) Locator {
	return &pwLocator{loc: l.loc.Locator(selector)}
}
