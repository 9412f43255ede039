package testutil

import (
	"strings"
	"time"

	"github.com/freegames/claimer/internal/browser"
	ierr "github.com/freegames/claimer/internal/errors"
)

// FakeElement is a scripted element behind the fake page. Tests mutate its
// fields (or attach OnClick hooks) to model the UI reacting to the workflow.
type FakeElement struct {
	Text     string
	Visible  bool
	Enabled  bool
	Attrs    map[string]string
	Children []*FakeElement
	Sub      map[string]*FakeElement
	Clicks   int
	OnClick  func()
}

// NewFakeElement returns a visible, enabled element with the given text.
func NewFakeElement(text string) *FakeElement {
	return &FakeElement{
		Text:    text,
		Visible: true,
		Enabled: true,
		Attrs:   map[string]string{},
		Sub:     map[string]*FakeElement{},
	}
}

// WithSub attaches a scripted child reachable via a relative selector.
func (e *FakeElement) WithSub(selector string, child *FakeElement) *FakeElement {
	if e.Sub == nil {
		e.Sub = map[string]*FakeElement{}
	}
	e.Sub[selector] = child
	return e
}

// FakePage implements browser.Page against scripted elements. Selectors that
// were never scripted behave like a UI that never renders them: bounded waits
// expire with a timeout-class error.
type FakePage struct {
	Elements      map[string]*FakeElement
	Frames        map[string]*FakeFrame
	Gotos         []string
	GotoErrs      map[string]error
	Reloads       int
	CurrentURL    string
	ReachableURLs map[string]bool
	PausedFor     time.Duration
}

func NewFakePage() *FakePage {
	return &FakePage{
		Elements:      map[string]*FakeElement{},
		Frames:        map[string]*FakeFrame{},
		GotoErrs:      map[string]error{},
		ReachableURLs: map[string]bool{},
	}
}

// SetElement scripts an element for an absolute selector.
func (p *FakePage) SetElement(selector string, el *FakeElement) *FakeElement {
	p.Elements[selector] = el
	return el
}

// Frame returns (creating if needed) the scripted frame for a selector.
func (p *FakePage) Frame(selector string) *FakeFrame {
	if f, ok := p.Frames[selector]; ok {
		return f
	}
	f := &FakeFrame{Elements: map[string]*FakeElement{}}
	p.Frames[selector] = f
	return f
}

func (p *FakePage) Goto(url string, _ browser.WaitEvent) error {
	if err := p.GotoErrs[url]; err != nil {
		return err
	}
	p.Gotos = append(p.Gotos, url)
	p.CurrentURL = url
	return nil
}

func (p *FakePage) Reload() error {
	p.Reloads++
	return nil
}

func (p *FakePage) URL() string {
	return p.CurrentURL
}

func (p *FakePage) WaitForURL(url string, _ time.Duration) error {
	if p.ReachableURLs[url] || p.CurrentURL == url {
		p.CurrentURL = url
		return nil
	}
	return timeoutErr("navigation to " + url + " did not happen")
}

func (p *FakePage) Pause(d time.Duration) {
	p.PausedFor += d
}

func (p *FakePage) Locator(selector string) browser.Locator {
	return &FakeLocator{El: p.Elements[selector], Selector: selector}
}

func (p *FakePage) LocatorWithText(selector, hasText string) browser.Locator {
	key := selector + "::" + hasText
	return &FakeLocator{El: p.Elements[key], Selector: key}
}

func (p *FakePage) FrameLocator(selector string) browser.Frame {
	return p.Frame(selector)
}

// FakeFrame implements browser.Frame.
type FakeFrame struct {
	Elements map[string]*FakeElement
}

// SetElement scripts an element inside the frame.
func (f *FakeFrame) SetElement(selector string, el *FakeElement) *FakeElement {
	f.Elements[selector] = el
	return el
}

func (f *FakeFrame) Locator(selector string) browser.Locator {
	return &FakeLocator{El: f.Elements[selector], Selector: selector}
}

func (f *FakeFrame) LocatorWithText(selector, hasText string) browser.Locator {
	key := selector + "::" + hasText
	return &FakeLocator{El: f.Elements[key], Selector: key}
}

// FakeLocator implements browser.Locator over a scripted element (possibly
// absent).
type FakeLocator struct {
	El       *FakeElement
	Selector string
}

func (l *FakeLocator) Click(_ browser.ClickOptions) error {
	if l.El == nil || !l.El.Visible {
		return timeoutErr("element not clickable: " + l.Selector)
	}
	l.El.Clicks++
	if l.El.OnClick != nil {
		l.El.OnClick()
	}
	return nil
}

func (l *FakeLocator) TextContent(_ time.Duration) (string, error) {
	if l.El == nil {
		return "", timeoutErr("element not found: " + l.Selector)
	}
	return l.El.Text, nil
}

func (l *FakeLocator) GetAttribute(name string, _ time.Duration) (string, error) {
	if l.El == nil {
		return "", timeoutErr("element not found: " + l.Selector)
	}
	return l.El.Attrs[name], nil
}

func (l *FakeLocator) IsVisible() (bool, error) {
	return l.El != nil && l.El.Visible, nil
}

func (l *FakeLocator) IsEnabled(_ time.Duration) (bool, error) {
	if l.El == nil {
		return false, timeoutErr("element not found: " + l.Selector)
	}
	return l.El.Enabled, nil
}

func (l *FakeLocator) WaitVisible(_ time.Duration) error {
	if l.El != nil && l.El.Visible {
		return nil
	}
	return timeoutErr("element did not become visible: " + l.Selector)
}

func (l *FakeLocator) WaitHidden(_ time.Duration) error {
	if l.El == nil || !l.El.Visible {
		return nil
	}
	return timeoutErr("element did not hide: " + l.Selector)
}

func (l *FakeLocator) WaitForText(text string, _ time.Duration) error {
	if l.El != nil && strings.Contains(l.El.Text, text) {
		return nil
	}
	return timeoutErr("text " + text + " did not appear in: " + l.Selector)
}

func (l *FakeLocator) Count() (int, error) {
	if l.El == nil {
		return 0, nil
	}
	return len(l.El.Children), nil
}

func (l *FakeLocator) Nth(i int) browser.Locator {
	if l.El == nil || i >= len(l.El.Children) {
		return &FakeLocator{Selector: l.Selector}
	}
	return &FakeLocator{El: l.El.Children[i], Selector: l.Selector}
}

func (l *FakeLocator) Locator(selector string) browser.Locator {
	if l.El == nil {
		return &FakeLocator{Selector: selector}
	}
	return &FakeLocator{El: l.El.Sub[selector], Selector: selector}
}

func timeoutErr(msg string) error {
	return ierr.NewError(msg).Mark(ierr.ErrTimeout)
}
