package browser

import "time"

// LaunchOptions selects the engine for one session.
type LaunchOptions struct {
	// BrowserType is chromium, firefox or webkit
	BrowserType string
	Headless    bool
	// Timeout is the default for every driver step on pages of this session
	Timeout time.Duration
}

// Launcher starts browser processes. Implementations may share a driver
// process between launches; each Browser they return is independent.
type Launcher interface {
	Launch(opts LaunchOptions) (Browser, error)
}

// Browser is one running browser process.
type Browser interface {
	NewContext() (BrowserContext, error)
	Close() error
}

// BrowserContext is an isolated browsing context (cookies, storage).
type BrowserContext interface {
	NewPage() (Page, error)
	Close() error
}

// Page is one navigable document. Methods that wait return an error
// wrapping ErrTimeout when the wait expires.
type Page interface {
	Goto(url string, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) (Element, error)
	QuerySelectorAll(selector string) ([]Element, error)
	Title() (string, error)
	Content() (string, error)
	InnerText(selector string) (string, error)
	// Evaluate runs a JavaScript expression or function. arg is passed to
	// the function when non-nil.
	Evaluate(expression string, arg any) (any, error)
	// Screenshot writes a full-page PNG to path.
	Screenshot(path string) error
	URL() string
	Close() error
}

// Element is a handle to one DOM element.
type Element interface {
	Evaluate(expression string) (any, error)
	SelectOption(value string) error
	SetChecked(checked bool) error
	Fill(value string) error
	Click() error
	InnerText() (string, error)
	// GetAttribute returns "" when the attribute is absent.
	GetAttribute(name string) (string, error)
}
