package browser

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightLauncher launches browsers through a shared Playwright driver.
// The driver is installed and started on first use and stays up until
// Shutdown; browser processes are per Launch.
type PlaywrightLauncher struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	initialized bool
	install     bool
}

// NewPlaywrightLauncher creates a launcher. When install is true the
// driver and browser binaries are downloaded on first use if missing.
func NewPlaywrightLauncher(install bool) *PlaywrightLauncher {
	return &PlaywrightLauncher{install: install}
}

// Initialize starts the Playwright driver. It is a no-op when already started.
func (l *PlaywrightLauncher) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}

	// Keep driver chatter off stdout, which carries tool results
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if l.install {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	l.pw = pw
	l.initialized = true
	return nil
}

// Launch implements Launcher.
func (l *PlaywrightLauncher) Launch(opts LaunchOptions) (Browser, error) {
	if err := l.Initialize(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	var engine playwright.BrowserType
	switch opts.BrowserType {
	case "", "chromium":
		engine = l.pw.Chromium
	case "firefox":
		engine = l.pw.Firefox
	case "webkit":
		engine = l.pw.WebKit
	default:
		l.mu.Unlock()
		return nil, fmt.Errorf("unsupported browser type %q", opts.BrowserType)
	}
	l.mu.Unlock()

	b, err := engine.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", engine.Name(), err)
	}
	return &pwBrowser{browser: b, timeout: opts.Timeout}, nil
}

// Shutdown stops the driver. Browsers still open are killed with it.
func (l *PlaywrightLauncher) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return nil
	}
	l.initialized = false
	if err := l.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type pwBrowser struct {
	browser playwright.Browser
	timeout time.Duration
}

func (b *pwBrowser) NewContext() (BrowserContext, error) {
	ctx, err := b.browser.NewContext()
	if err != nil {
		return nil, err
	}
	return &pwContext{context: ctx, timeout: b.timeout}, nil
}

func (b *pwBrowser) Close() error {
	return b.browser.Close()
}

type pwContext struct {
	context playwright.BrowserContext
	timeout time.Duration
}

func (c *pwContext) NewPage() (Page, error) {
	page, err := c.context.NewPage()
	if err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		page.SetDefaultTimeout(milliseconds(c.timeout))
	}
	return &pwPage{page: page}, nil
}

func (c *pwContext) Close() error {
	return c.context.Close()
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(milliseconds(timeout)),
	})
	return translate(err)
}

func (p *pwPage) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	el, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(milliseconds(timeout)),
	})
	if err != nil {
		return nil, translate(err)
	}
	if el == nil {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return &pwElement{handle: el}, nil
}

func (p *pwPage) QuerySelectorAll(selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, translate(err)
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		if h != nil {
			elements = append(elements, &pwElement{handle: h})
		}
	}
	return elements, nil
}

func (p *pwPage) Title() (string, error) {
	title, err := p.page.Title()
	return title, translate(err)
}

func (p *pwPage) Content() (string, error) {
	content, err := p.page.Content()
	return content, translate(err)
}

func (p *pwPage) InnerText(selector string) (string, error) {
	text, err := p.page.InnerText(selector)
	return text, translate(err)
}

func (p *pwPage) Evaluate(expression string, arg any) (any, error) {
	var (
		v   any
		err error
	)
	if arg != nil {
		v, err = p.page.Evaluate(expression, arg)
	} else {
		v, err = p.page.Evaluate(expression)
	}
	return v, translate(err)
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return translate(err)
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Close() error {
	return p.page.Close()
}

type pwElement struct {
	handle playwright.ElementHandle
}

func (e *pwElement) Evaluate(expression string) (any, error) {
	v, err := e.handle.Evaluate(expression)
	return v, translate(err)
}

func (e *pwElement) SelectOption(value string) error {
	_, err := e.handle.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	return translate(err)
}

func (e *pwElement) SetChecked(checked bool) error {
	return translate(e.handle.SetChecked(checked))
}

func (e *pwElement) Fill(value string) error {
	return translate(e.handle.Fill(value))
}

func (e *pwElement) Click() error {
	return translate(e.handle.Click())
}

func (e *pwElement) InnerText() (string, error) {
	text, err := e.handle.InnerText()
	return text, translate(err)
}

func (e *pwElement) GetAttribute(name string) (string, error) {
	v, err := e.handle.GetAttribute(name)
	return v, translate(err)
}

// translate maps Playwright timeouts onto ErrTimeout, keeping the
// original message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
