package browser

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// fakeLauncher hands out fakeBrowsers whose pages come from newPage.
type fakeLauncher struct {
	mu        sync.Mutex
	launchErr error
	newPage   func() *fakePage
	browsers  []*fakeBrowser
	pages     []*fakePage
}

func (l *fakeLauncher) Launch(opts LaunchOptions) (Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	b := &fakeBrowser{launcher: l, opts: opts}
	l.browsers = append(l.browsers, b)
	return b, nil
}

// leaked lists resources still open after all calls returned.
func (l *fakeLauncher) leaked() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var open []string
	for i, b := range l.browsers {
		if !b.closed {
			open = append(open, fmt.Sprintf("browser %d", i))
		}
		for j, c := range b.contexts {
			if !c.closed {
				open = append(open, fmt.Sprintf("context %d.%d", i, j))
			}
		}
	}
	for i, p := range l.pages {
		if !p.closed {
			open = append(open, fmt.Sprintf("page %d", i))
		}
	}
	return open
}

type fakeBrowser struct {
	launcher *fakeLauncher
	opts     LaunchOptions
	contexts []*fakeContext
	closed   bool
}

func (b *fakeBrowser) NewContext() (BrowserContext, error) {
	c := &fakeContext{browser: b}
	b.contexts = append(b.contexts, c)
	return c, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

type fakeContext struct {
	browser *fakeBrowser
	closed  bool
}

func (c *fakeContext) NewPage() (Page, error) {
	l := c.browser.launcher
	p := newFakePage()
	if l.newPage != nil {
		p = l.newPage()
	}
	l.mu.Lock()
	l.pages = append(l.pages, p)
	l.mu.Unlock()
	return p, nil
}

func (c *fakeContext) Close() error {
	c.closed = true
	return nil
}

// fakePage serves a static document. elements maps a selector to its
// matches; actions records element interactions in order.
type fakePage struct {
	url      string
	title    string
	body     string
	html     string
	gotoErr  error
	elements map[string][]*fakeElement
	evaluate func(expression string, arg any) (any, error)
	onClick  func(p *fakePage, selector string)
	panicOn  string

	// screenshotErrs fail successive Screenshot calls; nil entries succeed.
	screenshotErrs []error

	actions     []string
	screenshots []string
	closed      bool
}

func newFakePage() *fakePage {
	return &fakePage{
		title:    "Example Domain",
		body:     "Example body text",
		html:     "<html><head><title>Example Domain</title></head><body><p>Example</p></body></html>",
		elements: map[string][]*fakeElement{},
	}
}

func (p *fakePage) add(selector string, els ...*fakeElement) *fakePage {
	for _, el := range els {
		el.page = p
		el.selector = selector
	}
	p.elements[selector] = append(p.elements[selector], els...)
	return p
}

func (p *fakePage) Goto(url string, timeout time.Duration) error {
	if p.panicOn == "goto" {
		panic("driver connection lost")
	}
	if p.gotoErr != nil {
		return p.gotoErr
	}
	p.url = url
	return nil
}

func (p *fakePage) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	if els := p.elements[selector]; len(els) > 0 {
		return els[0], nil
	}
	return nil, fmt.Errorf("%w: waiting for %q (%s)", ErrTimeout, selector, timeout)
}

func (p *fakePage) QuerySelectorAll(selector string) ([]Element, error) {
	out := make([]Element, 0, len(p.elements[selector]))
	for _, el := range p.elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (p *fakePage) Title() (string, error)   { return p.title, nil }
func (p *fakePage) Content() (string, error) { return p.html, nil }

func (p *fakePage) InnerText(selector string) (string, error) {
	return p.body, nil
}

func (p *fakePage) Evaluate(expression string, arg any) (any, error) {
	if p.evaluate == nil {
		return nil, fmt.Errorf("evaluate not supported")
	}
	return p.evaluate(expression, arg)
}

func (p *fakePage) Screenshot(path string) error {
	if len(p.screenshotErrs) > 0 {
		err := p.screenshotErrs[0]
		p.screenshotErrs = p.screenshotErrs[1:]
		if err != nil {
			return err
		}
	}
	p.screenshots = append(p.screenshots, path)
	return os.WriteFile(path, []byte("\x89PNG"), 0644)
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeElement struct {
	page     *fakePage
	selector string

	tag       string
	inputType string
	text      string
	attrs     map[string]string

	value    string
	checked  bool
	selected string
	fillErr  error
}

func (e *fakeElement) Evaluate(expression string) (any, error) {
	return map[string]any{"tag": e.tag, "type": e.inputType}, nil
}

func (e *fakeElement) SelectOption(value string) error {
	e.selected = value
	e.page.actions = append(e.page.actions, "select "+e.selector+"="+value)
	return nil
}

func (e *fakeElement) SetChecked(checked bool) error {
	e.checked = checked
	e.page.actions = append(e.page.actions, fmt.Sprintf("check %s=%t", e.selector, checked))
	return nil
}

func (e *fakeElement) Fill(value string) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.value = value
	e.page.actions = append(e.page.actions, "fill "+e.selector+"="+value)
	return nil
}

func (e *fakeElement) Click() error {
	e.page.actions = append(e.page.actions, "click "+e.selector)
	if e.page.onClick != nil {
		e.page.onClick(e.page, e.selector)
	}
	return nil
}

func (e *fakeElement) InnerText() (string, error) { return e.text, nil }

func (e *fakeElement) GetAttribute(name string) (string, error) {
	return e.attrs[name], nil
}

func inputEl(inputType string) *fakeElement {
	return &fakeElement{tag: "input", inputType: inputType}
}

func textEl(text string) *fakeElement {
	return &fakeElement{tag: "span", text: text}
}

func linkEl(href string) *fakeElement {
	attrs := map[string]string{}
	if href != "" {
		attrs["href"] = href
	}
	return &fakeElement{tag: "a", attrs: attrs}
}

// fakeClock advances only when slept on.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	onWake func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.onWake != nil {
		c.onWake()
	}
}
