package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/agentkit/pkg/config"
	"github.com/entrhq/agentkit/pkg/logging"
)

// Executor runs browser operations. Every call launches its own browser,
// works on a single page and tears both down before returning, so an
// Executor holds no per-call state and may be used concurrently.
type Executor struct {
	launcher  Launcher
	settings  config.BrowserSettings
	policy    URLPolicy
	artifacts *ArtifactWriter
	clock     Clock
	log       *logging.Logger
}

// Option customizes an Executor.
type Option func(*Executor)

// WithClock replaces the wall clock used for monitoring and file names.
func WithClock(c Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// NewExecutor creates an executor that launches browsers through launcher
// with the given settings.
func NewExecutor(launcher Launcher, settings config.BrowserSettings, opts ...Option) *Executor {
	e := &Executor{
		launcher: launcher,
		settings: settings,
		policy: URLPolicy{
			AllowFileURLs:  settings.AllowFileURLs,
			AllowedDomains: settings.AllowedDomains,
			BlockedDomains: settings.BlockedDomains,
		},
		clock: realClock{},
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.artifacts = NewArtifactWriter(settings.ScreenshotsDir, e.clock.Now)
	return e
}

// Settings returns the settings the executor was built with.
func (e *Executor) Settings() config.BrowserSettings {
	return e.settings
}

func (e *Executor) launchOptions() LaunchOptions {
	return LaunchOptions{
		BrowserType: e.settings.BrowserType,
		Headless:    e.settings.Headless,
		Timeout:     e.settings.Timeout,
	}
}

// run executes body against a fresh page of a fresh session. The page is
// closed, then the session torn down, on every exit path including panics
// raised by the driver. Any failure becomes an error result.
func (e *Executor) run(ctx context.Context, op, url string, body func(Page) (OperationResult, error)) (result OperationResult) {
	if err := ctx.Err(); err != nil {
		return failure(err)
	}
	if err := e.policy.Check(url); err != nil {
		e.log.Warnf("%s refused %s: %v", op, url, err)
		return failure(err)
	}

	session := newSession(e.launcher, e.launchOptions(), e.log)
	defer func() {
		if err := session.Teardown(); err != nil {
			e.log.Warnf("%s: teardown: %v", op, err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("%s %s panicked: %v", op, url, r)
			result = failure(fmt.Errorf("%s: unexpected driver failure: %v", op, r))
		}
	}()

	bctx, err := session.EnsureSession()
	if err != nil {
		return failure(err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		return failure(newError(BrowserLaunchFailure, "new_page", "", err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			e.log.Warnf("%s: close page: %v", op, err)
		}
	}()

	e.log.Debugf("%s %s", op, url)
	result, err = body(page)
	if err != nil {
		e.log.Warnf("%s %s failed: %v", op, url, err)
		return failure(err)
	}
	return result
}

func (e *Executor) navigate(page Page, op, url string) error {
	if err := page.Goto(url, e.settings.Timeout); err != nil {
		return classify(err, NavigationTimeout, NavigationFailure, op, "")
	}
	return nil
}

// waitFor waits for selector and reports any failure as kind.
func (e *Executor) waitFor(page Page, op, selector string, kind Kind) (Element, error) {
	el, err := page.WaitForSelector(selector, e.settings.Timeout)
	if err != nil {
		return nil, newError(kind, op, selector, err)
	}
	return el, nil
}

func required(op string, values map[string]string) error {
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			return newError(InvalidArgument, op, "", fmt.Errorf("%s is required", name))
		}
	}
	return nil
}

// Visit opens a page and reports its title plus whatever the request asks
// for: text, markup, a script result and a full-page screenshot.
func (e *Executor) Visit(ctx context.Context, req VisitRequest) OperationResult {
	const op = "visit"
	return e.run(ctx, op, req.URL, func(page Page) (OperationResult, error) {
		if err := e.navigate(page, op, req.URL); err != nil {
			return OperationResult{}, err
		}
		if req.WaitFor != "" {
			if _, err := e.waitFor(page, op, req.WaitFor, SelectorWaitTimeout); err != nil {
				return OperationResult{}, err
			}
		}

		title, err := page.Title()
		if err != nil {
			return OperationResult{}, fmt.Errorf("read title: %w", err)
		}
		summary := &PageSummary{Title: title}

		if req.ExtractText {
			text, err := page.InnerText("body")
			if err != nil {
				return OperationResult{}, fmt.Errorf("read text: %w", err)
			}
			summary.Text = &text
		}

		if req.ExtractHTML {
			markup, err := page.Content()
			if err != nil {
				return OperationResult{}, fmt.Errorf("read html: %w", err)
			}
			if req.CleanHTML {
				cleaned, err := cleanHTML(markup, req.MaxHTMLLength)
				if err != nil {
					return OperationResult{}, err
				}
				markup = cleaned.HTML
			}
			summary.HTML = &markup
		}

		if req.JavaScript != "" {
			v, err := page.Evaluate(req.JavaScript, nil)
			if err != nil {
				return OperationResult{}, newError(ScriptEvaluationError, op, "", err)
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return OperationResult{}, newError(ScriptEvaluationError, op, "", fmt.Errorf("result is not serializable: %w", err))
			}
			summary.JavaScriptResult = raw
		}

		result := OperationResult{Success: true, URL: page.URL(), PageSummary: summary}
		if req.Screenshot {
			path, err := e.artifacts.Capture(page, PrefixVisit)
			if err != nil {
				return OperationResult{}, err
			}
			result.ScreenshotPath = path
		}
		return result, nil
	})
}

// FillForm sets each field in order, clicks the submit button and reports
// the resulting page.
func (e *Executor) FillForm(ctx context.Context, req FillFormRequest) OperationResult {
	const op = "fill_form"
	if err := required(op, map[string]string{"submit_button": req.SubmitButton}); err != nil {
		return failure(err)
	}
	for _, f := range req.Fields {
		if strings.TrimSpace(f.Selector) == "" {
			return failure(newError(InvalidArgument, op, "", fmt.Errorf("form field selector cannot be empty")))
		}
	}

	return e.run(ctx, op, req.URL, func(page Page) (OperationResult, error) {
		if err := e.navigate(page, op, req.URL); err != nil {
			return OperationResult{}, err
		}

		for _, f := range req.Fields {
			el, err := e.waitFor(page, op, f.Selector, ElementNotFound)
			if err != nil {
				return OperationResult{}, err
			}
			kind, err := applyField(el, f.Value)
			if err != nil {
				return OperationResult{}, fmt.Errorf("%s: set %s field %q: %w", op, kind, f.Selector, err)
			}
			e.log.Debugf("%s: set %s field %q", op, kind, f.Selector)
		}

		submit, err := e.waitFor(page, op, req.SubmitButton, ElementNotFound)
		if err != nil {
			return OperationResult{}, err
		}
		if err := submit.Click(); err != nil {
			return OperationResult{}, fmt.Errorf("%s: click %q: %w", op, req.SubmitButton, err)
		}

		if req.WaitAfterSubmit != "" {
			if _, err := e.waitFor(page, op, req.WaitAfterSubmit, PostSubmitTimeout); err != nil {
				return OperationResult{}, err
			}
		}

		title, err := page.Title()
		if err != nil {
			return OperationResult{}, fmt.Errorf("read title: %w", err)
		}
		result := OperationResult{Success: true, URL: page.URL(), PageSummary: &PageSummary{Title: title}}
		if req.Screenshot {
			path, err := e.artifacts.Capture(page, PrefixForm)
			if err != nil {
				return OperationResult{}, err
			}
			result.ScreenshotPath = path
		}
		return result, nil
	})
}

// ExtractData reads inner text per named selector and, optionally, one
// attribute per selector.
func (e *Executor) ExtractData(ctx context.Context, req ExtractRequest) OperationResult {
	const op = "extract_data"
	if len(req.Selectors) == 0 {
		return failure(newError(InvalidArgument, op, "", fmt.Errorf("at least one selector is required")))
	}

	return e.run(ctx, op, req.URL, func(page Page) (OperationResult, error) {
		if err := e.navigate(page, op, req.URL); err != nil {
			return OperationResult{}, err
		}
		if req.WaitFor != "" {
			if _, err := e.waitFor(page, op, req.WaitFor, SelectorWaitTimeout); err != nil {
				return OperationResult{}, err
			}
		}

		out := &Extraction{Data: make(map[string]any, len(req.Selectors))}
		for _, s := range req.Selectors {
			v, err := extractTexts(page, s.Selector)
			if err != nil {
				return OperationResult{}, fmt.Errorf("%s: read %q: %w", op, s.Selector, err)
			}
			out.Data[s.Name] = v
		}

		if len(req.Attributes) > 0 {
			out.Attributes = make(map[string]any, len(req.Attributes))
			for _, a := range req.Attributes {
				v, err := extractAttributes(page, a.Selector, a.Attribute)
				if err != nil {
					return OperationResult{}, fmt.Errorf("%s: read %s of %q: %w", op, a.Attribute, a.Selector, err)
				}
				out.Attributes[a.Selector] = v
			}
		}

		return OperationResult{Success: true, URL: page.URL(), Extraction: out}, nil
	})
}
