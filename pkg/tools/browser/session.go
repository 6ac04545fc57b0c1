package browser

import (
	"errors"
	"fmt"

	"github.com/entrhq/agentkit/pkg/logging"
)

// Session owns the browser process and browsing context backing one
// top-level operation. It is never shared between operations.
type Session struct {
	launcher Launcher
	opts     LaunchOptions
	log      *logging.Logger

	browser Browser
	context BrowserContext
}

func newSession(launcher Launcher, opts LaunchOptions, log *logging.Logger) *Session {
	return &Session{launcher: launcher, opts: opts, log: log}
}

// EnsureSession launches a browser and opens a context unless one is
// already active, in which case the existing context is returned.
func (s *Session) EnsureSession() (BrowserContext, error) {
	if s.context != nil {
		return s.context, nil
	}

	b, err := s.launcher.Launch(s.opts)
	if err != nil {
		return nil, newError(BrowserLaunchFailure, "launch", "", err)
	}
	ctx, err := b.NewContext()
	if err != nil {
		_ = b.Close()
		return nil, newError(BrowserLaunchFailure, "new_context", "", err)
	}

	s.browser = b
	s.context = ctx
	s.log.Debugf("launched %s (headless=%t)", s.opts.BrowserType, s.opts.Headless)
	return ctx, nil
}

// Active reports whether a browser is currently held.
func (s *Session) Active() bool {
	return s.browser != nil
}

// Teardown closes the context, then the browser, and clears both handles.
// It is safe to call on a session that was never started or already
// torn down.
func (s *Session) Teardown() error {
	var errs []error
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.browser = nil
		s.log.Debugf("browser closed")
	}
	return errors.Join(errs...)
}
