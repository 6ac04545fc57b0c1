package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser automation section
	SectionIDBrowser = "browser"

	defaultBrowserType    = "chromium"
	defaultHeadless       = true
	defaultBrowserTimeout = 30 * time.Second
	defaultScreenshotsDir = "./screenshots"
)

// BrowserSection configures the browser automation tools.
type BrowserSection struct {
	BrowserType    string
	Headless       bool
	Timeout        time.Duration
	ScreenshotsDir string
	AllowFileURLs  bool
	AllowedDomains []string
	BlockedDomains []string
	mu             sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser Automation"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Browser engine, headless mode, per-step timeout, screenshot directory and URL policy for the browser tools."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"browser_type":    s.BrowserType,
		"headless":        s.Headless,
		"timeout_ms":      s.Timeout.Milliseconds(),
		"screenshots_dir": s.ScreenshotsDir,
		"allow_file_urls": s.AllowFileURLs,
		"allowed_domains": append([]string(nil), s.AllowedDomains...),
		"blocked_domains": append([]string(nil), s.BlockedDomains...),
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "browser_type":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for browser_type: expected string, got %T", value)
			}
			s.BrowserType = strings.ToLower(strings.TrimSpace(v))

		case "headless":
			v, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for headless: expected bool, got %T", value)
			}
			s.Headless = v

		case "timeout_ms":
			ms, err := toInt64(value)
			if err != nil {
				return fmt.Errorf("invalid value for timeout_ms: %w", err)
			}
			s.Timeout = time.Duration(ms) * time.Millisecond

		case "screenshots_dir":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for screenshots_dir: expected string, got %T", value)
			}
			s.ScreenshotsDir = v

		case "allow_file_urls":
			v, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for allow_file_urls: expected bool, got %T", value)
			}
			s.AllowFileURLs = v

		case "allowed_domains":
			list, err := toStringSlice(value)
			if err != nil {
				return fmt.Errorf("invalid value for allowed_domains: %w", err)
			}
			s.AllowedDomains = list

		case "blocked_domains":
			list, err := toStringSlice(value)
			if err != nil {
				return fmt.Errorf("invalid value for blocked_domains: %w", err)
			}
			s.BlockedDomains = list

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.BrowserType {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("browser_type must be chromium, firefox or webkit, got %q", s.BrowserType)
	}
	if s.Timeout < time.Second || s.Timeout > 10*time.Minute {
		return fmt.Errorf("timeout_ms must be between 1000 and 600000, got %d", s.Timeout.Milliseconds())
	}
	if strings.TrimSpace(s.ScreenshotsDir) == "" {
		return fmt.Errorf("screenshots_dir cannot be empty")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.BrowserType = defaultBrowserType
	s.Headless = defaultHeadless
	s.Timeout = defaultBrowserTimeout
	s.ScreenshotsDir = defaultScreenshotsDir
	s.AllowFileURLs = false
	s.AllowedDomains = nil
	s.BlockedDomains = nil
}

// ApplyEnv overrides settings from BROWSER_TYPE, BROWSER_HEADLESS,
// BROWSER_TIMEOUT (milliseconds) and BROWSER_SCREENSHOTS_DIR.
func (s *BrowserSection) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v := getenv("BROWSER_TYPE"); v != "" {
		s.BrowserType = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv("BROWSER_HEADLESS"); v != "" {
		s.Headless = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v := getenv("BROWSER_TIMEOUT"); v != "" {
		ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid BROWSER_TIMEOUT %q: %w", v, err)
		}
		s.Timeout = time.Duration(ms) * time.Millisecond
	}
	if v := getenv("BROWSER_SCREENSHOTS_DIR"); v != "" {
		s.ScreenshotsDir = v
	}
	return nil
}

// Snapshot returns a copy of the settings that is safe to hold without the lock.
func (s *BrowserSection) Snapshot() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return BrowserSettings{
		BrowserType:    s.BrowserType,
		Headless:       s.Headless,
		Timeout:        s.Timeout,
		ScreenshotsDir: s.ScreenshotsDir,
		AllowFileURLs:  s.AllowFileURLs,
		AllowedDomains: append([]string(nil), s.AllowedDomains...),
		BlockedDomains: append([]string(nil), s.BlockedDomains...),
	}
}

// BrowserSettings is an immutable copy of a BrowserSection.
type BrowserSettings struct {
	BrowserType    string
	Headless       bool
	Timeout        time.Duration
	ScreenshotsDir string
	AllowFileURLs  bool
	AllowedDomains []string
	BlockedDomains []string
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		// JSON numbers come as float64
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string list element, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
}
