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
	// SectionIDSearch is the identifier for the web search section
	SectionIDSearch = "search"

	defaultSearchBaseURL     = "https://google.serper.dev"
	defaultSearchResultLimit = 10
	defaultSearchTimeout     = 30 * time.Second
)

// SearchSection configures the web search tools.
type SearchSection struct {
	APIKey      string
	BaseURL     string
	ResultLimit int
	Timeout     time.Duration
	mu          sync.RWMutex
}

// NewSearchSection creates a search section with default settings.
func NewSearchSection() *SearchSection {
	s := &SearchSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *SearchSection) ID() string {
	return SectionIDSearch
}

// Title returns the section title.
func (s *SearchSection) Title() string {
	return "Web Search"
}

// Description returns the section description.
func (s *SearchSection) Description() string {
	return "Search API key, endpoint, result limit and request timeout."
}

// Data returns the current configuration data.
func (s *SearchSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"api_key":      s.APIKey,
		"base_url":     s.BaseURL,
		"result_limit": s.ResultLimit,
		"timeout_ms":   s.Timeout.Milliseconds(),
	}
}

// SetData updates the configuration from the provided data.
func (s *SearchSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "api_key", "base_url":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
			}
			if key == "api_key" {
				s.APIKey = v
			} else {
				s.BaseURL = v
			}

		case "result_limit":
			n, err := toInt64(value)
			if err != nil {
				return fmt.Errorf("invalid value for result_limit: %w", err)
			}
			s.ResultLimit = int(n)

		case "timeout_ms":
			ms, err := toInt64(value)
			if err != nil {
				return fmt.Errorf("invalid value for timeout_ms: %w", err)
			}
			s.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *SearchSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	if s.ResultLimit < 1 || s.ResultLimit > 100 {
		return fmt.Errorf("result_limit must be between 1 and 100, got %d", s.ResultLimit)
	}
	if s.Timeout < time.Second {
		return fmt.Errorf("timeout_ms must be at least 1000, got %d", s.Timeout.Milliseconds())
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SearchSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.APIKey = ""
	s.BaseURL = defaultSearchBaseURL
	s.ResultLimit = defaultSearchResultLimit
	s.Timeout = defaultSearchTimeout
}

// ApplyEnv reads SERPER_API_KEY when the config file left the key empty,
// and SEARCH_RESULT_LIMIT / SEARCH_TIMEOUT (seconds) when set.
func (s *SearchSection) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.APIKey == "" {
		s.APIKey = getenv("SERPER_API_KEY")
	}
	if v := getenv("SEARCH_RESULT_LIMIT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid SEARCH_RESULT_LIMIT %q: %w", v, err)
		}
		s.ResultLimit = n
	}
	if v := getenv("SEARCH_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid SEARCH_TIMEOUT %q: %w", v, err)
		}
		s.Timeout = time.Duration(secs) * time.Second
	}
	return nil
}

// Snapshot returns a copy of the settings that is safe to hold without the lock.
func (s *SearchSection) Snapshot() SearchSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SearchSettings{
		APIKey:      s.APIKey,
		BaseURL:     s.BaseURL,
		ResultLimit: s.ResultLimit,
		Timeout:     s.Timeout,
	}
}

// SearchSettings is an immutable copy of a SearchSection.
type SearchSettings struct {
	APIKey      string
	BaseURL     string
	ResultLimit int
	Timeout     time.Duration
}
