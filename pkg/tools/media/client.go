// Package media provides image generation, text-to-speech and speech
// transcription through an OpenAI-compatible API.
//
// Generated files are written to the configured output directory with
// timestamped names (image_20260314_092653.png, speech_....mp3). Like the
// browser tools, operations report failures inside their result instead
// of returning Go errors.
package media

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/agentkit/pkg/config"
	"github.com/entrhq/agentkit/pkg/logging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const timestampLayout = "20060102_150405"

// Client performs media operations with one set of settings.
type Client struct {
	api      openai.Client
	settings config.MediaSettings
	http     *http.Client
	now      func() time.Time
	log      *logging.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	request []option.RequestOption
	http    *http.Client
	now     func() time.Time
	log     *logging.Logger
}

// WithRequestOptions passes extra options to the API client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(o *clientOptions) { o.request = append(o.request, opts...) }
}

// WithHTTPClient sets the client used for API calls and image downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.http = c }
}

// WithClock replaces the clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) { o.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// NewClient creates a client from settings. A missing API key is not an
// error here; every operation then fails with a result saying so.
func NewClient(settings config.MediaSettings, opts ...Option) *Client {
	o := clientOptions{
		http: &http.Client{Timeout: 5 * time.Minute},
		now:  time.Now,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	request := []option.RequestOption{
		option.WithAPIKey(settings.APIKey),
		option.WithHTTPClient(o.http),
	}
	if settings.BaseURL != "" {
		request = append(request, option.WithBaseURL(settings.BaseURL))
	}
	request = append(request, o.request...)

	return &Client{
		api:      openai.NewClient(request...),
		settings: settings,
		http:     o.http,
		now:      o.now,
		log:      o.log,
	}
}

// Settings returns the settings the client was built with.
func (c *Client) Settings() config.MediaSettings {
	return c.settings
}

func (c *Client) ready() error {
	if strings.TrimSpace(c.settings.APIKey) == "" {
		return fmt.Errorf("media API key is not configured (set media.api_key or OPENAI_API_KEY)")
	}
	return nil
}

// outputPath returns where to write a generated file. name, when given,
// must be a bare file name; its extension is forced to ext. Otherwise a
// <prefix>_<timestamp><ext> name is used.
func (c *Client) outputPath(name, prefix, ext string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("%s_%s%s", prefix, c.now().Format(timestampLayout), ext)
	} else {
		if name != filepath.Base(name) || name == "." || name == ".." {
			return "", fmt.Errorf("output_file must be a file name without directories, got %q", name)
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
	}

	if err := os.MkdirAll(c.settings.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(c.settings.OutputDir, name), nil
}

func or(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
