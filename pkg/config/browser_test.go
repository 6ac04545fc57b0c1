package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserSection_Defaults(t *testing.T) {
	s := NewBrowserSection()
	settings := s.Snapshot()

	assert.Equal(t, "chromium", settings.BrowserType)
	assert.True(t, settings.Headless)
	assert.Equal(t, 30*time.Second, settings.Timeout)
	assert.Equal(t, "./screenshots", settings.ScreenshotsDir)
	assert.False(t, settings.AllowFileURLs)
	assert.NoError(t, s.Validate())
}

func TestBrowserSection_SetData(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		wantErr string
		check   func(t *testing.T, s BrowserSettings)
	}{
		{
			name: "json numbers and lists",
			data: map[string]any{"timeout_ms": float64(12000), "allowed_domains": []any{"example.com"}},
			check: func(t *testing.T, s BrowserSettings) {
				assert.Equal(t, 12*time.Second, s.Timeout)
				assert.Equal(t, []string{"example.com"}, s.AllowedDomains)
			},
		},
		{
			name: "browser type is normalized",
			data: map[string]any{"browser_type": " WebKit "},
			check: func(t *testing.T, s BrowserSettings) {
				assert.Equal(t, "webkit", s.BrowserType)
			},
		},
		{
			name:    "wrong headless type",
			data:    map[string]any{"headless": "yes"},
			wantErr: "headless",
		},
		{
			name:    "wrong list element",
			data:    map[string]any{"blocked_domains": []any{1}},
			wantErr: "blocked_domains",
		},
		{
			name: "unknown keys ignored",
			data: map[string]any{"something_else": 1},
			check: func(t *testing.T, s BrowserSettings) {
				assert.Equal(t, "chromium", s.BrowserType)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBrowserSection()
			err := s.SetData(tt.data)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s.Snapshot())
		})
	}
}

func TestBrowserSection_Validate(t *testing.T) {
	s := NewBrowserSection()
	s.Timeout = 10 * time.Millisecond
	assert.Error(t, s.Validate())

	s.Reset()
	s.BrowserType = "opera"
	assert.Error(t, s.Validate())

	s.Reset()
	s.ScreenshotsDir = " "
	assert.Error(t, s.Validate())
}

func TestBrowserSection_ApplyEnv(t *testing.T) {
	s := NewBrowserSection()
	require.NoError(t, s.ApplyEnv(envMap(map[string]string{
		"BROWSER_TYPE":     "Firefox",
		"BROWSER_HEADLESS": "FALSE",
		"BROWSER_TIMEOUT":  "45000",
	})))

	settings := s.Snapshot()
	assert.Equal(t, "firefox", settings.BrowserType)
	assert.False(t, settings.Headless)
	assert.Equal(t, 45*time.Second, settings.Timeout)
	assert.Equal(t, "./screenshots", settings.ScreenshotsDir)
}

func TestMediaSection(t *testing.T) {
	s := NewMediaSection()
	require.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]any{"image_style": "natural", "output_dir": "/tmp/media"}))
	assert.Equal(t, "natural", s.Snapshot().ImageStyle)

	assert.Error(t, s.SetData(map[string]any{"voice": 3}))

	s.ImageStyle = "cubist"
	assert.Error(t, s.Validate())

	s.Reset()
	s.ApplyEnv(envMap(map[string]string{"OPENAI_API_KEY": "sk-test", "OPENAI_BASE_URL": "http://localhost"}))
	assert.Equal(t, "sk-test", s.Snapshot().APIKey)
	assert.Equal(t, "http://localhost", s.Snapshot().BaseURL)
}

func TestSearchSection(t *testing.T) {
	s := NewSearchSection()
	require.NoError(t, s.Validate())
	assert.Equal(t, "https://google.serper.dev", s.Snapshot().BaseURL)

	require.NoError(t, s.SetData(map[string]any{"api_key": "from-file", "result_limit": float64(20), "timeout_ms": 2000}))
	settings := s.Snapshot()
	assert.Equal(t, 20, settings.ResultLimit)
	assert.Equal(t, 2*time.Second, settings.Timeout)

	require.NoError(t, s.ApplyEnv(envMap(map[string]string{"SERPER_API_KEY": "from-env", "SEARCH_TIMEOUT": "15"})))
	assert.Equal(t, "from-file", s.Snapshot().APIKey)
	assert.Equal(t, 15*time.Second, s.Snapshot().Timeout)

	assert.Error(t, s.SetData(map[string]any{"base_url": 1}))
	assert.Error(t, s.ApplyEnv(envMap(map[string]string{"SEARCH_RESULT_LIMIT": "many"})))

	s.Reset()
	require.NoError(t, s.ApplyEnv(envMap(map[string]string{"SERPER_API_KEY": "from-env", "SEARCH_RESULT_LIMIT": "500"})))
	assert.Equal(t, "from-env", s.Snapshot().APIKey)
	assert.ErrorContains(t, s.Validate(), "result_limit")
}
