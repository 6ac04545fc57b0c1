package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	// SectionIDMedia is the identifier for the media generation section
	SectionIDMedia = "media"

	defaultImageModel         = "dall-e-3"
	defaultImageSize          = "1024x1024"
	defaultImageQuality       = "standard"
	defaultImageStyle         = "vivid"
	defaultSpeechModel        = "tts-1"
	defaultVoice              = "alloy"
	defaultTranscriptionModel = "whisper-1"
	defaultMediaOutputDir     = "./media_output"
)

// MediaSection configures the image, speech and transcription tools.
type MediaSection struct {
	APIKey             string
	BaseURL            string
	ImageModel         string
	ImageSize          string
	ImageQuality       string
	ImageStyle         string
	SpeechModel        string
	Voice              string
	TranscriptionModel string
	OutputDir          string
	mu                 sync.RWMutex
}

// NewMediaSection creates a media section with default settings.
func NewMediaSection() *MediaSection {
	s := &MediaSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *MediaSection) ID() string {
	return SectionIDMedia
}

// Title returns the section title.
func (s *MediaSection) Title() string {
	return "Media Generation"
}

// Description returns the section description.
func (s *MediaSection) Description() string {
	return "API endpoint, models and output directory for image generation, text-to-speech and transcription."
}

// fields maps config keys to the section's string fields.
func (s *MediaSection) fields() map[string]*string {
	return map[string]*string{
		"api_key":             &s.APIKey,
		"base_url":            &s.BaseURL,
		"image_model":         &s.ImageModel,
		"image_size":          &s.ImageSize,
		"image_quality":       &s.ImageQuality,
		"image_style":         &s.ImageStyle,
		"speech_model":        &s.SpeechModel,
		"voice":               &s.Voice,
		"transcription_model": &s.TranscriptionModel,
		"output_dir":          &s.OutputDir,
	}
}

// Data returns the current configuration data.
func (s *MediaSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make(map[string]any)
	for key, field := range s.fields() {
		data[key] = *field
	}
	return data
}

// SetData updates the configuration from the provided data.
func (s *MediaSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields := s.fields()
	for key, value := range data {
		field, known := fields[key]
		if !known {
			continue
		}
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
		}
		*field = str
	}
	return nil
}

// Validate validates the current configuration.
func (s *MediaSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(s.OutputDir) == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	switch s.ImageQuality {
	case "standard", "hd", "low", "medium", "high", "auto":
	default:
		return fmt.Errorf("image_quality %q is not supported", s.ImageQuality)
	}
	switch s.ImageStyle {
	case "vivid", "natural":
	default:
		return fmt.Errorf("image_style must be vivid or natural, got %q", s.ImageStyle)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *MediaSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.APIKey = ""
	s.BaseURL = ""
	s.ImageModel = defaultImageModel
	s.ImageSize = defaultImageSize
	s.ImageQuality = defaultImageQuality
	s.ImageStyle = defaultImageStyle
	s.SpeechModel = defaultSpeechModel
	s.Voice = defaultVoice
	s.TranscriptionModel = defaultTranscriptionModel
	s.OutputDir = defaultMediaOutputDir
}

// ApplyEnv fills the API key and base URL from OPENAI_API_KEY and
// OPENAI_BASE_URL when the config file left them empty.
func (s *MediaSection) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.APIKey == "" {
		s.APIKey = getenv("OPENAI_API_KEY")
	}
	if s.BaseURL == "" {
		s.BaseURL = getenv("OPENAI_BASE_URL")
	}
}

// Snapshot returns a copy of the settings that is safe to hold without the lock.
func (s *MediaSection) Snapshot() MediaSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return MediaSettings{
		APIKey:             s.APIKey,
		BaseURL:            s.BaseURL,
		ImageModel:         s.ImageModel,
		ImageSize:          s.ImageSize,
		ImageQuality:       s.ImageQuality,
		ImageStyle:         s.ImageStyle,
		SpeechModel:        s.SpeechModel,
		Voice:              s.Voice,
		TranscriptionModel: s.TranscriptionModel,
		OutputDir:          s.OutputDir,
	}
}

// MediaSettings is an immutable copy of a MediaSection.
type MediaSettings struct {
	APIKey             string
	BaseURL            string
	ImageModel         string
	ImageSize          string
	ImageQuality       string
	ImageStyle         string
	SpeechModel        string
	Voice              string
	TranscriptionModel string
	OutputDir          string
}
