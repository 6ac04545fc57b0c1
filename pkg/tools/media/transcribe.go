package media

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// TranscriptionRequest configures Transcribe. AudioFile must already be
// an absolute, validated path.
type TranscriptionRequest struct {
	AudioFile string
	Language  string
}

// TranscriptionResult is the outcome of Transcribe.
type TranscriptionResult struct {
	Success  bool   `json:"success"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Transcribe converts an audio file to text.
func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) TranscriptionResult {
	if err := c.ready(); err != nil {
		return TranscriptionResult{Error: err.Error()}
	}

	f, err := os.Open(req.AudioFile)
	if err != nil {
		if os.IsNotExist(err) {
			return TranscriptionResult{Error: fmt.Sprintf("audio file not found: %s", req.AudioFile)}
		}
		return TranscriptionResult{Error: fmt.Sprintf("failed to open audio file: %v", err)}
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(c.settings.TranscriptionModel),
	}
	if req.Language != "" {
		params.Language = openai.String(req.Language)
	}

	transcription, err := c.api.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		c.log.Warnf("transcription failed: %v", err)
		return TranscriptionResult{Error: fmt.Sprintf("transcription failed: %v", err)}
	}

	return TranscriptionResult{
		Success:  true,
		Text:     transcription.Text,
		Language: req.Language,
		Model:    c.settings.TranscriptionModel,
	}
}
