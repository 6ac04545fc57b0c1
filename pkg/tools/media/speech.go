package media

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go"
)

// SpeechRequest configures SynthesizeSpeech.
type SpeechRequest struct {
	Text       string
	Voice      string
	Speed      float64
	OutputFile string
}

// SpeechResult is the outcome of SynthesizeSpeech.
type SpeechResult struct {
	Success  bool    `json:"success"`
	FilePath string  `json:"file_path,omitempty"`
	Voice    string  `json:"voice,omitempty"`
	Model    string  `json:"model,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Bytes    int64   `json:"bytes,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// SynthesizeSpeech converts text to an MP3 file.
func (c *Client) SynthesizeSpeech(ctx context.Context, req SpeechRequest) SpeechResult {
	if err := c.ready(); err != nil {
		return SpeechResult{Error: err.Error()}
	}
	if req.Text == "" {
		return SpeechResult{Error: "text is required"}
	}
	if req.Speed != 0 && (req.Speed < 0.25 || req.Speed > 4) {
		return SpeechResult{Error: fmt.Sprintf("speed must be between 0.25 and 4.0, got %g", req.Speed)}
	}

	result := SpeechResult{
		Voice: or(req.Voice, c.settings.Voice),
		Model: c.settings.SpeechModel,
		Speed: req.Speed,
	}
	path, err := c.outputPath(req.OutputFile, "speech", ".mp3")
	if err != nil {
		return SpeechResult{Error: err.Error()}
	}

	params := openai.AudioSpeechNewParams{
		Input:          req.Text,
		Model:          openai.SpeechModel(result.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(result.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if req.Speed != 0 {
		params.Speed = openai.Float(req.Speed)
	}

	resp, err := c.api.Audio.Speech.New(ctx, params)
	if err != nil {
		c.log.Warnf("speech synthesis failed: %v", err)
		return SpeechResult{Error: fmt.Sprintf("speech synthesis failed: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return SpeechResult{Error: fmt.Sprintf("speech synthesis failed: HTTP %d", resp.StatusCode)}
	}

	if err := writeBody(path, resp.Body); err != nil {
		return SpeechResult{Error: err.Error()}
	}
	if info, err := os.Stat(path); err == nil {
		result.Bytes = info.Size()
	}

	result.Success = true
	result.FilePath = path
	c.log.Infof("speech saved to %s", path)
	return result
}
