package media

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// Tools returns the media tools. Audio files given to transcribe_audio
// are resolved through guard.
func Tools(client *Client, guard *workspace.Guard) []tools.Tool {
	return []tools.Tool{
		NewGenerateImageTool(client),
		NewSynthesizeSpeechTool(client),
		NewTranscribeAudioTool(client, guard),
	}
}

func render(result interface{}, success bool, path string) (string, map[string]interface{}, error) {
	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	metadata := map[string]interface{}{"success": success}
	if path != "" {
		metadata["file_path"] = path
	}
	return out, metadata, nil
}

// GenerateImageTool exposes Client.GenerateImage.
type GenerateImageTool struct {
	client *Client
}

// NewGenerateImageTool creates a new image generation tool.
func NewGenerateImageTool(client *Client) *GenerateImageTool {
	return &GenerateImageTool{client: client}
}

func (t *GenerateImageTool) Name() string { return "generate_image" }

func (t *GenerateImageTool) Description() string {
	return "Generate an image from a text prompt and save it as a PNG file in the media output directory."
}

func (t *GenerateImageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"prompt": map[string]interface{}{
				"type":        "string",
				"description": "Description of the image to generate",
			},
			"size": map[string]interface{}{
				"type":        "string",
				"description": "Image size, e.g. 1024x1024, 1792x1024 or 1024x1792",
			},
			"quality": map[string]interface{}{
				"type":        "string",
				"description": "Image quality: standard or hd",
			},
			"style": map[string]interface{}{
				"type":        "string",
				"description": "Image style: vivid or natural",
			},
			"output_file": map[string]interface{}{
				"type":        "string",
				"description": "File name for the image (default: image_<timestamp>.png)",
			},
		},
		[]string{"prompt"},
	)
}

// GenerateImageInput represents the parameters for generate_image.
type GenerateImageInput struct {
	XMLName    xml.Name `xml:"arguments"`
	Prompt     string   `xml:"prompt"`
	Size       string   `xml:"size"`
	Quality    string   `xml:"quality"`
	Style      string   `xml:"style"`
	OutputFile string   `xml:"output_file"`
}

func (t *GenerateImageTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input GenerateImageInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return "", nil, fmt.Errorf("prompt is required")
	}

	result := t.client.GenerateImage(ctx, ImageRequest{
		Prompt:     input.Prompt,
		Size:       strings.TrimSpace(input.Size),
		Quality:    strings.TrimSpace(input.Quality),
		Style:      strings.TrimSpace(input.Style),
		OutputFile: strings.TrimSpace(input.OutputFile),
	})
	return render(result, result.Success, result.FilePath)
}

func (t *GenerateImageTool) IsLoopBreaking() bool { return false }

// SynthesizeSpeechTool exposes Client.SynthesizeSpeech.
type SynthesizeSpeechTool struct {
	client *Client
}

// NewSynthesizeSpeechTool creates a new text-to-speech tool.
func NewSynthesizeSpeechTool(client *Client) *SynthesizeSpeechTool {
	return &SynthesizeSpeechTool{client: client}
}

func (t *SynthesizeSpeechTool) Name() string { return "synthesize_speech" }

func (t *SynthesizeSpeechTool) Description() string {
	return "Convert text to speech and save it as an MP3 file in the media output directory."
}

func (t *SynthesizeSpeechTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to speak",
			},
			"voice": map[string]interface{}{
				"type":        "string",
				"description": "Voice: alloy, echo, fable, onyx, nova or shimmer",
			},
			"speed": map[string]interface{}{
				"type":        "number",
				"description": "Speaking speed from 0.25 to 4.0 (default: 1.0)",
			},
			"output_file": map[string]interface{}{
				"type":        "string",
				"description": "File name for the audio (default: speech_<timestamp>.mp3)",
			},
		},
		[]string{"text"},
	)
}

// SynthesizeSpeechInput represents the parameters for synthesize_speech.
type SynthesizeSpeechInput struct {
	XMLName    xml.Name `xml:"arguments"`
	Text       string   `xml:"text"`
	Voice      string   `xml:"voice"`
	Speed      float64  `xml:"speed"`
	OutputFile string   `xml:"output_file"`
}

func (t *SynthesizeSpeechTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SynthesizeSpeechInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(input.Text) == "" {
		return "", nil, fmt.Errorf("text is required")
	}

	result := t.client.SynthesizeSpeech(ctx, SpeechRequest{
		Text:       input.Text,
		Voice:      strings.TrimSpace(input.Voice),
		Speed:      input.Speed,
		OutputFile: strings.TrimSpace(input.OutputFile),
	})
	return render(result, result.Success, result.FilePath)
}

func (t *SynthesizeSpeechTool) IsLoopBreaking() bool { return false }

// TranscribeAudioTool exposes Client.Transcribe.
type TranscribeAudioTool struct {
	client *Client
	guard  *workspace.Guard
}

// NewTranscribeAudioTool creates a new transcription tool.
func NewTranscribeAudioTool(client *Client, guard *workspace.Guard) *TranscribeAudioTool {
	return &TranscribeAudioTool{client: client, guard: guard}
}

func (t *TranscribeAudioTool) Name() string { return "transcribe_audio" }

func (t *TranscribeAudioTool) Description() string {
	return "Transcribe speech in an audio file (mp3, mp4, m4a, wav, webm) to text."
}

func (t *TranscribeAudioTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"audio_file": map[string]interface{}{
				"type":        "string",
				"description": "Path to the audio file (relative to workspace or absolute)",
			},
			"language": map[string]interface{}{
				"type":        "string",
				"description": "ISO-639-1 language code of the audio, e.g. en",
			},
		},
		[]string{"audio_file"},
	)
}

// TranscribeAudioInput represents the parameters for transcribe_audio.
type TranscribeAudioInput struct {
	XMLName   xml.Name `xml:"arguments"`
	AudioFile string   `xml:"audio_file"`
	Language  string   `xml:"language"`
}

func (t *TranscribeAudioTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input TranscribeAudioInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	path := strings.TrimSpace(input.AudioFile)
	if path == "" {
		return "", nil, fmt.Errorf("audio_file is required")
	}

	abs, err := t.guard.Resolve(path)
	if err != nil {
		return "", nil, fmt.Errorf("invalid path: %w", err)
	}

	result := t.client.Transcribe(ctx, TranscriptionRequest{
		AudioFile: abs,
		Language:  strings.TrimSpace(input.Language),
	})
	return render(result, result.Success, "")
}

func (t *TranscribeAudioTool) IsLoopBreaking() bool { return false }
