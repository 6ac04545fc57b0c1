package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/openai/openai-go"
)

// ImageRequest configures GenerateImage. Empty fields fall back to the
// configured defaults.
type ImageRequest struct {
	Prompt     string
	Size       string
	Quality    string
	Style      string
	OutputFile string
}

// ImageResult is the outcome of GenerateImage.
type ImageResult struct {
	Success       bool   `json:"success"`
	FilePath      string `json:"file_path,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
	Model         string `json:"model,omitempty"`
	Size          string `json:"size,omitempty"`
	Quality       string `json:"quality,omitempty"`
	Style         string `json:"style,omitempty"`
	Error         string `json:"error,omitempty"`
}

// GenerateImage creates one image from a prompt and saves it as PNG.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ImageResult {
	if err := c.ready(); err != nil {
		return ImageResult{Error: err.Error()}
	}
	if req.Prompt == "" {
		return ImageResult{Error: "prompt is required"}
	}

	result := ImageResult{
		Prompt:  req.Prompt,
		Model:   c.settings.ImageModel,
		Size:    or(req.Size, c.settings.ImageSize),
		Quality: or(req.Quality, c.settings.ImageQuality),
		Style:   or(req.Style, c.settings.ImageStyle),
	}
	path, err := c.outputPath(req.OutputFile, "image", ".png")
	if err != nil {
		return ImageResult{Error: err.Error()}
	}

	c.log.Debugf("generating image with %s (%s, %s)", result.Model, result.Size, result.Quality)
	resp, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(result.Model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(result.Size),
		Quality:        openai.ImageGenerateParamsQuality(result.Quality),
		Style:          openai.ImageGenerateParamsStyle(result.Style),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		c.log.Warnf("image generation failed: %v", err)
		return ImageResult{Error: fmt.Sprintf("image generation failed: %v", err)}
	}
	if len(resp.Data) == 0 {
		return ImageResult{Error: "image generation returned no images"}
	}

	image := resp.Data[0]
	if err := c.saveImage(ctx, image, path); err != nil {
		return ImageResult{Error: err.Error()}
	}

	result.Success = true
	result.FilePath = path
	result.RevisedPrompt = image.RevisedPrompt
	c.log.Infof("image saved to %s", path)
	return result
}

// saveImage writes inline base64 data, or downloads the image URL when
// the server returned one instead.
func (c *Client) saveImage(ctx context.Context, image openai.Image, path string) error {
	if image.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(image.B64JSON)
		if err != nil {
			return fmt.Errorf("failed to decode image: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
		return nil
	}
	if image.URL == "" {
		return fmt.Errorf("image generation returned neither data nor a URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, image.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	return writeBody(path, resp.Body)
}

func writeBody(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
