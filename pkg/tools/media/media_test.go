package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/config"
	"github.com/entrhq/agentkit/pkg/security/workspace"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

// fakeAPI records the last request body per endpoint.
type fakeAPI struct {
	t        *testing.T
	image    map[string]any
	speech   map[string]any
	form     map[string]string
	fail     bool
	imageURL string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/images/generations"):
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.image))
		w.Header().Set("Content-Type", "application/json")
		data := map[string]any{"revised_prompt": "a red fox in snow"}
		if f.imageURL != "" {
			data["url"] = f.imageURL
		} else {
			data["b64_json"] = base64.StdEncoding.EncodeToString(pngBytes)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"created": 1, "data": []any{data}})
	case strings.HasSuffix(r.URL.Path, "/audio/speech"):
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.speech))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "ID3-audio")
	case strings.HasSuffix(r.URL.Path, "/audio/transcriptions"):
		require.NoError(f.t, r.ParseMultipartForm(1<<20))
		f.form = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			f.form[k] = v[0]
		}
		if _, _, err := r.FormFile("file"); err == nil {
			f.form["file"] = "present"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"hello world"}`)
	case r.URL.Path == "/download.png":
		_, _ = w.Write(pngBytes)
	default:
		http.NotFound(w, r)
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func testSettings(t *testing.T, baseURL string) config.MediaSettings {
	t.Helper()
	return config.MediaSettings{
		APIKey:             "sk-test",
		BaseURL:            baseURL,
		ImageModel:         "dall-e-3",
		ImageSize:          "1024x1024",
		ImageQuality:       "standard",
		ImageStyle:         "vivid",
		SpeechModel:        "tts-1",
		Voice:              "alloy",
		TranscriptionModel: "whisper-1",
		OutputDir:          filepath.Join(t.TempDir(), "media"),
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{t: t}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := NewClient(testSettings(t, srv.URL+"/v1/"),
		WithClock(fixedClock),
		WithHTTPClient(srv.Client()),
		WithRequestOptions(option.WithMaxRetries(0)),
	)
	return client, api
}

func TestGenerateImage(t *testing.T) {
	client, api := newTestClient(t)

	result := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a fox", Quality: "hd"})
	require.True(t, result.Success, result.Error)

	assert.Equal(t, filepath.Join(client.Settings().OutputDir, "image_20260314_092653.png"), result.FilePath)
	assert.Equal(t, "a red fox in snow", result.RevisedPrompt)
	assert.Equal(t, "hd", result.Quality)
	assert.Equal(t, "vivid", result.Style)

	data, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	assert.Equal(t, "a fox", api.image["prompt"])
	assert.Equal(t, "dall-e-3", api.image["model"])
	assert.Equal(t, "b64_json", api.image["response_format"])
	assert.Equal(t, "1024x1024", api.image["size"])
	assert.Equal(t, "hd", api.image["quality"])
}

func TestGenerateImage_DownloadsURL(t *testing.T) {
	client, api := newTestClient(t)
	base := strings.TrimSuffix(client.Settings().BaseURL, "/v1/")
	api.imageURL = base + "/download.png"

	result := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a fox", OutputFile: "fox.jpg"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "fox.png", filepath.Base(result.FilePath))

	data, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestGenerateImage_Failures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client, api := newTestClient(t)
		api.fail = true
		result := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a fox"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "image generation failed")
		assert.Empty(t, result.FilePath)
	})

	t.Run("missing key", func(t *testing.T) {
		settings := testSettings(t, "http://127.0.0.1:1/")
		settings.APIKey = ""
		result := NewClient(settings).GenerateImage(context.Background(), ImageRequest{Prompt: "a fox"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "API key is not configured")
	})

	t.Run("output file with directories", func(t *testing.T) {
		client, _ := newTestClient(t)
		result := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a fox", OutputFile: "../escape.png"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "without directories")
	})
}

func TestSynthesizeSpeech(t *testing.T) {
	client, api := newTestClient(t)

	result := client.SynthesizeSpeech(context.Background(), SpeechRequest{Text: "hello", Voice: "nova", Speed: 1.5})
	require.True(t, result.Success, result.Error)

	assert.Equal(t, "speech_20260314_092653.mp3", filepath.Base(result.FilePath))
	assert.Equal(t, int64(len("ID3-audio")), result.Bytes)
	assert.Equal(t, "nova", result.Voice)

	assert.Equal(t, "hello", api.speech["input"])
	assert.Equal(t, "tts-1", api.speech["model"])
	assert.Equal(t, "nova", api.speech["voice"])
	assert.Equal(t, "mp3", api.speech["response_format"])
	assert.Equal(t, 1.5, api.speech["speed"])
}

func TestSynthesizeSpeech_DefaultsAndValidation(t *testing.T) {
	client, api := newTestClient(t)

	result := client.SynthesizeSpeech(context.Background(), SpeechRequest{Text: "hello"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "alloy", api.speech["voice"])
	assert.NotContains(t, api.speech, "speed")

	result = client.SynthesizeSpeech(context.Background(), SpeechRequest{Text: "hello", Speed: 5})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "speed must be between")
}

func TestTranscribe(t *testing.T) {
	client, api := newTestClient(t)
	audio := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3-audio"), 0644))

	result := client.Transcribe(context.Background(), TranscriptionRequest{AudioFile: audio, Language: "en"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, "whisper-1", result.Model)

	assert.Equal(t, "whisper-1", api.form["model"])
	assert.Equal(t, "en", api.form["language"])
	assert.Equal(t, "present", api.form["file"])
}

func TestTranscribe_MissingFile(t *testing.T) {
	client, _ := newTestClient(t)
	result := client.Transcribe(context.Background(), TranscriptionRequest{AudioFile: filepath.Join(t.TempDir(), "nope.mp3")})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "audio file not found")
}

func TestTools(t *testing.T) {
	client, _ := newTestClient(t)
	dir := t.TempDir()
	guard, err := workspace.NewGuard(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp3"), []byte("ID3-audio"), 0644))

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(Tools(client, guard)...))
	assert.Equal(t, []string{"generate_image", "synthesize_speech", "transcribe_audio"}, reg.Names())

	ctx := context.Background()
	call := func(name, args string) (string, map[string]interface{}, error) {
		tool, ok := reg.Get(name)
		require.True(t, ok, name)
		return tool.Execute(ctx, []byte("<arguments>"+args+"</arguments>"))
	}

	out, meta, err := call("generate_image", "<prompt>a fox &amp; a hound</prompt>")
	require.NoError(t, err)
	assert.Equal(t, true, meta["success"])
	assert.Contains(t, meta["file_path"], "image_20260314_092653.png")
	assert.Contains(t, out, `"revised_prompt"`)

	_, meta, err = call("synthesize_speech", "<text>hi</text><speed>0.5</speed>")
	require.NoError(t, err)
	assert.Equal(t, true, meta["success"])

	out, meta, err = call("transcribe_audio", "<audio_file>clip.mp3</audio_file>")
	require.NoError(t, err)
	assert.Equal(t, true, meta["success"])
	assert.Contains(t, out, "hello world")

	_, _, err = call("transcribe_audio", "<audio_file>../../etc/passwd</audio_file>")
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrOutsideWorkspace)

	for name, args := range map[string]string{
		"generate_image":    "<size>1024x1024</size>",
		"synthesize_speech": "<voice>nova</voice>",
		"transcribe_audio":  "<language>en</language>",
	} {
		_, _, err := call(name, args)
		assert.Error(t, err, name)
	}
}
