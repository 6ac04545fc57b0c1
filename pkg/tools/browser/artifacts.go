package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Screenshot file prefixes per operation.
const (
	PrefixVisit   = "screenshot"
	PrefixForm    = "form_result"
	PrefixChange  = "change"
	timestampForm = "20060102_150405"
)

// ArtifactWriter persists full-page screenshots under one directory.
type ArtifactWriter struct {
	dir string
	now func() time.Time
}

// NewArtifactWriter creates a writer for dir. The directory is created on
// the first capture.
func NewArtifactWriter(dir string, now func() time.Time) *ArtifactWriter {
	if now == nil {
		now = time.Now
	}
	return &ArtifactWriter{dir: dir, now: now}
}

// Dir returns the output directory.
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// Path builds <dir>/<prefix>_<YYYYMMDD_HHMMSS>.png for the current time.
func (w *ArtifactWriter) Path(prefix string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.png", prefix, w.now().Format(timestampForm)))
}

// Capture writes a full-page screenshot of page and returns its path.
func (w *ArtifactWriter) Capture(page Page, prefix string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", newError(ScreenshotWriteFailure, "screenshot", "", err)
	}
	path := w.Path(prefix)
	if err := page.Screenshot(path); err != nil {
		return "", newError(ScreenshotWriteFailure, "screenshot", "", err)
	}
	return path, nil
}
