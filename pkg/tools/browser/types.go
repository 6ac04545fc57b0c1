package browser

import (
	"encoding/json"
	"time"
)

// Defaults for MonitorChanges, in seconds.
const (
	DefaultMonitorInterval = 60
	DefaultMonitorMaxTime  = 3600
)

// VisitRequest configures Visit.
type VisitRequest struct {
	URL     string
	WaitFor string
	// ExtractText and ExtractHTML default to true and false in the tool layer
	ExtractText bool
	ExtractHTML bool
	// CleanHTML replaces raw markup with cleaned markup of at most MaxHTMLLength
	CleanHTML     bool
	MaxHTMLLength int
	Screenshot    bool
	JavaScript    string
}

// FormField is one selector/value pair. Fields are applied in slice order.
type FormField struct {
	Selector string
	Value    string
}

// FillFormRequest configures FillForm.
type FillFormRequest struct {
	URL             string
	Fields          []FormField
	SubmitButton    string
	WaitAfterSubmit string
	Screenshot      bool
}

// NamedSelector maps a result key to a CSS selector.
type NamedSelector struct {
	Name     string
	Selector string
}

// AttributeSelector names the attribute to read from every element
// matching Selector.
type AttributeSelector struct {
	Selector  string
	Attribute string
}

// ExtractRequest configures ExtractData.
type ExtractRequest struct {
	URL        string
	Selectors  []NamedSelector
	WaitFor    string
	Attributes []AttributeSelector
}

// MonitorRequest configures MonitorChanges. Interval and MaxTime are
// whole seconds.
type MonitorRequest struct {
	URL               string
	Selector          string
	Interval          int
	MaxTime           int
	ScreenshotChanges bool
}

// PageSummary is what Visit and FillForm report about the final page.
type PageSummary struct {
	Title            string          `json:"title"`
	Text             *string         `json:"text,omitempty"`
	HTML             *string         `json:"html,omitempty"`
	JavaScriptResult json.RawMessage `json:"javascript_result,omitempty"`
}

// Extraction holds ExtractData output. Each value is a string when exactly
// one element matched and a []string otherwise.
type Extraction struct {
	Data       map[string]any `json:"data"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// MonitorReport holds MonitorChanges output.
type MonitorReport struct {
	Selector           string         `json:"selector"`
	MonitoringDuration int            `json:"monitoring_duration"`
	Changes            []ChangeRecord `json:"changes"`
}

// OperationResult is returned by every browser operation. On failure only
// Error is set; on success exactly one of the embedded payloads is.
type OperationResult struct {
	Success bool   `json:"success,omitempty"`
	URL     string `json:"url,omitempty"`
	*PageSummary
	*Extraction
	*MonitorReport
	ScreenshotPath string `json:"screenshot_path,omitempty"`
	Error          string `json:"error,omitempty"`
}

func failure(err error) OperationResult {
	return OperationResult{Error: err.Error()}
}

// Failed reports whether the operation failed.
func (r OperationResult) Failed() bool {
	return r.Error != ""
}

// ChangeRecord is one observation made while polling. Either the content
// pair or Error is set.
type ChangeRecord struct {
	Timestamp      time.Time
	OldContent     string
	NewContent     string
	ScreenshotPath string
	Error          string
}

// IsError reports whether the record captures a failed poll.
func (c ChangeRecord) IsError() bool {
	return c.Error != ""
}

// MarshalJSON renders {timestamp, error} for failed polls and
// {timestamp, old_content, new_content, screenshot_path?} otherwise.
func (c ChangeRecord) MarshalJSON() ([]byte, error) {
	ts := c.Timestamp.Format(time.RFC3339)
	if c.IsError() {
		return json.Marshal(struct {
			Timestamp string `json:"timestamp"`
			Error     string `json:"error"`
		}{ts, c.Error})
	}
	return json.Marshal(struct {
		Timestamp      string `json:"timestamp"`
		OldContent     string `json:"old_content"`
		NewContent     string `json:"new_content"`
		ScreenshotPath string `json:"screenshot_path,omitempty"`
	}{ts, c.OldContent, c.NewContent, c.ScreenshotPath})
}
