package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/agentkit/pkg/agent/tools"
)

// VisitTool exposes Executor.Visit.
type VisitTool struct {
	exec *Executor
}

// NewVisitTool creates a new visit tool.
func NewVisitTool(exec *Executor) *VisitTool {
	return &VisitTool{exec: exec}
}

// Name returns the tool name.
func (t *VisitTool) Name() string {
	return "browser_visit"
}

// Description returns the tool description.
func (t *VisitTool) Description() string {
	return "Visit a web page in a fresh headless browser and return its title, text, optional HTML, the result of an optional JavaScript snippet and an optional full-page screenshot."
}

// Schema returns the tool's JSON schema.
func (t *VisitTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to visit, including the scheme (https://...)",
			},
			"wait_for": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector to wait for before reading the page",
			},
			"extract_text": map[string]interface{}{
				"type":        "boolean",
				"description": "Return the page's visible text (default: true)",
			},
			"extract_html": map[string]interface{}{
				"type":        "boolean",
				"description": "Return the page's HTML (default: false)",
			},
			"clean_html": map[string]interface{}{
				"type":        "boolean",
				"description": "Strip scripts, styles and presentational attributes from the returned HTML (default: false)",
			},
			"max_html_length": map[string]interface{}{
				"type":        "integer",
				"description": fmt.Sprintf("Maximum length of cleaned HTML (default: %d)", DefaultMaxHTMLLength),
			},
			"screenshot": map[string]interface{}{
				"type":        "boolean",
				"description": "Save a full-page screenshot (default: false)",
			},
			"javascript": map[string]interface{}{
				"type":        "string",
				"description": "JavaScript expression or function to evaluate on the page; its JSON-serializable return value is reported",
			},
		},
		[]string{"url"},
	)
}

// VisitInput represents the parameters for a visit.
type VisitInput struct {
	XMLName       xml.Name `xml:"arguments"`
	URL           string   `xml:"url"`
	WaitFor       string   `xml:"wait_for"`
	ExtractText   *bool    `xml:"extract_text"`
	ExtractHTML   bool     `xml:"extract_html"`
	CleanHTML     bool     `xml:"clean_html"`
	MaxHTMLLength int      `xml:"max_html_length"`
	Screenshot    bool     `xml:"screenshot"`
	JavaScript    string   `xml:"javascript"`
}

// Execute visits the page.
func (t *VisitTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input VisitInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}
	if input.MaxHTMLLength < 0 {
		return "", nil, fmt.Errorf("max_html_length cannot be negative")
	}

	extractText := true
	if input.ExtractText != nil {
		extractText = *input.ExtractText
	}

	result := t.exec.Visit(ctx, VisitRequest{
		URL:           input.URL,
		WaitFor:       input.WaitFor,
		ExtractText:   extractText,
		ExtractHTML:   input.ExtractHTML,
		CleanHTML:     input.CleanHTML,
		MaxHTMLLength: input.MaxHTMLLength,
		Screenshot:    input.Screenshot,
		JavaScript:    input.JavaScript,
	})
	return render(result)
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *VisitTool) IsLoopBreaking() bool {
	return false
}
