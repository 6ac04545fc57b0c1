package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/agentkit/pkg/agent/tools"
)

// FillFormTool exposes Executor.FillForm.
type FillFormTool struct {
	exec *Executor
}

// NewFillFormTool creates a new form filling tool.
func NewFillFormTool(exec *Executor) *FillFormTool {
	return &FillFormTool{exec: exec}
}

// Name returns the tool name.
func (t *FillFormTool) Name() string {
	return "browser_fill_form"
}

// Description returns the tool description.
func (t *FillFormTool) Description() string {
	return `Fill and submit a web form. Each <field selector="css">value</field> is applied in order: text inputs are replaced, selects pick the option with that value, checkboxes and radios are checked for "true", "1" or "yes" and unchecked otherwise.`
}

// Schema returns the tool's JSON schema.
func (t *FillFormTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL of the page containing the form",
			},
			"field": map[string]interface{}{
				"type":        "array",
				"description": `Repeated <field selector="css selector">value</field> elements`,
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"selector": map[string]interface{}{"type": "string"},
						"value":    map[string]interface{}{"type": "string"},
					},
				},
			},
			"submit_button": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector of the submit button",
			},
			"wait_after_submit": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector to wait for after submitting",
			},
			"screenshot_result": map[string]interface{}{
				"type":        "boolean",
				"description": "Save a full-page screenshot of the result (default: false)",
			},
		},
		[]string{"url", "submit_button"},
	)
}

// FieldArg is one <field> element.
type FieldArg struct {
	Selector string `xml:"selector,attr"`
	Value    string `xml:",chardata"`
}

// FillFormInput represents the parameters for filling a form.
type FillFormInput struct {
	XMLName          xml.Name   `xml:"arguments"`
	URL              string     `xml:"url"`
	Fields           []FieldArg `xml:"field"`
	SubmitButton     string     `xml:"submit_button"`
	WaitAfterSubmit  string     `xml:"wait_after_submit"`
	ScreenshotResult bool       `xml:"screenshot_result"`
}

// Execute fills and submits the form.
func (t *FillFormTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input FillFormInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}
	if input.SubmitButton == "" {
		return "", nil, fmt.Errorf("submit_button is required")
	}

	fields := make([]FormField, 0, len(input.Fields))
	for i, f := range input.Fields {
		if f.Selector == "" {
			return "", nil, fmt.Errorf("field %d is missing its selector attribute", i+1)
		}
		fields = append(fields, FormField{Selector: f.Selector, Value: f.Value})
	}

	result := t.exec.FillForm(ctx, FillFormRequest{
		URL:             input.URL,
		Fields:          fields,
		SubmitButton:    input.SubmitButton,
		WaitAfterSubmit: input.WaitAfterSubmit,
		Screenshot:      input.ScreenshotResult,
	})
	return render(result)
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *FillFormTool) IsLoopBreaking() bool {
	return false
}
