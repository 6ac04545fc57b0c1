package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
)

// ExtractDataTool exposes Executor.ExtractData.
type ExtractDataTool struct {
	exec *Executor
}

// NewExtractDataTool creates a new extraction tool.
func NewExtractDataTool(exec *Executor) *ExtractDataTool {
	return &ExtractDataTool{exec: exec}
}

// Name returns the tool name.
func (t *ExtractDataTool) Name() string {
	return "browser_extract_data"
}

// Description returns the tool description.
func (t *ExtractDataTool) Description() string {
	return "Extract structured data from a web page with CSS selectors. Each named selector yields a string when exactly one element matches and a list otherwise; attribute selectors work the same way, skipping elements without the attribute."
}

// Schema returns the tool's JSON schema.
func (t *ExtractDataTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to extract data from",
			},
			"selector": map[string]interface{}{
				"type":        "array",
				"description": `Repeated <selector name="key">css selector</selector> elements; inner text of matches is reported under data.key`,
			},
			"wait_for": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector to wait for before extracting",
			},
			"attribute": map[string]interface{}{
				"type":        "array",
				"description": `Repeated <attribute selector="css selector">attribute name</attribute> elements; values are reported under attributes[selector]`,
			},
		},
		[]string{"url", "selector"},
	)
}

// SelectorArg is one <selector> element.
type SelectorArg struct {
	Name     string `xml:"name,attr"`
	Selector string `xml:",chardata"`
}

// AttributeArg is one <attribute> element.
type AttributeArg struct {
	Selector  string `xml:"selector,attr"`
	Attribute string `xml:",chardata"`
}

// ExtractDataInput represents the parameters for extraction.
type ExtractDataInput struct {
	XMLName    xml.Name       `xml:"arguments"`
	URL        string         `xml:"url"`
	Selectors  []SelectorArg  `xml:"selector"`
	WaitFor    string         `xml:"wait_for"`
	Attributes []AttributeArg `xml:"attribute"`
}

// Execute extracts the data.
func (t *ExtractDataTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input ExtractDataInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}
	if len(input.Selectors) == 0 {
		return "", nil, fmt.Errorf("at least one selector is required")
	}

	req := ExtractRequest{URL: input.URL, WaitFor: input.WaitFor}
	for _, s := range input.Selectors {
		name, sel := strings.TrimSpace(s.Name), strings.TrimSpace(s.Selector)
		if name == "" || sel == "" {
			return "", nil, fmt.Errorf("selector elements need a name attribute and a css selector")
		}
		req.Selectors = append(req.Selectors, NamedSelector{Name: name, Selector: sel})
	}
	for _, a := range input.Attributes {
		sel, attr := strings.TrimSpace(a.Selector), strings.TrimSpace(a.Attribute)
		if sel == "" || attr == "" {
			return "", nil, fmt.Errorf("attribute elements need a selector attribute and an attribute name")
		}
		req.Attributes = append(req.Attributes, AttributeSelector{Selector: sel, Attribute: attr})
	}

	return render(t.exec.ExtractData(ctx, req))
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *ExtractDataTool) IsLoopBreaking() bool {
	return false
}
