package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/agentkit/pkg/agent/tools"
)

// MonitorChangesTool exposes Executor.MonitorChanges.
type MonitorChangesTool struct {
	exec *Executor
}

// NewMonitorChangesTool creates a new monitoring tool.
func NewMonitorChangesTool(exec *Executor) *MonitorChangesTool {
	return &MonitorChangesTool{exec: exec}
}

// Name returns the tool name.
func (t *MonitorChangesTool) Name() string {
	return "browser_monitor_changes"
}

// Description returns the tool description.
func (t *MonitorChangesTool) Description() string {
	return "Watch the text of one element on a web page and record every change. The call blocks for max_time seconds; it cannot be stopped early, so keep max_time small."
}

// Schema returns the tool's JSON schema.
func (t *MonitorChangesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to monitor",
			},
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector of the element to watch",
			},
			"interval": map[string]interface{}{
				"type":        "integer",
				"description": fmt.Sprintf("Seconds between checks (default: %d)", DefaultMonitorInterval),
			},
			"max_time": map[string]interface{}{
				"type":        "integer",
				"description": fmt.Sprintf("Total seconds to monitor (default: %d)", DefaultMonitorMaxTime),
			},
			"screenshot_changes": map[string]interface{}{
				"type":        "boolean",
				"description": "Save a full-page screenshot for every change (default: false)",
			},
		},
		[]string{"url", "selector"},
	)
}

// MonitorChangesInput represents the parameters for monitoring.
type MonitorChangesInput struct {
	XMLName           xml.Name `xml:"arguments"`
	URL               string   `xml:"url"`
	Selector          string   `xml:"selector"`
	Interval          *int     `xml:"interval"`
	MaxTime           *int     `xml:"max_time"`
	ScreenshotChanges bool     `xml:"screenshot_changes"`
}

// Execute monitors the element until the time budget is spent.
func (t *MonitorChangesTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input MonitorChangesInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}
	if input.Selector == "" {
		return "", nil, fmt.Errorf("selector is required")
	}

	req := MonitorRequest{
		URL:               input.URL,
		Selector:          input.Selector,
		Interval:          DefaultMonitorInterval,
		MaxTime:           DefaultMonitorMaxTime,
		ScreenshotChanges: input.ScreenshotChanges,
	}
	if input.Interval != nil {
		req.Interval = *input.Interval
	}
	if input.MaxTime != nil {
		req.MaxTime = *input.MaxTime
	}
	if req.Interval < 1 {
		return "", nil, fmt.Errorf("interval must be at least 1 second")
	}
	if req.MaxTime < 0 {
		return "", nil, fmt.Errorf("max_time cannot be negative")
	}

	return render(t.exec.MonitorChanges(ctx, req))
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *MonitorChangesTool) IsLoopBreaking() bool {
	return false
}
