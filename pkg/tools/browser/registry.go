package browser

import (
	"github.com/entrhq/agentkit/pkg/agent/tools"
)

// Tools returns the browser tools backed by exec.
func Tools(exec *Executor) []tools.Tool {
	return []tools.Tool{
		NewVisitTool(exec),
		NewFillFormTool(exec),
		NewExtractDataTool(exec),
		NewMonitorChangesTool(exec),
	}
}

// render turns an operation result into tool output. Failed operations are
// reported in the output, not as a Go error.
func render(result OperationResult) (string, map[string]interface{}, error) {
	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	metadata := map[string]interface{}{"success": !result.Failed()}
	if result.URL != "" {
		metadata["url"] = result.URL
	}
	if result.ScreenshotPath != "" {
		metadata["screenshot_path"] = result.ScreenshotPath
	}
	if result.MonitorReport != nil {
		metadata["changes"] = len(result.Changes)
	}
	return out, metadata, nil
}
