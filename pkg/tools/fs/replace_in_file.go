package fs

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// ReplaceInFileTool replaces literal text in a file.
type ReplaceInFileTool struct {
	guard *workspace.Guard
}

// NewReplaceInFileTool creates a new ReplaceInFileTool.
func NewReplaceInFileTool(guard *workspace.Guard) *ReplaceInFileTool {
	return &ReplaceInFileTool{guard: guard}
}

// Name returns the tool name.
func (t *ReplaceInFileTool) Name() string {
	return "replace_in_file"
}

// Description returns the tool description.
func (t *ReplaceInFileTool) Description() string {
	return "Replace occurrences of a literal text in a file. Replaces every occurrence unless count is given. Fails when the text is not found."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ReplaceInFileTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the file (relative to workspace)",
			},
			"old_text": map[string]interface{}{
				"type":        "string",
				"description": "Exact text to replace",
			},
			"new_text": map[string]interface{}{
				"type":        "string",
				"description": "Replacement text",
			},
			"count": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of replacements, -1 for all (default: -1)",
			},
		},
		[]string{"path", "old_text", "new_text"},
	)
}

// ReplaceResult is the replace_in_file output.
type ReplaceResult struct {
	Path         string `json:"path"`
	Replacements int    `json:"replacements_made"`
	Occurrences  int    `json:"occurrences"`
}

// Execute performs the replacement.
func (t *ReplaceInFileTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Path    string   `xml:"path"`
		OldText string   `xml:"old_text"`
		NewText string   `xml:"new_text"`
		Count   *int     `xml:"count"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.OldText == "" {
		return "", nil, fmt.Errorf("missing required parameter: old_text")
	}
	count := -1
	if input.Count != nil {
		count = *input.Count
	}
	if count == 0 || count < -1 {
		return "", nil, fmt.Errorf("count must be -1 or positive, got %d", count)
	}

	absPath, info, err := resolveFile(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	content := string(data)

	occurrences := strings.Count(content, input.OldText)
	if occurrences == 0 {
		return "", nil, fmt.Errorf("old_text not found in %s", input.Path)
	}
	replaced := occurrences
	if count > 0 && count < occurrences {
		replaced = count
	}

	updated := strings.Replace(content, input.OldText, input.NewText, count)
	if err := writeFileAtomic(absPath, []byte(updated)); err != nil {
		return "", nil, err
	}

	out, err := tools.RenderJSON(ReplaceResult{Path: t.guard.Rel(absPath), Replacements: replaced, Occurrences: occurrences})
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{
		"file_path":         input.Path,
		"replacements_made": replaced,
		"size_before":       info.Size(),
		"size_after":        int64(len(updated)),
	}, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *ReplaceInFileTool) IsLoopBreaking() bool {
	return false
}
