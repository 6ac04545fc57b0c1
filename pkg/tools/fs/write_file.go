package fs

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// WriteFileTool creates, overwrites or appends to files.
type WriteFileTool struct {
	guard *workspace.Guard
}

// NewWriteFileTool creates a new WriteFileTool.
func NewWriteFileTool(guard *workspace.Guard) *WriteFileTool {
	return &WriteFileTool{
		guard: guard,
	}
}

// Name returns the tool name.
func (t *WriteFileTool) Name() string {
	return "write_file"
}

// Description returns the tool description.
func (t *WriteFileTool) Description() string {
	return "Write content to a file, creating it if it doesn't exist. Overwrites by default; set append to add to the end instead. Parent directories are created as needed."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *WriteFileTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the file to write (relative to workspace)",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Content to write to the file",
			},
			"append": map[string]interface{}{
				"type":        "boolean",
				"description": "Append to the file instead of overwriting it (default: false)",
			},
		},
		[]string{"path", "content"},
	)
}

// WriteResult is the write_file output.
type WriteResult struct {
	Path         string `json:"path"`
	Mode         string `json:"mode"`
	Created      bool   `json:"created"`
	BytesWritten int    `json:"bytes_written"`
	SizeBytes    int64  `json:"size_bytes"`
}

// Execute writes content to the specified file.
func (t *WriteFileTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Path    string   `xml:"path"`
		Content string   `xml:"content"`
		Append  bool     `xml:"append"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	absPath, err := resolve(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}
	if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
		return "", nil, fmt.Errorf("path is a directory: %s", input.Path)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create directories: %w", err)
	}

	created := true
	if _, statErr := os.Stat(absPath); statErr == nil {
		created = false
	}

	result := WriteResult{Path: t.guard.Rel(absPath), Created: created, BytesWritten: len(input.Content)}
	if input.Append {
		result.Mode = "append"
		err = appendFile(absPath, []byte(input.Content))
	} else {
		result.Mode = "write"
		err = writeFileAtomic(absPath, []byte(input.Content))
	}
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get file info: %w", err)
	}
	result.SizeBytes = info.Size()

	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{
		"file_path":  input.Path,
		"created":    created,
		"size_bytes": result.SizeBytes,
	}, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *WriteFileTool) IsLoopBreaking() bool {
	return false
}

// writeFileAtomic writes through a temporary file renamed over path,
// keeping the mode of an existing file.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to append: %w", err)
	}
	return f.Close()
}
