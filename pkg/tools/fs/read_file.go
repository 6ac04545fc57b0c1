package fs

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// ReadFileTool reads file contents with optional line range support.
type ReadFileTool struct {
	guard   *workspace.Guard
	counter TokenCounter
}

// NewReadFileTool creates a new ReadFileTool. counter may be nil.
func NewReadFileTool(guard *workspace.Guard, counter TokenCounter) *ReadFileTool {
	return &ReadFileTool{
		guard:   guard,
		counter: counter,
	}
}

// Name returns the tool name.
func (t *ReadFileTool) Name() string {
	return "read_file"
}

// Description returns the tool description.
func (t *ReadFileTool) Description() string {
	return "Read the contents of a file with optional line range support. Returns line-numbered content for easy reference."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ReadFileTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the file to read (relative to workspace)",
			},
			"start_line": map[string]interface{}{
				"type":        "integer",
				"description": "Optional starting line number (1-based, inclusive)",
			},
			"end_line": map[string]interface{}{
				"type":        "integer",
				"description": "Optional ending line number (1-based, inclusive)",
			},
		},
		[]string{"path"},
	)
}

// Execute reads the file and returns its contents.
func (t *ReadFileTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName   xml.Name `xml:"arguments"`
		Path      string   `xml:"path"`
		StartLine int      `xml:"start_line"`
		EndLine   int      `xml:"end_line"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validateLineRange(input.StartLine, input.EndLine); err != nil {
		return "", nil, err
	}

	absPath, info, err := resolveFile(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}

	file, err := os.Open(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	content, total, err := numberLines(file, input.StartLine, input.EndLine)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	metadata := map[string]interface{}{
		"path":        input.Path,
		"size_bytes":  info.Size(),
		"modified":    info.ModTime().Format(time.RFC3339),
		"total_lines": total,
	}
	if input.StartLine > 0 {
		metadata["start_line"] = input.StartLine
	}
	if input.EndLine > 0 {
		metadata["end_line"] = input.EndLine
	}
	if t.counter != nil {
		if n, err := t.counter.CountTokens(content); err == nil {
			metadata["tokens"] = n
		}
	}

	return content, metadata, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *ReadFileTool) IsLoopBreaking() bool {
	return false
}

func validateLineRange(startLine, endLine int) error {
	if startLine == 0 && endLine == 0 {
		return nil
	}
	if startLine < 1 {
		return fmt.Errorf("start_line must be >= 1, got %d", startLine)
	}
	if endLine < startLine && endLine != 0 {
		return fmt.Errorf("end_line (%d) must be >= start_line (%d)", endLine, startLine)
	}
	return nil
}

// numberLines formats lines startLine..endLine of r as "N | text" and
// returns them with the total line count. Zero bounds mean the whole file.
func numberLines(r io.Reader, startLine, endLine int) (string, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var builder strings.Builder
	lineNum := 0
	readAll := startLine == 0 && endLine == 0

	for scanner.Scan() {
		lineNum++
		if !readAll && lineNum < startLine {
			continue
		}
		if !readAll && endLine > 0 && lineNum > endLine {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "%d | %s", lineNum, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", 0, err
	}

	if !readAll && startLine > lineNum {
		return "", lineNum, fmt.Errorf("start_line %d exceeds file length (%d lines)", startLine, lineNum)
	}
	return builder.String(), lineNum, nil
}
