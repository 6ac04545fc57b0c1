package fs

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
	"github.com/gobwas/glob"
)

// maxFindResults caps find_files and find_content output.
const maxFindResults = 1000

// FindFilesTool finds files whose name matches a glob.
type FindFilesTool struct {
	guard *workspace.Guard
}

// NewFindFilesTool creates a new FindFilesTool.
func NewFindFilesTool(guard *workspace.Guard) *FindFilesTool {
	return &FindFilesTool{guard: guard}
}

// Name returns the tool name.
func (t *FindFilesTool) Name() string {
	return "find_files"
}

// Description returns the tool description.
func (t *FindFilesTool) Description() string {
	return "Find files whose name matches a glob pattern such as *.go or report_{2025,2026}*.csv. Searches subdirectories unless recursive is false. Ignored paths are skipped."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *FindFilesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory to search (relative to workspace, defaults to workspace root)",
			},
			"pattern": map[string]interface{}{
				"type":        "string",
				"description": "Glob pattern matched against file names",
			},
			"recursive": map[string]interface{}{
				"type":        "boolean",
				"description": "Search subdirectories (default: true)",
			},
		},
		[]string{"pattern"},
	)
}

// FindResult is the find_files output.
type FindResult struct {
	Files     []string `json:"files"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Execute searches for matching files.
func (t *FindFilesTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName   xml.Name `xml:"arguments"`
		Path      string   `xml:"path"`
		Pattern   string   `xml:"pattern"`
		Recursive *bool    `xml:"recursive"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(input.Pattern) == "" {
		return "", nil, fmt.Errorf("missing required parameter: pattern")
	}
	recursive := true
	if input.Recursive != nil {
		recursive = *input.Recursive
	}

	matcher, err := compileNamePattern(input.Pattern)
	if err != nil {
		return "", nil, err
	}
	root, err := resolveDir(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}

	result := FindResult{Files: []string{}}
	err = walk(t.guard, root, recursive, func(path string, d os.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !matcher.Match(d.Name()) {
			return nil
		}
		if len(result.Files) == maxFindResults {
			result.Truncated = true
			return filepath.SkipAll
		}
		result.Files = append(result.Files, t.guard.Rel(path))
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("search failed: %w", err)
	}
	result.Count = len(result.Files)

	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{"pattern": input.Pattern, "count": result.Count}, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *FindFilesTool) IsLoopBreaking() bool {
	return false
}

// compileNamePattern compiles a glob matched against a single path
// element, so '*' never crosses a separator.
func compileNamePattern(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return g, nil
}
