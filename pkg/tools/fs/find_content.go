package fs

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// maxLineLength truncates matched lines in find_content output.
const maxLineLength = 300

// FindContentTool searches files for a literal text.
type FindContentTool struct {
	guard *workspace.Guard
}

// NewFindContentTool creates a new FindContentTool.
func NewFindContentTool(guard *workspace.Guard) *FindContentTool {
	return &FindContentTool{guard: guard}
}

// Name returns the tool name.
func (t *FindContentTool) Name() string {
	return "find_content"
}

// Description returns the tool description.
func (t *FindContentTool) Description() string {
	return "Search text files below a directory for a literal string. Returns each matching line with its file and line number. Binary and ignored files are skipped."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *FindContentTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory to search (relative to workspace, defaults to workspace root)",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to search for",
			},
			"file_pattern": map[string]interface{}{
				"type":        "string",
				"description": "Glob pattern filtering file names (default: *)",
			},
			"case_sensitive": map[string]interface{}{
				"type":        "boolean",
				"description": "Match case exactly (default: false)",
			},
		},
		[]string{"text"},
	)
}

// ContentMatch is one matching line.
type ContentMatch struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// ContentResult is the find_content output.
type ContentResult struct {
	Matches   []ContentMatch `json:"matches"`
	Count     int            `json:"count"`
	Files     int            `json:"files_with_matches"`
	Truncated bool           `json:"truncated,omitempty"`
}

// Execute runs the search.
func (t *FindContentTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName       xml.Name `xml:"arguments"`
		Path          string   `xml:"path"`
		Text          string   `xml:"text"`
		FilePattern   string   `xml:"file_pattern"`
		CaseSensitive bool     `xml:"case_sensitive"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.Text == "" {
		return "", nil, fmt.Errorf("missing required parameter: text")
	}
	if input.FilePattern == "" {
		input.FilePattern = "*"
	}

	matcher, err := compileNamePattern(input.FilePattern)
	if err != nil {
		return "", nil, err
	}
	root, err := resolveDir(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}

	needle := input.Text
	if !input.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	result := ContentResult{Matches: []ContentMatch{}}
	err = walk(t.guard, root, true, func(path string, d os.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || !matcher.Match(d.Name()) || isBinaryFile(path) {
			return nil
		}

		matches, err := searchFile(path, needle, input.CaseSensitive)
		if err != nil || len(matches) == 0 {
			return nil
		}
		result.Files++
		rel := t.guard.Rel(path)
		for _, m := range matches {
			if len(result.Matches) == maxFindResults {
				result.Truncated = true
				return filepath.SkipAll
			}
			m.File = rel
			result.Matches = append(result.Matches, m)
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("search failed: %w", err)
	}
	result.Count = len(result.Matches)

	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{
		"text":               input.Text,
		"match_count":        result.Count,
		"files_with_matches": result.Files,
	}, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *FindContentTool) IsLoopBreaking() bool {
	return false
}

// searchFile returns the lines of path containing needle. When
// caseSensitive is false needle must already be lower case.
func searchFile(path, needle string, caseSensitive bool) ([]ContentMatch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var matches []ContentMatch
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%s is not valid UTF-8", path)
		}
		haystack := line
		if !caseSensitive {
			haystack = strings.ToLower(line)
		}
		if strings.Contains(haystack, needle) {
			matches = append(matches, ContentMatch{Line: lineNum, Text: truncateLine(line)})
		}
	}
	return matches, scanner.Err()
}

func truncateLine(line string) string {
	if len(line) <= maxLineLength {
		return line
	}
	cut := maxLineLength
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}
