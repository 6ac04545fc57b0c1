package fs

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// DiskUsageTool totals file sizes below a directory.
type DiskUsageTool struct {
	guard *workspace.Guard
}

// NewDiskUsageTool creates a new DiskUsageTool.
func NewDiskUsageTool(guard *workspace.Guard) *DiskUsageTool {
	return &DiskUsageTool{guard: guard}
}

// Name returns the tool name.
func (t *DiskUsageTool) Name() string {
	return "disk_usage"
}

// Description returns the tool description.
func (t *DiskUsageTool) Description() string {
	return "Report disk usage of a directory: total bytes, file and directory counts, and a breakdown per immediate child unless summarize is set. Ignored paths are not counted."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *DiskUsageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory path (relative to workspace, defaults to workspace root)",
			},
			"summarize": map[string]interface{}{
				"type":        "boolean",
				"description": "Only report totals (default: false)",
			},
		},
		nil,
	)
}

// UsageEntry is the usage of one immediate child.
type UsageEntry struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
	Files     int    `json:"files"`
}

// DiskUsage is the disk_usage output.
type DiskUsage struct {
	Path           string       `json:"path"`
	TotalSize      int64        `json:"total_size"`
	TotalSizeHuman string       `json:"total_size_human"`
	FileCount      int          `json:"file_count"`
	DirectoryCount int          `json:"directory_count"`
	Details        []UsageEntry `json:"details,omitempty"`
}

// Execute walks the directory.
func (t *DiskUsageTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName   xml.Name `xml:"arguments"`
		Path      string   `xml:"path"`
		Summarize bool     `xml:"summarize"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	root, err := resolveDir(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}

	usage := DiskUsage{Path: t.guard.Rel(root)}
	children := map[string]*UsageEntry{}
	err = walk(t.guard, root, true, func(path string, d os.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			usage.DirectoryCount++
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		usage.FileCount++
		usage.TotalSize += info.Size()

		if !input.Summarize {
			child := topLevel(root, path)
			entry, ok := children[child]
			if !ok {
				entry = &UsageEntry{Path: t.guard.Rel(child)}
				children[child] = entry
			}
			entry.Size += info.Size()
			entry.Files++
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("walk failed: %w", err)
	}
	usage.TotalSizeHuman = formatFileSize(usage.TotalSize)

	if !input.Summarize {
		usage.Details = make([]UsageEntry, 0, len(children))
		for _, entry := range children {
			entry.SizeHuman = formatFileSize(entry.Size)
			usage.Details = append(usage.Details, *entry)
		}
		sort.Slice(usage.Details, func(i, j int) bool {
			if usage.Details[i].Size != usage.Details[j].Size {
				return usage.Details[i].Size > usage.Details[j].Size
			}
			return usage.Details[i].Path < usage.Details[j].Path
		})
	}

	out, err := tools.RenderJSON(usage)
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{
		"path":       usage.Path,
		"total_size": usage.TotalSize,
		"file_count": usage.FileCount,
	}, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *DiskUsageTool) IsLoopBreaking() bool {
	return false
}

// topLevel returns the immediate child of root that contains path.
func topLevel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	first := rel
	for dir := filepath.Dir(first); dir != "."; dir = filepath.Dir(first) {
		first = dir
	}
	return filepath.Join(root, first)
}
