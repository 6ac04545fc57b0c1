package fs

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// GetInfoTool reports metadata about one file or directory.
type GetInfoTool struct {
	guard *workspace.Guard
}

// NewGetInfoTool creates a new GetInfoTool.
func NewGetInfoTool(guard *workspace.Guard) *GetInfoTool {
	return &GetInfoTool{guard: guard}
}

// Name returns the tool name.
func (t *GetInfoTool) Name() string {
	return "get_info"
}

// Description returns the tool description.
func (t *GetInfoTool) Description() string {
	return "Get information about a file or directory: size, permissions, type and modification time. PDF files also report their page count."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *GetInfoTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the file or directory (relative to workspace)",
			},
		},
		[]string{"path"},
	)
}

// FileInfo is the get_info output.
type FileInfo struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	SizeHuman  string `json:"size_human"`
	Mode       string `json:"mode"`
	ModeOctal  string `json:"mode_octal"`
	Modified   string `json:"modified"`
	IsDir      bool   `json:"is_dir"`
	IsSymlink  bool   `json:"is_symlink"`
	LinkTarget string `json:"link_target,omitempty"`
	PDFPages   int    `json:"pdf_pages,omitempty"`
	PDFError   string `json:"pdf_error,omitempty"`
}

// Execute stats the path.
func (t *GetInfoTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Path    string   `xml:"path"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	absPath, err := resolve(t.guard, input.Path)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("path does not exist: %s", input.Path)
		}
		return "", nil, err
	}

	result := describe(t.guard, absPath, info)
	if lstat, err := os.Lstat(unresolved(t.guard, input.Path)); err == nil && lstat.Mode()&os.ModeSymlink != 0 {
		result.IsSymlink = true
		result.LinkTarget = absPath
	}
	if !info.IsDir() && strings.EqualFold(filepath.Ext(absPath), ".pdf") {
		pages, err := api.PageCountFile(absPath)
		if err != nil {
			result.PDFError = err.Error()
		} else {
			result.PDFPages = pages
		}
	}

	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{"path": input.Path, "is_dir": result.IsDir}, nil
}

// IsLoopBreaking returns false as this tool doesn't break the agent loop.
func (t *GetInfoTool) IsLoopBreaking() bool {
	return false
}

func describe(guard *workspace.Guard, absPath string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:      guard.Rel(absPath),
		Name:      info.Name(),
		Size:      info.Size(),
		SizeHuman: formatFileSize(info.Size()),
		Mode:      info.Mode().String(),
		ModeOctal: fmt.Sprintf("%04o", info.Mode().Perm()),
		Modified:  info.ModTime().Format(time.RFC3339),
		IsDir:     info.IsDir(),
	}
}

// unresolved returns path joined to the root without following symlinks,
// so the link itself can be inspected.
func unresolved(guard *workspace.Guard, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(guard.Root(), path)
}
