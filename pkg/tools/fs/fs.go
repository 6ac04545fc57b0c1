// Package fs provides filesystem tools confined to a workspace.
//
// Every path argument is resolved through a workspace.Guard: relative paths
// are taken from the workspace root, anything resolving outside the root
// and the guard's allowed directories is rejected, and paths hidden by the
// ignore rules are skipped by listings and refused by direct access.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/entrhq/agentkit/pkg/security/workspace"
)

// Tools returns the filesystem tools bound to guard. counter may be nil,
// in which case read_file reports no token estimate.
func Tools(guard *workspace.Guard, counter TokenCounter) []tools.Tool {
	return []tools.Tool{
		NewReadFileTool(guard, counter),
		NewWriteFileTool(guard),
		NewReplaceInFileTool(guard),
		NewGetInfoTool(guard),
		NewDiskUsageTool(guard),
		NewFindFilesTool(guard),
		NewFindContentTool(guard),
	}
}

// resolve validates path against the guard and refuses ignored paths.
func resolve(guard *workspace.Guard, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("missing required parameter: path")
	}
	abs, err := guard.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if guard.ShouldIgnore(abs) {
		return "", fmt.Errorf("'%s' is ignored by .gitignore, .agentkitignore, or default patterns", path)
	}
	return abs, nil
}

// resolveFile is resolve plus a check that the target is a regular file.
func resolveFile(guard *workspace.Guard, path string) (string, os.FileInfo, error) {
	abs, err := resolve(guard, path)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("path does not exist: %s", path)
		}
		return "", nil, err
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("path is not a file: %s", path)
	}
	return abs, info, nil
}

// resolveDir is resolve plus a check that the target is a directory.
// An empty path means the workspace root.
func resolveDir(guard *workspace.Guard, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = "."
	}
	abs, err := resolve(guard, path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", path)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", path)
	}
	return abs, nil
}

// walk visits every non-ignored entry below root. Ignored directories are
// not descended into. When recursive is false only root's direct children
// are visited.
func walk(guard *workspace.Guard, root string, recursive bool, fn func(path string, d os.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if guard.ShouldIgnore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := fn(path, d); err != nil {
			return err
		}
		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// isBinaryFile is a heuristic: known binary extensions, or a NUL byte in
// the first 512 bytes.
func isBinaryFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exe", ".dll", ".so", ".dylib", ".bin", ".dat", ".db",
		".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp",
		".pdf", ".zip", ".tar", ".gz",
		".mp3", ".mp4", ".wav", ".avi", ".mov",
		".o", ".a", ".pyc":
		return true
	}

	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil {
		return false
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
