// Package workspace confines filesystem tools to a root directory plus an
// explicit list of extra directories, and decides which paths are hidden by
// ignore rules.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrOutsideWorkspace is returned when a path resolves outside the root and
// every allowed directory.
var ErrOutsideWorkspace = errors.New("path is outside workspace boundaries")

// Guard resolves user-supplied paths against a workspace root.
type Guard struct {
	root    string
	ignore  *IgnoreMatcher
	mu      sync.RWMutex
	allowed []string
}

// NewGuard creates a guard rooted at dir. The root must exist; symlinks in it
// are resolved so later prefix checks compare real paths.
func NewGuard(dir string) (*Guard, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace directory: %w", err)
	}

	ignore, err := NewIgnoreMatcher(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}

	return &Guard{root: root, ignore: ignore}, nil
}

// Root returns the resolved workspace root.
func (g *Guard) Root() string {
	return g.root
}

// Resolve turns path into an absolute, symlink-free path and rejects it when
// it escapes the workspace. Relative paths are taken from the root. The
// target does not need to exist.
func (g *Guard) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	p := filepath.Clean(expandHome(path))
	if !filepath.IsAbs(p) {
		p = filepath.Join(g.root, p)
	}
	resolved := resolveExisting(p)

	if !g.contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkspace, path)
	}
	return resolved, nil
}

// Rel returns abs relative to the root, or abs itself when it lives in an
// allowed directory outside the root.
func (g *Guard) Rel(abs string) string {
	if within(abs, g.root) {
		if rel, err := filepath.Rel(g.root, abs); err == nil {
			return rel
		}
	}
	return abs
}

// ShouldIgnore reports whether an already resolved path is hidden by the
// ignore rules. Paths in allowed directories outside the root are never
// ignored.
func (g *Guard) ShouldIgnore(abs string) bool {
	if !within(abs, g.root) {
		return false
	}
	rel, err := filepath.Rel(g.root, abs)
	if err != nil || rel == "." {
		return false
	}

	isDir := false
	if info, err := os.Lstat(abs); err == nil {
		isDir = info.IsDir()
	}
	return g.ignore.Match(filepath.ToSlash(rel), isDir)
}

func (g *Guard) contains(abs string) bool {
	if within(abs, g.root) {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, dir := range g.allowed {
		if within(abs, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, strings.TrimSuffix(dir, sep)+sep)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-appends the missing tail, so files about to be created still get a
// canonical location.
func resolveExisting(path string) string {
	var tail []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved
		}
		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Clean(path)
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}
