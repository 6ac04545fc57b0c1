package workspace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Allow adds a directory outside the root that paths may resolve into,
// such as the screenshot or media output directory. The directory does not
// need to exist yet.
func (g *Guard) Allow(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("allowed directory cannot be empty")
	}

	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return fmt.Errorf("failed to resolve allowed directory: %w", err)
	}
	resolved := resolveExisting(abs)

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.allowed {
		if existing == resolved {
			return nil
		}
	}
	g.allowed = append(g.allowed, resolved)
	return nil
}

// Allowed returns a copy of the extra allowed directories.
func (g *Guard) Allowed() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.allowed...)
}
