package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IgnoreFileName is the project-specific ignore file read next to .gitignore.
const IgnoreFileName = ".agentkitignore"

// DefaultIgnorePatterns hide VCS metadata, dependency trees and secrets.
var DefaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"vendor/",
	".venv/",
	"__pycache__/",
	".DS_Store",
	".env",
	".env.*",
	"*.pem",
	"*.key",
}

type ignoreRule struct {
	pattern glob.Glob
	negate  bool
	dirOnly bool
	source  string
}

// IgnoreMatcher evaluates gitignore-style rules. Later rules win, so a
// "!pattern" line in .gitignore can re-include a default.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher loads the default rules, then root/.gitignore, then
// root/.agentkitignore. Missing files are skipped.
func NewIgnoreMatcher(root string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{}
	for _, p := range DefaultIgnorePatterns {
		if err := m.Add(p, "default"); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{".gitignore", IgnoreFileName} {
		if err := m.loadFile(filepath.Join(root, name)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *IgnoreMatcher) loadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := m.Add(line, filepath.Base(path)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Add compiles one gitignore-style line. Patterns without a slash match at
// any depth; a trailing slash restricts the rule to directories and their
// contents.
func (m *IgnoreMatcher) Add(line, source string) error {
	rule := ignoreRule{source: source}
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}
	if !anchored {
		line = "{" + line + ",**/" + line + "}"
	}

	g, err := glob.Compile(line, '/')
	if err != nil {
		return fmt.Errorf("invalid ignore pattern %q from %s: %w", line, source, err)
	}
	rule.pattern = g
	m.rules = append(m.rules, rule)
	return nil
}

// Match reports whether the slash-separated relative path is ignored. A
// path is also ignored when one of its parent directories is.
func (m *IgnoreMatcher) Match(rel string, isDir bool) bool {
	rel = strings.TrimPrefix(rel, "./")
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if m.matchOne(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}
	return m.matchOne(rel, isDir)
}

func (m *IgnoreMatcher) matchOne(rel string, isDir bool) bool {
	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.pattern.Match(rel) {
			ignored = !r.negate
		}
	}
	return ignored
}
