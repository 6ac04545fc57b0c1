package config

import (
	"fmt"
	"strings"
	"sync"
)

// SectionIDWorkspace is the identifier for the workspace section
const SectionIDWorkspace = "workspace"

// WorkspaceSection configures the filesystem tools' workspace boundary.
type WorkspaceSection struct {
	Root            string
	WhitelistedDirs []string
	mu              sync.RWMutex
}

// NewWorkspaceSection creates a workspace section rooted at ".".
func NewWorkspaceSection() *WorkspaceSection {
	return &WorkspaceSection{Root: "."}
}

// ID returns the section identifier.
func (s *WorkspaceSection) ID() string {
	return SectionIDWorkspace
}

// Title returns the section title.
func (s *WorkspaceSection) Title() string {
	return "Workspace"
}

// Description returns the section description.
func (s *WorkspaceSection) Description() string {
	return "Root directory the filesystem tools are confined to, plus extra directories they may touch."
}

// Data returns the current configuration data.
func (s *WorkspaceSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"root":             s.Root,
		"whitelisted_dirs": append([]string(nil), s.WhitelistedDirs...),
	}
}

// SetData updates the configuration from the provided data.
func (s *WorkspaceSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["root"]; ok {
		root, isString := v.(string)
		if !isString {
			return fmt.Errorf("invalid value type for root: expected string, got %T", v)
		}
		s.Root = root
	}
	if v, ok := data["whitelisted_dirs"]; ok {
		dirs, err := toStringSlice(v)
		if err != nil {
			return fmt.Errorf("invalid value for whitelisted_dirs: %w", err)
		}
		s.WhitelistedDirs = dirs
	}
	return nil
}

// Validate validates the current configuration.
func (s *WorkspaceSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if strings.TrimSpace(s.Root) == "" {
		return fmt.Errorf("workspace root cannot be empty")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *WorkspaceSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Root = "."
	s.WhitelistedDirs = nil
}

// GetRoot returns the configured workspace root.
func (s *WorkspaceSection) GetRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Root
}

// GetWhitelistedDirs returns a copy of the whitelisted directories.
func (s *WorkspaceSection) GetWhitelistedDirs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.WhitelistedDirs...)
}
