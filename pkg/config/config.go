package config

import (
	"fmt"
	"os"
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup. Environment
// overrides are applied after the file is loaded, then everything is
// validated again.
func Initialize(configPath string) error {
	manager, err := Load(configPath, os.Getenv)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	return nil
}

// Load builds a manager with the toolkit's sections, loads configPath
// and applies environment overrides read through getenv.
func Load(configPath string, getenv func(string) string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	browser := NewBrowserSection()
	media := NewMediaSection()
	search := NewSearchSection()
	for _, section := range []Section{browser, media, search, NewWorkspaceSection()} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}

	if err := browser.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := browser.Validate(); err != nil {
		return nil, fmt.Errorf("browser settings from environment: %w", err)
	}
	media.ApplyEnv(getenv)
	if err := search.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := search.Validate(); err != nil {
		return nil, fmt.Errorf("search settings from environment: %w", err)
	}

	return manager, nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func getSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}
	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	return getSection[*BrowserSection](SectionIDBrowser)
}

// GetMedia returns the media section from global config.
// Returns nil if config is not initialized.
func GetMedia() *MediaSection {
	return getSection[*MediaSection](SectionIDMedia)
}

// GetSearch returns the search section from global config.
// Returns nil if config is not initialized.
func GetSearch() *SearchSection {
	return getSection[*SearchSection](SectionIDSearch)
}

// GetWorkspace returns the workspace section from global config.
// Returns nil if config is not initialized.
func GetWorkspace() *WorkspaceSection {
	return getSection[*WorkspaceSection](SectionIDWorkspace)
}

// CurrentBrowserSettings returns the effective browser settings: the global
// section when initialized, defaults otherwise.
func CurrentBrowserSettings() BrowserSettings {
	if s := GetBrowser(); s != nil {
		return s.Snapshot()
	}
	return NewBrowserSection().Snapshot()
}

// CurrentMediaSettings returns the effective media settings: the global
// section when initialized, defaults plus environment otherwise.
func CurrentMediaSettings() MediaSettings {
	if s := GetMedia(); s != nil {
		return s.Snapshot()
	}
	s := NewMediaSection()
	s.ApplyEnv(os.Getenv)
	return s.Snapshot()
}

// CurrentSearchSettings returns the effective search settings: the global
// section when initialized, defaults plus environment otherwise.
func CurrentSearchSettings() SearchSettings {
	if s := GetSearch(); s != nil {
		return s.Snapshot()
	}
	s := NewSearchSection()
	_ = s.ApplyEnv(os.Getenv)
	return s.Snapshot()
}
