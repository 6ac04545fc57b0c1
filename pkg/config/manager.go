package config

import (
	"fmt"
	"sort"
	"sync"
)

// Manager owns the registered sections and moves their data
// between memory and the backing Store.
type Manager struct {
	mu       sync.RWMutex
	store    Store
	sections map[string]Section
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if section == nil {
		return fmt.Errorf("section cannot be nil")
	}
	id := section.ID()
	if id == "" {
		return fmt.Errorf("section ID cannot be empty")
	}
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}
	m.sections[id] = section
	return nil
}

// GetSection returns the section registered under id.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	section, ok := m.sections[id]
	return section, ok
}

// SectionIDs returns the registered section IDs in sorted order.
func (m *Manager) SectionIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sections))
	for id := range m.sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadAll reads every registered section from the store and validates it.
func (m *Manager) LoadAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, section := range m.sections {
		data, err := m.store.GetSection(id)
		if err != nil {
			return fmt.Errorf("failed to load section %s: %w", id, err)
		}
		if len(data) == 0 {
			continue
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("invalid data for section %s: %w", id, err)
		}
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s failed validation: %w", id, err)
		}
	}
	return nil
}

// SaveAll writes every registered section to the store and persists it.
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, section := range m.sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s failed validation: %w", id, err)
		}
		if err := m.store.SetSection(id, section.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", id, err)
		}
	}
	return m.store.Save()
}

// ResetAll restores every section to its defaults.
func (m *Manager) ResetAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, section := range m.sections {
		section.Reset()
	}
}
