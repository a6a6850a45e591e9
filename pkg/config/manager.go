package config

import (
	"fmt"
	"sync"
)

// Section represents a logical group of configuration settings that knows
// how to serialize itself to and from a store.
type Section interface {
	// ID returns the unique section identifier used as the storage key
	ID() string

	// Title returns a human-readable section title
	Title() string

	// Description returns a human-readable description of the section
	Description() string

	// Data returns the current configuration data
	Data() map[string]interface{}

	// SetData updates the configuration from the provided data
	SetData(data map[string]interface{}) error

	// Validate validates the current configuration
	Validate() error

	// Reset resets the section to default configuration
	Reset()
}

// Manager coordinates configuration sections and their persistence.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string // registration order for stable GetSections
	mu       sync.RWMutex
}

// NewManager creates a new configuration manager backed by the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// RegisterSection adds a section to the manager. Section IDs must be
// unique; registering a duplicate returns an error.
func (m *Manager) RegisterSection(section Section) error {
	if section == nil {
		return fmt.Errorf("section cannot be nil")
	}

	id := section.ID()
	if id == "" {
		return fmt.Errorf("section ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section already registered: %s", id)
	}

	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection retrieves a registered section by ID.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	section, ok := m.sections[id]
	return section, ok
}

// GetSections returns all registered sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		sections = append(sections, m.sections[id])
	}
	return sections
}

// LoadAll loads the store from disk and applies its data to every
// registered section.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("failed to load config store: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, section := range m.sections {
		data, err := m.store.GetSection(id)
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", id, err)
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("failed to apply section %s: %w", id, err)
		}
	}

	return nil
}

// SaveAll validates every section, writes their data to the store, and
// persists it. Validation failures abort the save before anything is
// written.
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, section := range m.sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s failed validation: %w", id, err)
		}
	}

	for id, section := range m.sections {
		if err := m.store.SetSection(id, section.Data()); err != nil {
			return fmt.Errorf("failed to write section %s: %w", id, err)
		}
	}

	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to save config store: %w", err)
	}

	return nil
}

// ResetAll resets every registered section to its defaults. The store is
// not saved; call SaveAll to persist.
func (m *Manager) ResetAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, section := range m.sections {
		section.Reset()
	}
}
