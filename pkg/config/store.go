package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// configVersion is written into every persisted config file so future
// releases can migrate old layouts.
const configVersion = "1.0"

// Store provides persistence for configuration data.
type Store interface {
	// Load loads the configuration from disk
	Load() error

	// Save saves the configuration to disk
	Save() error

	// GetSection retrieves configuration data for a specific section
	GetSection(sectionID string) (map[string]interface{}, error)

	// SetSection stores configuration data for a specific section
	SetSection(sectionID string, data map[string]interface{}) error

	// GetAll retrieves all configuration data
	GetAll() (map[string]map[string]interface{}, error)

	// SetAll stores all configuration data
	SetAll(data map[string]map[string]interface{}) error
}

// configFile is the on-disk envelope around the section data.
type configFile struct {
	Version  string                            `json:"version"`
	Sections map[string]map[string]interface{} `json:"sections"`
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path     string
	data     map[string]map[string]interface{}
	mu       sync.RWMutex
	version  string
	modified bool
}

// NewFileStore creates a new file-based configuration store.
// If path is empty, defaults to ~/.scout/config.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".scout", "config.json")
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]map[string]interface{}),
		version: configVersion,
	}

	// A missing file is fine on first run; anything else is a real error
	if err := store.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return store, nil
}

// Load reads the configuration from disk. A missing file leaves the store
// empty rather than failing, so first runs work without setup.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]map[string]interface{})
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var parsed configFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	if parsed.Version != "" {
		s.version = parsed.Version
	}
	if parsed.Sections != nil {
		s.data = parsed.Sections
	} else {
		s.data = make(map[string]map[string]interface{})
	}
	s.modified = false

	return nil
}

// Save writes the configuration to disk. The write goes through a temp file
// and rename so a crash never leaves a half-written config, and the file is
// created owner-only because it can hold API keys.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	encoded, err := json.MarshalIndent(configFile{
		Version:  s.version,
		Sections: s.data,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoded = append(encoded, '\n')

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, encoded, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.modified = false
	return nil
}

// GetSection retrieves configuration data for a specific section. The
// returned map is a copy; mutating it does not touch the store.
func (s *FileStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.data[sectionID]
	if !exists {
		return make(map[string]interface{}), nil
	}
	return copySection(data), nil
}

// SetSection stores configuration data for a specific section.
func (s *FileStore) SetSection(sectionID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sectionID] = copySection(data)
	s.modified = true
	return nil
}

// GetAll retrieves a deep copy of all configuration data.
func (s *FileStore) GetAll() (map[string]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySections(s.data), nil
}

// SetAll replaces all configuration data.
func (s *FileStore) SetAll(data map[string]map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = copySections(data)
	s.modified = true
	return nil
}

// IsModified returns true if the store has unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

func copySection(data map[string]interface{}) map[string]interface{} {
	sectionCopy := make(map[string]interface{}, len(data))
	for k, v := range data {
		sectionCopy[k] = v
	}
	return sectionCopy
}

func copySections(data map[string]map[string]interface{}) map[string]map[string]interface{} {
	dataCopy := make(map[string]map[string]interface{}, len(data))
	for sectionID, sectionData := range data {
		dataCopy[sectionID] = copySection(sectionData)
	}
	return dataCopy
}
