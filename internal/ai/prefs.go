package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Preferences holds the user's provider choices. Loaded at startup,
// written back on every change.
type Preferences struct {
	Enabled   map[string]bool `json:"enabled"`   // Provider name -> enabled
	Preferred string          `json:"preferred"` // Tried first when set and enabled
}

// IsEnabled reports whether the named provider is enabled. Providers
// never mentioned in the preferences default to enabled.
func (p Preferences) IsEnabled(name string) bool {
	if p.Enabled == nil {
		return true
	}
	enabled, ok := p.Enabled[name]
	if !ok {
		return true
	}
	return enabled
}

// PreferencesRepository is the persistence contract for Preferences. The
// orchestrator takes it by injection so tests can supply an in-memory one.
type PreferencesRepository interface {
	Load() (Preferences, error)
	Save(Preferences) error
}

// FilePreferences persists Preferences as a JSON document under the data
// directory.
type FilePreferences struct {
	path string
}

// NewFilePreferences creates a repository storing providers.json in dataDir.
func NewFilePreferences(dataDir string) *FilePreferences {
	return &FilePreferences{path: filepath.Join(dataDir, "providers.json")}
}

// Load reads the preferences file. A missing file yields zero-value
// preferences (everything enabled, no preferred provider).
func (f *FilePreferences) Load() (Preferences, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read provider preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to parse provider preferences: %w", err)
	}
	return prefs, nil
}

// Save writes the preferences file, creating the data directory if needed.
func (f *FilePreferences) Save(prefs Preferences) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode provider preferences: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write provider preferences: %w", err)
	}
	return nil
}
