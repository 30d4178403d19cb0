package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/pong-ultimate/internal/config"
)

// Settings are the terminal client's saved preferences.
type Settings struct {
	ServerURL    string                  `yaml:"server_url"`
	Username     string                  `yaml:"username"`
	Difficulty   config.DifficultyPreset `yaml:"difficulty"`
	PaddleHeight float64                 `yaml:"paddle_height"`
	Diagnostics  bool                    `yaml:"diagnostics"` // show sync counters in the HUD
}

// DefaultSettings returns the preferences used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		ServerURL:    "ws://localhost:3000/ws",
		Difficulty:   config.DifficultyNormal,
		PaddleHeight: 100,
	}
}

// SettingsStore persists Settings.
type SettingsStore interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileSettings keeps settings in a YAML file.
type FileSettings struct {
	path string
}

// NewFileSettings stores settings at path. An empty path means
// ~/.pong/settings.yaml.
func NewFileSettings(path string) (*FileSettings, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("settings: resolve home: %w", err)
		}
		path = filepath.Join(home, ".pong", "settings.yaml")
	}
	return &FileSettings{path: path}, nil
}

// Path returns the backing file.
func (f *FileSettings) Path() string { return f.path }

// Load reads the file on top of the defaults. A missing file yields the
// defaults without error.
func (f *FileSettings) Load() (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("settings: read %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("settings: parse %s: %w", f.path, err)
	}
	return s, nil
}

// Save writes the file, creating its directory.
func (f *FileSettings) Save(s Settings) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", f.path, err)
	}
	return nil
}

// MemorySettings keeps settings in memory, for SSH sessions and tests.
type MemorySettings struct {
	mu sync.Mutex
	s  Settings
}

// NewMemorySettings starts from the defaults.
func NewMemorySettings() *MemorySettings {
	return &MemorySettings{s: DefaultSettings()}
}

func (m *MemorySettings) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemorySettings) Save(s Settings) error {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
	return nil
}

var (
	_ SettingsStore = (*FileSettings)(nil)
	_ SettingsStore = (*MemorySettings)(nil)
)
