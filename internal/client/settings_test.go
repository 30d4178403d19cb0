package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/pong-ultimate/internal/config"
)

func TestFileSettingsMissingFileGivesDefaults(t *testing.T) {
	fs, err := NewFileSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("NewFileSettings() error = %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != DefaultSettings() {
		t.Errorf("Load() = %+v, expected defaults", got)
	}
}

func TestFileSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	fs, err := NewFileSettings(path)
	if err != nil {
		t.Fatalf("NewFileSettings() error = %v", err)
	}

	want := Settings{
		ServerURL:    "ws://pong.example:3000/ws",
		Username:     "guest1",
		Difficulty:   config.DifficultyHard,
		PaddleHeight: 80,
		Diagnostics:  true,
	}
	if err := fs.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, expected %+v", got, want)
	}
}

func TestFileSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("username: admin\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs, _ := NewFileSettings(path)
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Username != "admin" || got.ServerURL != DefaultSettings().ServerURL {
		t.Errorf("Load() = %+v, expected admin over defaults", got)
	}
}

func TestFileSettingsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("username: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs, _ := NewFileSettings(path)
	got, err := fs.Load()
	if err == nil {
		t.Error("Load() error = nil, expected parse error")
	}
	if got != DefaultSettings() {
		t.Errorf("Load() on error = %+v, expected defaults", got)
	}
}

func TestMemorySettings(t *testing.T) {
	m := NewMemorySettings()
	s, _ := m.Load()
	s.Username = "guest2"
	if err := m.Save(s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, _ := m.Load()
	if got.Username != "guest2" {
		t.Errorf("Username = %q, expected guest2", got.Username)
	}
}
