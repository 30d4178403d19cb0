package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var fromYAML PongConfig
	if err := yaml.Unmarshal(DefaultYAML(), &fromYAML); err != nil {
		t.Fatalf("embedded yaml does not parse: %v", err)
	}
	if fromYAML != DefaultPongConfig() {
		t.Errorf("embedded defaults diverge from DefaultPongConfig():\n yaml: %+v\n code: %+v", fromYAML, DefaultPongConfig())
	}
}

func TestLoadCustomPathPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pong.yaml")
	content := "gameplay:\n  winning_score: 7\nsync:\n  interval: 75ms\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Gameplay.WinningScore != 7 {
		t.Errorf("WinningScore = %d, expected 7", cfg.Gameplay.WinningScore)
	}
	if cfg.Sync.Interval != 75*time.Millisecond {
		t.Errorf("Sync.Interval = %v, expected 75ms", cfg.Sync.Interval)
	}
	if cfg.Field.Width != 800 {
		t.Errorf("untouched keys should keep defaults, Field.Width = %v", cfg.Field.Width)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing custom path should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		port    int
		dsn     string
		wantErr bool
	}{
		{name: "no env", env: map[string]string{}, port: 3000, dsn: "~/.pong/pong.db"},
		{name: "port and db", env: map[string]string{"PORT": "8080", "DATABASE_URL": "/tmp/p.db"}, port: 8080, dsn: "/tmp/p.db"},
		{name: "bad port", env: map[string]string{"PORT": "abc"}, wantErr: true},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultPongConfig()
			err := ApplyEnv(&cfg, func(k string) string { return tc.env[k] })
			if tc.wantErr {
				if err == nil {
					t.Error("ApplyEnv() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error: %v", err)
			}
			if cfg.Server.Port != tc.port {
				t.Errorf("Port = %d, expected %d", cfg.Server.Port, tc.port)
			}
			if cfg.Server.DatabaseURL != tc.dsn {
				t.Errorf("DatabaseURL = %q, expected %q", cfg.Server.DatabaseURL, tc.dsn)
			}
		})
	}
}

func TestValidateClampsPaddleHeight(t *testing.T) {
	tests := []struct {
		height   float64
		expected float64
	}{
		{40, 70},
		{100, 100},
		{500, 130},
	}
	for _, tc := range tests {
		cfg := DefaultPongConfig()
		cfg.Paddles.Height = tc.height
		if got := cfg.Validate().Paddles.Height; got != tc.expected {
			t.Errorf("Validate() height %v -> %v, expected %v", tc.height, got, tc.expected)
		}
	}
}

func TestApplyDifficulty(t *testing.T) {
	ai := DefaultPongConfig().AI
	ApplyDifficulty(&ai, ParseDifficulty("hard"))
	if ai.SpeedFactor <= DefaultPongConfig().AI.SpeedFactor {
		t.Errorf("hard SpeedFactor = %v, expected above default", ai.SpeedFactor)
	}
	if ParseDifficulty("bogus") != DifficultyNormal {
		t.Error("unknown preset should map to normal")
	}
	if got := ai.CPUSkill(4, 0); got > 1 {
		t.Errorf("CPUSkill() = %v, must not exceed 1", got)
	}
}
