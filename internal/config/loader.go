package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by ApplyEnv.
const (
	EnvPort        = "PORT"
	EnvDatabaseURL = "DATABASE_URL"
	EnvConfigPath  = "PONG_CONFIG"
)

// Load reads the configuration.
// Search order: customPath -> ~/.pong/configs/pong.yaml -> ./configs/pong.yaml -> embedded default.
// Files are decoded on top of the defaults, so a partial file only overrides
// the keys it names.
func Load(customPath string) (PongConfig, error) {
	cfg := DefaultPongConfig()
	if err := yaml.Unmarshal(defaultPongYAML, &cfg); err != nil {
		cfg = DefaultPongConfig()
	}

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg.Validate(), nil
	}

	for _, path := range []string{userConfigPath("pong.yaml"), filepath.Join("configs", "pong.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := cfg
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			return candidate.Validate(), nil
		}
	}

	return cfg.Validate(), nil
}

// ApplyEnv overlays process environment settings (listen port, database
// connection string) onto the loaded config.
func ApplyEnv(cfg *PongConfig, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		cfg.Server.DatabaseURL = v
	}
	return nil
}

// Validate clamps values that would break the simulation and returns the
// corrected copy.
func (c PongConfig) Validate() PongConfig {
	def := DefaultPongConfig()

	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		c.Field = def.Field
	}
	if c.Paddles.MinHeight <= 0 || c.Paddles.MaxHeight < c.Paddles.MinHeight {
		c.Paddles.MinHeight, c.Paddles.MaxHeight = def.Paddles.MinHeight, def.Paddles.MaxHeight
	}
	c.Paddles.Height = clampF(c.Paddles.Height, c.Paddles.MinHeight, c.Paddles.MaxHeight)
	c.Paddles.Height = min(c.Paddles.Height, c.Field.Height)
	if c.Ball.SpeedGrowth <= 1 {
		c.Ball.SpeedGrowth = def.Ball.SpeedGrowth
	}
	if c.Ball.MaxSpeed < c.Ball.ServeSpeed {
		c.Ball.MaxSpeed = c.Ball.ServeSpeed
	}
	if c.Gameplay.WinningScore < 1 {
		c.Gameplay.WinningScore = def.Gameplay.WinningScore
	}
	if c.Gameplay.CountdownFrom < 0 {
		c.Gameplay.CountdownFrom = 0
	}
	if c.Server.TickRate < 1 {
		c.Server.TickRate = def.Server.TickRate
	}
	if c.Server.SendBuffer < 1 {
		c.Server.SendBuffer = def.Server.SendBuffer
	}
	if c.Sync.BufferSize < 1 {
		c.Sync.BufferSize = def.Sync.BufferSize
	}
	if c.Sync.MaxReconnectAttempts < 0 {
		c.Sync.MaxReconnectAttempts = 0
	}
	return c
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pong", "configs", filename)
}
