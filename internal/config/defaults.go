package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/pong.yaml
var defaultPongYAML []byte

// DefaultPongConfig returns the built-in configuration. It mirrors
// defaults/pong.yaml and is used if the embedded file cannot be parsed.
func DefaultPongConfig() PongConfig {
	return PongConfig{
		Field: FieldConfig{
			Width:  800,
			Height: 400,
		},
		Ball: BallConfig{
			Radius:      8,
			ServeSpeed:  5,
			ServeSpread: 6,
			MaxSpeed:    10,
			SpeedGrowth: 1.05,
			SpinFactor:  3,
		},
		Paddles: PaddleConfig{
			Width:     15,
			Height:    100,
			MinHeight: 70,
			MaxHeight: 130,
			Offset:    20,
			Speed:     8,
		},
		Gameplay: GameplayConfig{
			WinningScore:      5,
			CountdownFrom:     3,
			CountdownInterval: time.Second,
			StartDelay:        time.Second,
			ResetDelay:        3 * time.Second,
		},
		AI: AIConfig{
			Difficulty:   DifficultyNormal,
			SpeedFactor:  0.6,
			ReactionZone: 10,
			ServeDelay:   time.Second,
		},
		Server: ServerConfig{
			Port:         3000,
			DatabaseURL:  "~/.pong/pong.db",
			TickRate:     60,
			SendBuffer:   128,
			ReadLimit:    4096,
			ReadTimeout:  60 * time.Second,
			PingInterval: 54 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			BufferSize:           5,
			Interval:             50 * time.Millisecond,
			CorrectionThreshold:  10,
			BallSmoothing:        0.3,
			PaddleSmoothing:      0.5,
			Smoothing:            true,
			Prediction:           true,
			ConnectTimeout:       10 * time.Second,
			MaxReconnectAttempts: 5,
			ReconnectDelay:       3 * time.Second,
			PingInterval:         30 * time.Second,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultPongYAML
}
