// Package config provides YAML-based configuration for the Pong server and
// terminal client: field geometry, physics, match rules, server transport and
// client sync tuning.
package config

import "time"

// PongConfig is the complete configuration shared by server and client.
type PongConfig struct {
	Field    FieldConfig    `yaml:"field"`
	Ball     BallConfig     `yaml:"ball"`
	Paddles  PaddleConfig   `yaml:"paddles"`
	Gameplay GameplayConfig `yaml:"gameplay"`
	AI       AIConfig       `yaml:"ai"`
	Server   ServerConfig   `yaml:"server"`
	Sync     SyncConfig     `yaml:"sync"`
}

// FieldConfig is the playing field size in field units (pixels on the web client).
type FieldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BallConfig defines ball physics.
type BallConfig struct {
	Radius      float64 `yaml:"radius"`
	ServeSpeed  float64 `yaml:"serve_speed"`  // |dx| right after a launch
	ServeSpread float64 `yaml:"serve_spread"` // serve dy is drawn from [-spread/2, spread/2)
	MaxSpeed    float64 `yaml:"max_speed"`
	SpeedGrowth float64 `yaml:"speed_growth"` // applied per paddle hit, must be > 1
	SpinFactor  float64 `yaml:"spin_factor"`  // dy added per unit of normalized hit offset
}

// PaddleConfig defines paddle geometry and speed.
type PaddleConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	MinHeight float64 `yaml:"min_height"`
	MaxHeight float64 `yaml:"max_height"`
	Offset    float64 `yaml:"offset"` // distance from the field edge
	Speed     float64 `yaml:"speed"`
}

// GameplayConfig defines match rules and pacing.
type GameplayConfig struct {
	WinningScore      int           `yaml:"winning_score"`
	CountdownFrom     int           `yaml:"countdown_from"`
	CountdownInterval time.Duration `yaml:"countdown_interval"`
	StartDelay        time.Duration `yaml:"start_delay"` // both ready -> first countdown value
	ResetDelay        time.Duration `yaml:"reset_delay"` // gameEnd -> lobby reset
}

// AIConfig tunes the CPU opponent used in local play.
type AIConfig struct {
	Difficulty   DifficultyPreset `yaml:"difficulty"`
	SpeedFactor  float64          `yaml:"speed_factor"`  // fraction of paddle speed
	ReactionZone float64          `yaml:"reaction_zone"` // dead zone around the paddle center
	ServeDelay   time.Duration    `yaml:"serve_delay"`   // pause before the CPU serves
}

// ServerConfig defines the match server process.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	DatabaseURL  string        `yaml:"database_url"`
	TickRate     int           `yaml:"tick_rate"`
	SendBuffer   int           `yaml:"send_buffer"` // per-connection outbound queue
	ReadLimit    int64         `yaml:"read_limit"`  // max inbound message size in bytes
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SyncConfig tunes the client network layer and snapshot reconciliation.
type SyncConfig struct {
	BufferSize           int           `yaml:"buffer_size"`
	Interval             time.Duration `yaml:"interval"`
	CorrectionThreshold  float64       `yaml:"correction_threshold"`
	BallSmoothing        float64       `yaml:"ball_smoothing"`
	PaddleSmoothing      float64       `yaml:"paddle_smoothing"`
	Smoothing            bool          `yaml:"smoothing"`
	Prediction           bool          `yaml:"prediction"`
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"` // multiplied by the attempt number
	PingInterval         time.Duration `yaml:"ping_interval"`
}

// TickInterval returns the duration of one server tick.
func (c ServerConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(max(1, c.TickRate))
}
