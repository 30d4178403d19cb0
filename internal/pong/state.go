// Package pong holds the match data model and the deterministic physics shared
// by the authoritative server loop, the client-side predictor and local play.
package pong

import (
	"bytes"
	"strconv"

	"github.com/vovakirdan/pong-ultimate/internal/config"
)

// PlayerID identifies a seat. The zero value means "nobody" and is encoded as
// JSON null.
type PlayerID int

const (
	NoPlayer PlayerID = 0
	Player1  PlayerID = 1 // left paddle
	Player2  PlayerID = 2 // right paddle
)

// Valid reports whether p is one of the two seats.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent returns the other seat.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

// MarshalJSON encodes NoPlayer as null.
func (p PlayerID) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(p), 10), nil
}

// UnmarshalJSON accepts null, 1 or 2.
func (p *PlayerID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = NoPlayer
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*p = PlayerID(n)
	if !p.Valid() {
		*p = NoPlayer
	}
	return nil
}

// Params are the fixed physical constants of a match.
type Params struct {
	FieldW, FieldH float64

	BallRadius  float64
	ServeSpeed  float64
	ServeSpread float64
	MaxSpeed    float64
	SpeedGrowth float64
	SpinFactor  float64

	PaddleW      float64
	PaddleH      float64
	PaddleOffset float64
	PaddleSpeed  float64
}

// ParamsFromConfig extracts match constants from the loaded configuration.
func ParamsFromConfig(cfg config.PongConfig) Params {
	return Params{
		FieldW:       cfg.Field.Width,
		FieldH:       cfg.Field.Height,
		BallRadius:   cfg.Ball.Radius,
		ServeSpeed:   cfg.Ball.ServeSpeed,
		ServeSpread:  cfg.Ball.ServeSpread,
		MaxSpeed:     cfg.Ball.MaxSpeed,
		SpeedGrowth:  cfg.Ball.SpeedGrowth,
		SpinFactor:   cfg.Ball.SpinFactor,
		PaddleW:      cfg.Paddles.Width,
		PaddleH:      cfg.Paddles.Height,
		PaddleOffset: cfg.Paddles.Offset,
		PaddleSpeed:  cfg.Paddles.Speed,
	}
}

// DefaultParams returns the classic 800x400 field.
func DefaultParams() Params {
	return ParamsFromConfig(config.DefaultPongConfig())
}

// Ball is the ball's position, velocity and pause flag.
type Ball struct {
	X, Y   float64
	DX, DY float64
	Radius float64
	Paused bool
}

// Paddle is one side's paddle. Y is the top edge.
type Paddle struct {
	X, Y          float64
	Width, Height float64
	DY            float64
}

// MatchState aggregates everything the server broadcasts each tick.
type MatchState struct {
	Ball    Ball
	Paddle1 Paddle
	Paddle2 Paddle

	Score1, Score2 int

	Running          bool
	Paused           bool
	WaitingForLaunch bool
	LastScorer       PlayerID
	Winner           PlayerID
}

// NewMatchState returns a fresh state: paddles centered, ball at rest in the
// middle, scores zero.
func NewMatchState(p Params) MatchState {
	var s MatchState
	s.Reset(p)
	return s
}

// Reset restores the initial state in place.
func (s *MatchState) Reset(p Params) {
	paddleY := (p.FieldH - p.PaddleH) / 2
	*s = MatchState{
		Paddle1: Paddle{X: p.PaddleOffset, Y: paddleY, Width: p.PaddleW, Height: p.PaddleH},
		Paddle2: Paddle{X: p.FieldW - p.PaddleOffset - p.PaddleW, Y: paddleY, Width: p.PaddleW, Height: p.PaddleH},
	}
	s.CenterBall(p)
}

// CenterBall puts the ball at rest in the middle of the field.
func (s *MatchState) CenterBall(p Params) {
	s.Ball = Ball{X: p.FieldW / 2, Y: p.FieldH / 2, Radius: p.BallRadius, Paused: true}
}

// Paddle returns the paddle owned by the seat, or nil.
func (s *MatchState) Paddle(id PlayerID) *Paddle {
	switch id {
	case Player1:
		return &s.Paddle1
	case Player2:
		return &s.Paddle2
	default:
		return nil
	}
}

// Score returns the seat's score.
func (s *MatchState) Score(id PlayerID) int {
	switch id {
	case Player1:
		return s.Score1
	case Player2:
		return s.Score2
	default:
		return 0
	}
}

// AddPoint increments the seat's score and returns the new value.
func (s *MatchState) AddPoint(id PlayerID) int {
	switch id {
	case Player1:
		s.Score1++
		return s.Score1
	case Player2:
		s.Score2++
		return s.Score2
	default:
		return 0
	}
}

// Leader returns the seat with the higher score, or NoPlayer on a tie.
func (s *MatchState) Leader() PlayerID {
	switch {
	case s.Score1 > s.Score2:
		return Player1
	case s.Score2 > s.Score1:
		return Player2
	default:
		return NoPlayer
	}
}
