package pong

import (
	"encoding/json"
	"fmt"
)

// BallSnapshot is the wire form of a Ball.
type BallSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Radius float64 `json:"radius"`
	Paused bool    `json:"paused"`
}

// PaddleSnapshot is the wire form of a Paddle.
type PaddleSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DY     float64 `json:"dy"`
}

// Snapshot is the full MatchState serialization carried by gameState messages.
type Snapshot struct {
	Ball             BallSnapshot   `json:"ball"`
	Paddle1          PaddleSnapshot `json:"paddle1"`
	Paddle2          PaddleSnapshot `json:"paddle2"`
	Score1           int            `json:"score1"`
	Score2           int            `json:"score2"`
	GameRunning      bool           `json:"gameRunning"`
	Paused           bool           `json:"paused"`
	WaitingForLaunch bool           `json:"waitingForLaunch"`
	LastScorer       PlayerID       `json:"lastScorer"`
	Winner           PlayerID       `json:"winner"`
}

// Snapshot copies the state into its wire form.
func (s *MatchState) Snapshot() Snapshot {
	return Snapshot{
		Ball: BallSnapshot{
			X: s.Ball.X, Y: s.Ball.Y, DX: s.Ball.DX, DY: s.Ball.DY,
			Radius: s.Ball.Radius, Paused: s.Ball.Paused,
		},
		Paddle1:          paddleSnapshot(s.Paddle1),
		Paddle2:          paddleSnapshot(s.Paddle2),
		Score1:           s.Score1,
		Score2:           s.Score2,
		GameRunning:      s.Running,
		Paused:           s.Paused,
		WaitingForLaunch: s.WaitingForLaunch,
		LastScorer:       s.LastScorer,
		Winner:           s.Winner,
	}
}

// State converts a snapshot back into a MatchState.
func (snap Snapshot) State() MatchState {
	return MatchState{
		Ball: Ball{
			X: snap.Ball.X, Y: snap.Ball.Y, DX: snap.Ball.DX, DY: snap.Ball.DY,
			Radius: snap.Ball.Radius, Paused: snap.Ball.Paused,
		},
		Paddle1:          paddleFromSnapshot(snap.Paddle1),
		Paddle2:          paddleFromSnapshot(snap.Paddle2),
		Score1:           snap.Score1,
		Score2:           snap.Score2,
		Running:          snap.GameRunning,
		Paused:           snap.Paused,
		WaitingForLaunch: snap.WaitingForLaunch,
		LastScorer:       snap.LastScorer,
		Winner:           snap.Winner,
	}
}

// EncodeSnapshot serializes the state to JSON.
func EncodeSnapshot(s *MatchState) ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// DecodeSnapshot parses a JSON snapshot into a MatchState.
func DecodeSnapshot(data []byte) (MatchState, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return MatchState{}, fmt.Errorf("pong: decode snapshot: %w", err)
	}
	return snap.State(), nil
}

func paddleSnapshot(p Paddle) PaddleSnapshot {
	return PaddleSnapshot{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, DY: p.DY}
}

func paddleFromSnapshot(p PaddleSnapshot) Paddle {
	return Paddle{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, DY: p.DY}
}
