package pong

import (
	"math"

	"github.com/vovakirdan/pong-ultimate/internal/config"
)

// CPU steers a paddle toward the ball for local play.
type CPU struct {
	cfg config.AIConfig
}

// NewCPU creates a CPU opponent with the given tuning.
func NewCPU(cfg config.AIConfig) *CPU {
	return &CPU{cfg: cfg}
}

// Steer sets the velocity of the seat's paddle for this tick. The CPU only
// chases the ball while it is moving toward its side; otherwise it drifts back
// to the middle.
func (c *CPU) Steer(e *Engine, s *MatchState, id PlayerID) {
	pd := s.Paddle(id)
	if pd == nil {
		return
	}
	p := e.Params()

	incoming := (id == Player2 && s.Ball.DX > 0) || (id == Player1 && s.Ball.DX < 0)
	target := p.FieldH / 2
	if incoming && !s.Ball.Paused {
		if y, ok := e.PredictBallY(s.Ball, pd.X+pd.Width/2); ok {
			target = y
		} else {
			target = s.Ball.Y
		}
	}

	human := id.Opponent()
	speed := p.PaddleSpeed * c.cfg.CPUSkill(s.Score(human), s.Score(id))

	diff := target - (pd.Y + pd.Height/2)
	if math.Abs(diff) <= c.cfg.ReactionZone {
		pd.DY = 0
		return
	}
	pd.DY = math.Copysign(math.Min(speed, math.Abs(diff)), diff)
}
