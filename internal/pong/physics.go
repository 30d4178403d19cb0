package pong

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/pong-ultimate/internal/core"
)

// maxPredictBounces bounds trajectory prediction.
const maxPredictBounces = 10

// StepResult reports what happened during one Advance call.
type StepResult struct {
	WallBounce bool
	PaddleHit  PlayerID // paddle the ball bounced off, if any
	Goal       PlayerID // seat that scored, if any
}

// Engine advances a MatchState. It has no hidden state and no randomness
// except in Serve, where the caller supplies the source.
type Engine struct {
	p Params
}

// NewEngine creates an engine for the given match constants.
func NewEngine(p Params) *Engine {
	return &Engine{p: p}
}

// Params returns the engine's match constants.
func (e *Engine) Params() Params {
	return e.p
}

// Advance moves paddles and ball by dt ticks and resolves collisions.
// A goal is reported exactly once: the ball is paused as soon as it leaves the
// field, so further calls do nothing until the caller re-centers and serves.
func (e *Engine) Advance(s *MatchState, dt float64) StepResult {
	var res StepResult

	e.movePaddle(&s.Paddle1, dt)
	e.movePaddle(&s.Paddle2, dt)

	b := &s.Ball
	if b.Paused {
		return res
	}

	b.X += b.DX * dt
	b.Y += b.DY * dt

	res.WallBounce = e.bounceWalls(b)

	switch {
	case b.DX < 0 && e.hitPaddle(b, &s.Paddle1, 1):
		res.PaddleHit = Player1
	case b.DX > 0 && e.hitPaddle(b, &s.Paddle2, -1):
		res.PaddleHit = Player2
	}

	switch {
	case b.X+b.Radius < 0:
		res.Goal = Player2
	case b.X-b.Radius > e.p.FieldW:
		res.Goal = Player1
	}
	if res.Goal != NoPlayer {
		b.Paused = true
	}
	return res
}

// movePaddle applies velocity and clamps to the field. A paddle that reaches
// an edge stops.
func (e *Engine) movePaddle(pd *Paddle, dt float64) {
	pd.Y += pd.DY * dt
	maxY := e.p.FieldH - pd.Height
	if pd.Y <= 0 || pd.Y >= maxY {
		pd.Y = core.ClampF(pd.Y, 0, maxY)
		if (pd.Y == 0 && pd.DY < 0) || (pd.Y == maxY && pd.DY > 0) {
			pd.DY = 0
		}
	}
}

func (e *Engine) bounceWalls(b *Ball) bool {
	switch {
	case b.Y-b.Radius <= 0:
		b.Y = b.Radius
		b.DY = math.Abs(b.DY)
		return true
	case b.Y+b.Radius >= e.p.FieldH:
		b.Y = e.p.FieldH - b.Radius
		b.DY = -math.Abs(b.DY)
		return true
	}
	return false
}

// hitPaddle resolves a ball/paddle collision. away is the sign dx must have
// after the hit: +1 for the left paddle, -1 for the right one.
func (e *Engine) hitPaddle(b *Ball, pd *Paddle, away float64) bool {
	paddleBox := core.NewBox(pd.X, pd.Y, pd.Width, pd.Height)
	if !core.BoxAround(b.X, b.Y, b.Radius).Intersects(paddleBox) {
		return false
	}

	before := core.Hypot(b.DX, b.DY)

	b.DX = away * math.Abs(b.DX)
	if away > 0 {
		b.X = pd.X + pd.Width + b.Radius
	} else {
		b.X = pd.X - b.Radius
	}

	half := pd.Height / 2
	offset := core.ClampF((b.Y-paddleBox.CenterY())/half, -1, 1)
	b.DY += offset * e.p.SpinFactor

	// Spin can shorten the vector; the rally never slows down on a hit.
	speed := math.Min(math.Max(core.Hypot(b.DX, b.DY), before)*e.p.SpeedGrowth, e.p.MaxSpeed)
	scale := speed / core.Hypot(b.DX, b.DY)
	b.DX *= scale
	b.DY *= scale
	return true
}

// ServeDirection returns the horizontal direction of the serve after lastScorer
// scored. The non-scorer serves, so the ball travels toward the scorer's side:
// lastScorer 1 yields -1.
func ServeDirection(lastScorer PlayerID) float64 {
	if lastScorer == Player1 {
		return -1
	}
	return 1
}

// Serve puts a centered ball in motion. dy is drawn from rng once; in a
// networked match only the server calls this.
func (e *Engine) Serve(s *MatchState, direction float64, rng *rand.Rand) {
	if direction == 0 {
		direction = 1
	}
	s.Ball.DX = core.Sign(direction) * e.p.ServeSpeed
	s.Ball.DY = (rng.Float64() - 0.5) * e.p.ServeSpread
	s.Ball.Paused = false
	s.WaitingForLaunch = false
}

// SetPaddleDirection sets a paddle's velocity from a -1/0/+1 intent.
func (e *Engine) SetPaddleDirection(s *MatchState, id PlayerID, dir float64) {
	if pd := s.Paddle(id); pd != nil {
		pd.DY = core.Sign(dir) * e.p.PaddleSpeed
	}
}

// SetPaddlePosition moves a paddle directly (pointer input) and stops it.
func (e *Engine) SetPaddlePosition(s *MatchState, id PlayerID, y float64) {
	if pd := s.Paddle(id); pd != nil {
		pd.Y = core.ClampF(y, 0, e.p.FieldH-pd.Height)
		pd.DY = 0
	}
}

// PredictBallY estimates where the ball will cross targetX, reflecting off the
// walls up to a fixed number of times. ok is false when the ball is at rest or
// moving away from targetX.
func (e *Engine) PredictBallY(b Ball, targetX float64) (y float64, ok bool) {
	if b.Paused || b.DX == 0 || (targetX-b.X)*b.DX < 0 {
		return b.Y, false
	}

	x, yy, dy := b.X, b.Y, b.DY
	top, bottom := b.Radius, e.p.FieldH-b.Radius
	for range maxPredictBounces {
		t := (targetX - x) / b.DX
		ny := yy + dy*t
		switch {
		case ny < top && dy < 0:
			tw := (top - yy) / dy
			x += b.DX * tw
			yy = top
			dy = -dy
		case ny > bottom && dy > 0:
			tw := (bottom - yy) / dy
			x += b.DX * tw
			yy = bottom
			dy = -dy
		default:
			return ny, true
		}
	}
	return core.ClampF(yy, top, bottom), true
}
