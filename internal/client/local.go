package client

import (
	"math/rand"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

// Seats in a local match.
const (
	HumanSeat = pong.Player1
	CPUSeat   = pong.Player2
)

// LocalEvents reports what happened during one Step.
type LocalEvents struct {
	Hit    bool
	Goal   pong.PlayerID
	Served bool
	Winner pong.PlayerID
}

// LocalMatch runs the physics engine on the client for single-player play
// against the CPU. The human holds the left paddle.
type LocalMatch struct {
	engine *pong.Engine
	cpu    *pong.CPU
	rng    *rand.Rand
	state  pong.MatchState

	winScore   int
	serveTicks int // CPU serve delay in ticks
	serveWait  int
}

// NewLocalMatch creates a stopped match. Call Start to serve the first ball.
func NewLocalMatch(cfg config.PongConfig, seed int64) *LocalMatch {
	params := pong.ParamsFromConfig(cfg)
	tickRate := max(1, cfg.Server.TickRate)
	return &LocalMatch{
		engine:     pong.NewEngine(params),
		cpu:        pong.NewCPU(cfg.AI),
		rng:        rand.New(rand.NewSource(seed)),
		state:      pong.NewMatchState(params),
		winScore:   max(1, cfg.Gameplay.WinningScore),
		serveTicks: int(cfg.AI.ServeDelay.Seconds() * float64(tickRate)),
	}
}

// Start resets scores and serves toward a random side.
func (m *LocalMatch) Start() {
	m.state.Reset(m.engine.Params())
	m.state.Running = true
	m.serveWait = 0
	dir := 1.0
	if m.rng.Intn(2) == 0 {
		dir = -1
	}
	m.engine.Serve(&m.state, dir, m.rng)
}

// State returns a copy of the match.
func (m *LocalMatch) State() pong.MatchState {
	return m.state
}

// Over reports whether somebody has won.
func (m *LocalMatch) Over() bool {
	return m.state.Winner != pong.NoPlayer
}

// Move sets the human paddle's direction: -1 up, 0 stop, +1 down.
func (m *LocalMatch) Move(dir float64) {
	m.engine.SetPaddleDirection(&m.state, HumanSeat, dir)
}

// SetPaddleY places the human paddle directly.
func (m *LocalMatch) SetPaddleY(y float64) {
	m.engine.SetPaddlePosition(&m.state, HumanSeat, y)
}

// TogglePause pauses or resumes a running match.
func (m *LocalMatch) TogglePause() {
	if m.state.Running {
		m.state.Paused = !m.state.Paused
	}
}

// Launch serves after the CPU scored. It reports whether the serve happened.
func (m *LocalMatch) Launch() bool {
	if !m.canServe(HumanSeat) {
		return false
	}
	m.engine.Serve(&m.state, pong.ServeDirection(m.state.LastScorer), m.rng)
	return true
}

func (m *LocalMatch) canServe(seat pong.PlayerID) bool {
	return m.state.Running && !m.state.Paused && m.state.WaitingForLaunch &&
		m.state.LastScorer == seat.Opponent()
}

// Step advances the match by dt ticks.
func (m *LocalMatch) Step(dt float64) LocalEvents {
	var ev LocalEvents
	if !m.state.Running || m.state.Paused {
		return ev
	}

	m.cpu.Steer(m.engine, &m.state, CPUSeat)

	if m.canServe(CPUSeat) {
		m.serveWait++
		if m.serveWait >= m.serveTicks {
			m.serveWait = 0
			m.engine.Serve(&m.state, pong.ServeDirection(m.state.LastScorer), m.rng)
			ev.Served = true
		}
	}

	res := m.engine.Advance(&m.state, dt)
	ev.Hit = res.PaddleHit != pong.NoPlayer
	if res.Goal == pong.NoPlayer {
		return ev
	}

	ev.Goal = res.Goal
	score := m.state.AddPoint(res.Goal)
	m.state.LastScorer = res.Goal
	m.state.CenterBall(m.engine.Params())
	m.state.WaitingForLaunch = true
	m.serveWait = 0
	if score >= m.winScore {
		m.state.Winner = res.Goal
		m.state.Running = false
		m.state.WaitingForLaunch = false
		ev.Winner = res.Goal
	}
	return ev
}
