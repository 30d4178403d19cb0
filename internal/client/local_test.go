package client

import (
	"testing"
	"time"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

func newTestLocal() *LocalMatch {
	cfg := config.DefaultPongConfig()
	cfg.AI.ServeDelay = 50 * time.Millisecond // 3 ticks at 60Hz
	m := NewLocalMatch(cfg, 1)
	m.Start()
	return m
}

// ballOut places the ball just past the edge the scorer attacks.
func ballOut(m *LocalMatch, scorer pong.PlayerID) {
	p := m.engine.Params()
	m.state.Ball = pong.Ball{X: -p.BallRadius - 1, Y: p.FieldH / 2, DX: -5, Radius: p.BallRadius}
	if scorer == HumanSeat {
		m.state.Ball.X, m.state.Ball.DX = p.FieldW+p.BallRadius+1, 5
	}
}

func TestLocalStartServes(t *testing.T) {
	m := newTestLocal()
	s := m.State()
	if !s.Running || s.Ball.Paused || s.Ball.DX == 0 {
		t.Errorf("after Start() running=%v paused=%v dx=%v, expected a live ball", s.Running, s.Ball.Paused, s.Ball.DX)
	}
	if m.Launch() {
		t.Error("Launch() during a rally = true, expected false")
	}
}

func TestLocalCPUGoalHumanServes(t *testing.T) {
	m := newTestLocal()
	ballOut(m, CPUSeat)

	ev := m.Step(1)
	if ev.Goal != CPUSeat {
		t.Fatalf("Step().Goal = %v, expected %v", ev.Goal, CPUSeat)
	}
	s := m.State()
	if s.Score2 != 1 || !s.WaitingForLaunch || s.LastScorer != CPUSeat {
		t.Fatalf("state = %d-%d waiting=%v last=%v", s.Score1, s.Score2, s.WaitingForLaunch, s.LastScorer)
	}

	for range 10 {
		if m.Step(1).Served {
			t.Fatal("CPU served after its own goal")
		}
	}
	if !m.Launch() {
		t.Fatal("Launch() = false, expected true")
	}
	if dx := m.State().Ball.DX; dx <= 0 {
		t.Errorf("serve dx = %v, expected toward the CPU side", dx)
	}
}

func TestLocalHumanGoalCPUServes(t *testing.T) {
	m := newTestLocal()
	ballOut(m, HumanSeat)
	m.Step(1)

	if m.Launch() {
		t.Error("human Launch() after own goal = true, expected false")
	}

	served := false
	for i := 0; i < 10 && !served; i++ {
		served = m.Step(1).Served
	}
	if !served {
		t.Fatal("CPU never served")
	}
	if dx := m.State().Ball.DX; dx >= 0 {
		t.Errorf("CPU serve dx = %v, expected toward the human side", dx)
	}
}

func TestLocalWin(t *testing.T) {
	m := newTestLocal()
	m.state.Score1 = 4
	ballOut(m, HumanSeat)

	ev := m.Step(1)
	if ev.Winner != HumanSeat {
		t.Errorf("Step().Winner = %v, expected %v", ev.Winner, HumanSeat)
	}
	if !m.Over() || m.State().Running {
		t.Error("match still running after the winning point")
	}
	if ev := m.Step(1); ev != (LocalEvents{}) {
		t.Errorf("Step() after the end = %+v, expected nothing", ev)
	}
}

func TestLocalPauseAndMove(t *testing.T) {
	m := newTestLocal()
	m.TogglePause()
	x := m.State().Ball.X
	m.Step(1)
	if m.State().Ball.X != x {
		t.Error("ball moved while paused")
	}
	m.TogglePause()

	y := m.State().Paddle1.Y
	m.Move(1)
	m.Step(1)
	if got := m.State().Paddle1.Y; got <= y {
		t.Errorf("Paddle1.Y = %v, expected below %v", got, y)
	}

	m.SetPaddleY(0)
	if got := m.State().Paddle1.Y; got != 0 {
		t.Errorf("Paddle1.Y after SetPaddleY(0) = %v, expected 0", got)
	}
}
