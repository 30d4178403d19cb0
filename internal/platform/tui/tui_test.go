package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/core"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		key      string
		expected core.Action
		quit     bool
	}{
		{"w", core.ActionUp, false},
		{"s", core.ActionDown, false},
		{" ", core.ActionLaunch, false},
		{"r", core.ActionReady, false},
		{"p", core.ActionPause, false},
		{"esc", core.ActionBack, false},
		{"q", core.ActionQuit, true},
		{"x", core.ActionNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			action, quit := km.MapKey(keyMsg(tt.key))
			if action != tt.expected || quit != tt.quit {
				t.Errorf("MapKey(%q) = %v, %v, expected %v, %v", tt.key, action, quit, tt.expected, tt.quit)
			}
		})
	}
}

func TestHeldDirection(t *testing.T) {
	var h heldDirection
	var down core.InputFrame
	down.Set(core.ActionDown)

	if dir, changed := h.Update(down); dir != 1 || !changed {
		t.Fatalf("Update(down) = %v, %v, expected 1, true", dir, changed)
	}
	for i := 1; i < holdTicks; i++ {
		if dir, changed := h.Update(0); dir != 1 || changed {
			t.Fatalf("tick %d: Update(none) = %v, %v, expected held 1", i, dir, changed)
		}
	}
	if dir, changed := h.Update(0); dir != 0 || !changed {
		t.Errorf("Update() after hold = %v, %v, expected 0, true", dir, changed)
	}
}

func TestDrawMatch(t *testing.T) {
	p := pong.DefaultParams()
	st := pong.NewMatchState(p)
	st.Score1, st.Score2 = 2, 1
	st.Ball.X = 100

	s := core.NewScreen(80, 24)
	DrawMatch(s, st, p, HUD{Left: "guest1", Right: "guest2", Message: "GO", Footer: "help"})
	out := s.String()

	for _, want := range []string{"guest1  2 : 1  guest2", " GO ", "help"} {
		if !strings.Contains(out, want) {
			t.Errorf("DrawMatch output missing %q", want)
		}
	}
	if got := strings.Count(out, string(paddleChar)); got == 0 {
		t.Error("no paddle cells drawn")
	}
	if !strings.ContainsRune(out, ballChar) {
		t.Error("ball not drawn")
	}
}

func TestDrawMatchTooSmall(t *testing.T) {
	s := core.NewScreen(10, 4)
	DrawMatch(s, pong.NewMatchState(pong.DefaultParams()), pong.DefaultParams(), HUD{})
	if !strings.Contains(s.String(), "terminal") {
		t.Errorf("small screen output = %q, expected a size warning", s.String())
	}
}

func TestLocalModelBackAndPause(t *testing.T) {
	m := NewLocalModel(config.DefaultPongConfig(), "guest1", 80, 24)
	m.Init()

	next, _ := m.Update(keyMsg("p"))
	next, _ = next.Update(TickMsg{})
	if !next.(LocalModel).match.State().Paused {
		t.Error("match not paused after P")
	}
	if !strings.Contains(next.View(), "PAUSED") {
		t.Error("View() missing PAUSED banner")
	}

	next, _ = next.Update(keyMsg("esc"))
	if !next.(LocalModel).BackToMenu() {
		t.Error("BackToMenu() = false after Esc")
	}
}

func TestMenuCyclesDifficulty(t *testing.T) {
	store := client.NewMemorySettings()
	settings, _ := store.Load()
	m := NewMenuModel(store, settings, 80, 24)

	for range 3 {
		next, _ := m.Update(keyMsg("s"))
		m = next.(MenuModel)
	}
	next, _ := m.Update(keyMsg("enter"))
	m = next.(MenuModel)

	if got := m.Settings().Difficulty; got != config.DifficultyHard {
		t.Errorf("Difficulty = %v, expected %v", got, config.DifficultyHard)
	}
	if saved, _ := store.Load(); saved.Difficulty != config.DifficultyHard {
		t.Errorf("saved Difficulty = %v, expected %v", saved.Difficulty, config.DifficultyHard)
	}
	if m.Selected() != MenuNone {
		t.Errorf("Selected() = %v, expected MenuNone", m.Selected())
	}
}

func TestMenuSelect(t *testing.T) {
	m := NewMenuModel(nil, client.DefaultSettings(), 80, 24)
	next, _ := m.Update(keyMsg("j"))
	next, _ = next.Update(keyMsg("enter"))
	if got := next.(MenuModel).Selected(); got != MenuOnline {
		t.Errorf("Selected() = %v, expected MenuOnline", got)
	}
}

func TestOnlineModelRollsBackOnDisconnect(t *testing.T) {
	cfg := config.DefaultPongConfig()
	m := NewOnlineModel(OnlineConfig{URL: "ws://127.0.0.1:1/ws", Game: cfg}, 80, 24)
	defer m.Close()

	params := pong.ParamsFromConfig(cfg)
	st := pong.NewMatchState(params)
	st.Running = true
	st.Ball.Paused = false
	st.Ball.DX = 5
	m.syncer.ApplySnapshot(st.Snapshot())
	x := m.syncer.State().Ball.X

	m.syncer.Predict(3)
	if got := m.syncer.State().Ball.X; got == x {
		t.Fatalf("Ball.X after Predict = %v, expected it to move", got)
	}

	next, _ := m.handleEvent(client.Disconnected{})
	if got := next.syncer.State().Ball.X; got != x {
		t.Errorf("Ball.X after disconnect = %v, expected %v", got, x)
	}
	if !next.linkDown {
		t.Error("linkDown = false after disconnect, expected true")
	}

	next, _ = next.handleEvent(client.Connected{Reconnect: true})
	if next.linkDown {
		t.Error("linkDown = true after reconnect, expected false")
	}
}
