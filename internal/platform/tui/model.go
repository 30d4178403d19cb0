package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/core"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

// flashTicks is how long a goal banner stays up.
const flashTicks = 60

// LocalModel plays a match against the CPU.
type LocalModel struct {
	match    *client.LocalMatch
	params   pong.Params
	screen   *core.Screen
	keys     *KeyMapper
	frame    core.InputFrame
	held     heldDirection
	tickRate int
	player   string

	flash      string
	flashLeft  int
	quitting   bool
	backToMenu bool
	quitOnBack bool // standalone program: Esc exits
}

// NewLocalModel creates a local match sized to the terminal.
func NewLocalModel(cfg config.PongConfig, player string, width, height int) LocalModel {
	if player == "" {
		player = "You"
	}
	return LocalModel{
		match:    client.NewLocalMatch(cfg, time.Now().UnixNano()),
		params:   pong.ParamsFromConfig(cfg),
		screen:   core.NewScreen(width, height),
		keys:     NewKeyMapper(),
		tickRate: cfg.Server.TickRate,
		player:   player,
	}
}

// Init serves the first ball and starts the tick loop.
func (m LocalModel) Init() tea.Cmd {
	m.match.Start()
	return tickCmd(m.tickRate)
}

// Update handles messages and updates the model state.
func (m LocalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m LocalModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.MapKeyToFrame(msg, &m.frame) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.frame.Has(core.ActionBack) {
		m.backToMenu = true
		if m.quitOnBack {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LocalModel) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu {
		return m, nil
	}

	switch {
	case m.frame.Has(core.ActionRestart) && m.match.Over():
		m.match.Start()
		m.held.Reset()
		m.flash = ""
	case m.frame.Has(core.ActionPause):
		m.match.TogglePause()
	}

	dir, changed := m.held.Update(m.frame)
	if changed {
		m.match.Move(dir)
	}
	if m.frame.Has(core.ActionLaunch) {
		m.match.Launch()
	}

	ev := m.match.Step(1)
	switch {
	case ev.Winner != pong.NoPlayer:
		m.flash, m.flashLeft = "", 0
	case ev.Goal == client.HumanSeat:
		m.flash, m.flashLeft = "GOAL!", flashTicks
	case ev.Goal == client.CPUSeat:
		m.flash, m.flashLeft = "CPU scores", flashTicks
	}
	if m.flashLeft > 0 {
		m.flashLeft--
		if m.flashLeft == 0 {
			m.flash = ""
		}
	}

	m.frame.Clear()
	return m, tickCmd(m.tickRate)
}

// message picks the banner for the current state.
func (m LocalModel) message() string {
	st := m.match.State()
	switch {
	case st.Winner == client.HumanSeat:
		return "YOU WIN  -  N: new match"
	case st.Winner == client.CPUSeat:
		return "CPU WINS  -  N: new match"
	case st.Paused:
		return "PAUSED"
	case m.flash != "":
		return m.flash
	case st.WaitingForLaunch && st.LastScorer == client.CPUSeat:
		return "SPACE to serve"
	}
	return ""
}

// View renders the current state to a string for display.
func (m LocalModel) View() string {
	if m.quitting {
		return ""
	}
	DrawMatch(m.screen, m.match.State(), m.params, HUD{
		Left:    m.player,
		Right:   "CPU",
		Message: m.message(),
		Footer:  "W/S: move  Space: serve  P: pause  Esc: menu  Q: quit",
	})
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m LocalModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m LocalModel) BackToMenu() bool {
	return m.backToMenu
}

// RunLocal runs a local match as its own program.
func RunLocal(cfg config.PongConfig, player string, width, height int) error {
	m := NewLocalModel(cfg, player, width, height)
	m.quitOnBack = true
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
