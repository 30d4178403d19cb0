package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/core"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// OnlineState represents the current step of the online flow.
type OnlineState int

const (
	OnlineStateConnecting OnlineState = iota
	OnlineStateLogin                  // login or register form
	OnlineStateLobby                  // seated, toggling ready
	OnlineStateMatch                  // countdown and play
	OnlineStateEnded                  // gameEnd received
	OnlineStateOffline                // connect failed or reconnects exhausted
)

// OnlineConfig configures an online session.
type OnlineConfig struct {
	URL      string
	Username string
	Password string // with Username set, the form is submitted on connect
	Game     config.PongConfig
	Logger   *log.Logger
}

type eventMsg struct{ ev client.Event }

type connectResultMsg struct{ err error }

const eventBuffer = 256

// OnlineModel drives one connection to the match server.
type OnlineModel struct {
	state OnlineState

	net    *client.NetworkClient
	syncer *client.SyncManager
	events chan client.Event
	done   chan struct{}
	once   *sync.Once
	unsub  func()

	params   pong.Params
	tickRate int
	screen   *core.Screen
	keys     *KeyMapper
	frame    core.InputFrame
	held     heldDirection
	ticking  bool
	linkDown bool // no prediction until the link is back
	width    int
	height   int

	inputs   [2]textinput.Model
	focus    int
	register bool
	autoLog  bool

	username string
	stats    *protocol.Stats
	seat     pong.PlayerID
	lobby    protocol.LobbyUpdate
	banner   string
	notice   string
	result   *protocol.GameEnd
	latency  string

	quitting   bool
	backToMenu bool
	quitOnBack bool
}

// NewOnlineModel creates the model and its network client. Nothing is dialed
// until Init.
func NewOnlineModel(cfg OnlineConfig, width, height int) OnlineModel {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	bus := client.NewBus(logger)
	events := make(chan client.Event, eventBuffer)
	unsub := bus.Subscribe(func(e client.Event) {
		select {
		case events <- e:
		default:
			logger.Warn("ui event queue full, dropping", "event", fmt.Sprintf("%T", e))
		}
	})

	params := pong.ParamsFromConfig(cfg.Game)
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 32
	user.SetValue(cfg.Username)
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 64
	pass.EchoMode = textinput.EchoPassword
	pass.SetValue(cfg.Password)

	return OnlineModel{
		state:    OnlineStateConnecting,
		net:      client.NewNetworkClient(cfg.URL, cfg.Game.Sync, bus, logger),
		syncer:   client.NewSyncManager(cfg.Game.Sync, params, client.RoleFollower, pong.NoPlayer),
		events:   events,
		done:     make(chan struct{}),
		once:     new(sync.Once),
		unsub:    unsub,
		params:   params,
		tickRate: cfg.Game.Server.TickRate,
		screen:   core.NewScreen(width, height),
		keys:     NewKeyMapper(),
		width:    width,
		height:   height,
		inputs:   [2]textinput.Model{user, pass},
		autoLog:  cfg.Username != "" && cfg.Password != "",
	}
}

// Init dials the server and starts listening for client events.
func (m OnlineModel) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.waitForEvent(), textinput.Blink)
}

func (m OnlineModel) connect() tea.Cmd {
	net := m.net
	return func() tea.Msg {
		return connectResultMsg{err: net.Connect(context.Background())}
	}
}

// waitForEvent returns a command that waits for the next client event.
func (m OnlineModel) waitForEvent() tea.Cmd {
	events, done := m.events, m.done
	return func() tea.Msg {
		select {
		case ev := <-events:
			return eventMsg{ev: ev}
		case <-done:
			return nil
		}
	}
}

// Close drops the connection.
func (m OnlineModel) Close() {
	m.once.Do(func() {
		m.unsub()
		m.net.Close()
		close(m.done)
	})
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case connectResultMsg:
		return m.handleConnectResult(msg)
	case eventMsg:
		next, cmd := m.handleEvent(msg.ev)
		return next, tea.Batch(cmd, next.waitForEvent())
	case TickMsg:
		return m.handleTick()
	}

	if m.state == OnlineStateLogin {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m OnlineModel) handleConnectResult(msg connectResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = OnlineStateOffline
		m.notice = msg.err.Error()
		return m, nil
	}
	m.state = OnlineStateLogin
	m.notice = ""
	if m.autoLog {
		m.autoLog = false
		m.submit()
	}
	return m, nil
}

func (m OnlineModel) handleEvent(ev client.Event) (OnlineModel, tea.Cmd) {
	switch ev := ev.(type) {
	case client.Connected:
		m.linkDown = false
		if ev.Reconnect {
			m.notice = "reconnected"
		}
	case client.Disconnected:
		// Drop whatever was predicted past the last server snapshot.
		m.linkDown = true
		m.syncer.RollbackTo(time.Now())
		m.notice = "connection lost"
	case client.Reconnecting:
		m.notice = fmt.Sprintf("reconnecting (attempt %d, %s)...", ev.Attempt, ev.Delay)
	case client.ReconnectFailed:
		m.state = OnlineStateOffline
		m.notice = "could not reconnect to the server"
		m.ticking = false
	case client.LatencyMeasured:
		m.syncer.SetLatency(ev.RTT)
		m.latency = ev.RTT.Round(time.Millisecond).String()
	case client.MessageReceived:
		return m.handleServerMessage(ev.Msg)
	}
	return m, nil
}

func (m OnlineModel) handleServerMessage(msg protocol.ServerMessage) (OnlineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case protocol.LoginResult:
		if !msg.Success {
			m.notice = msg.Message
			return m, nil
		}
		m.username = msg.Username
		m.stats = msg.Stats
		m.state = OnlineStateLobby
		m.notice = ""
		m.net.Send(protocol.JoinLobby{})
	case protocol.RegisterResult:
		m.notice = msg.Message
		if msg.Success {
			m.register = false
		}
	case protocol.PlayerIDAssigned:
		m.seat = msg.ID
		m.syncer.SetSeat(msg.ID)
	case protocol.LobbyUpdate:
		m.lobby = msg
	case protocol.Countdown:
		if m.state != OnlineStateMatch {
			m.syncer.Reset()
		}
		m.state = OnlineStateMatch
		m.result = nil
		m.banner = strings.ToUpper(msg.Count.String())
		cmd := m.startTicking()
		return m, cmd
	case protocol.GameStart:
		m.state = OnlineStateMatch
		m.banner = ""
		cmd := m.startTicking()
		return m, cmd
	case protocol.GameState:
		m.syncer.ApplySnapshot(msg.State)
	case protocol.Goal:
		if msg.Scorer == m.seat {
			m.banner = "GOAL!"
		} else {
			m.banner = "opponent scores"
		}
	case protocol.WaitingForLaunch:
		if msg.LastScorer == m.seat {
			m.banner = "waiting for opponent to serve"
		} else {
			m.banner = "SPACE to serve"
		}
	case protocol.BallLaunched:
		m.banner = ""
	case protocol.GameEnd:
		m.state = OnlineStateEnded
		m.result = &msg
		m.ticking = false
		m.held.Reset()
		m.net.Send(protocol.GetStats{})
	case protocol.PlayerLeft:
		m.notice = "opponent left"
		if m.state == OnlineStateMatch {
			m.state = OnlineStateLobby
			m.ticking = false
			m.banner = ""
		}
	case protocol.UserStats:
		stats := msg.Stats
		m.stats = &stats
	case protocol.Error:
		m.notice = msg.Message
	}
	return m, nil
}

func (m *OnlineModel) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tickCmd(m.tickRate)
}

func (m OnlineModel) handleTick() (tea.Model, tea.Cmd) {
	if !m.ticking || m.state != OnlineStateMatch {
		m.ticking = false
		return m, nil
	}

	if dir, changed := m.held.Update(m.frame); changed {
		var msg protocol.ClientMessage = protocol.InputStop{}
		switch {
		case dir < 0:
			msg = protocol.Input{Input: protocol.DirectionUp}
		case dir > 0:
			msg = protocol.Input{Input: protocol.DirectionDown}
		}
		if m.syncer.AllowAction(msg) {
			m.syncer.MoveOwnPaddle(dir)
			m.net.Send(msg)
		}
	}
	if m.frame.Has(core.ActionLaunch) && m.syncer.AllowAction(protocol.LaunchBall{}) {
		m.net.Send(protocol.LaunchBall{})
	}

	if !m.linkDown {
		m.syncer.Predict(1)
	}
	m.frame.Clear()
	return m, tickCmd(m.tickRate)
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case OnlineStateLogin:
		return m.handleLoginKey(msg)
	case OnlineStateMatch:
		if m.keys.MapKeyToFrame(msg, &m.frame) {
			return m.quit()
		}
		if m.frame.Has(core.ActionBack) {
			return m.leave()
		}
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		return m.quit()
	}
	switch m.state {
	case OnlineStateLobby, OnlineStateEnded:
		switch action {
		case core.ActionReady:
			m.state = OnlineStateLobby
			m.net.Send(protocol.PlayerReady{Ready: !m.ownReady()})
		case core.ActionConfirm:
			m.state = OnlineStateLobby
			m.result = nil
			m.net.Send(protocol.GetStats{})
		case core.ActionBack:
			return m.leave()
		}
	case OnlineStateOffline, OnlineStateConnecting:
		if action == core.ActionBack {
			return m.back()
		}
		if action == core.ActionConfirm && m.state == OnlineStateOffline {
			m.state = OnlineStateConnecting
			m.notice = ""
			return m, m.connect()
		}
	}
	return m, nil
}

func (m OnlineModel) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.back()
	case "tab", "shift+tab", "up", "down":
		m.inputs[m.focus].Blur()
		m.focus = 1 - m.focus
		return m, m.inputs[m.focus].Focus()
	case "ctrl+r":
		m.register = !m.register
		m.notice = ""
		return m, nil
	case "enter":
		if m.focus == 0 {
			m.inputs[0].Blur()
			m.focus = 1
			return m, m.inputs[1].Focus()
		}
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit sends the form as a login or registration.
func (m *OnlineModel) submit() {
	user := strings.TrimSpace(m.inputs[0].Value())
	pass := m.inputs[1].Value()
	if user == "" || pass == "" {
		m.notice = "enter a username and password"
		return
	}
	if m.register {
		m.net.Send(protocol.Register{Username: user, Password: pass})
		return
	}
	m.net.Send(protocol.Login{Username: user, Password: pass})
}

func (m OnlineModel) ownReady() bool {
	switch m.seat {
	case pong.Player1:
		return m.lobby.Player1Ready
	case pong.Player2:
		return m.lobby.Player2Ready
	}
	return false
}

func (m OnlineModel) leave() (tea.Model, tea.Cmd) {
	m.net.Send(protocol.LeaveLobby{})
	m.ticking = false
	return m.back()
}

func (m OnlineModel) back() (tea.Model, tea.Cmd) {
	m.backToMenu = true
	m.Close()
	if m.quitOnBack {
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateMatch:
		return m.viewMatch()
	case OnlineStateLogin:
		return m.viewLogin()
	case OnlineStateLobby, OnlineStateEnded:
		return m.viewLobby()
	case OnlineStateOffline:
		return m.frameLines("OFFLINE", "", "Enter: retry  |  Esc: back")
	}
	return m.frameLines("CONNECTING", "Contacting server...", "Esc: back")
}

func (m OnlineModel) frameLines(title, body, help string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	if body != "" {
		for _, line := range strings.Split(body, "\n") {
			b.WriteString(centerText(line, m.width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(centerText(noticeStyle.Render(m.notice), m.width))
		b.WriteString("\n\n")
	}
	b.WriteString(centerText(dimStyle.Render(help), m.width))
	return b.String()
}

func (m OnlineModel) viewLogin() string {
	title, action := "LOGIN", "log in"
	if m.register {
		title, action = "REGISTER", "create account"
	}
	body := m.inputs[0].View() + "\n" + m.inputs[1].View()
	return m.frameLines(title, body,
		fmt.Sprintf("Enter: %s  |  Tab: next field  |  Ctrl+R: login/register  |  Esc: back", action))
}

func (m OnlineModel) viewLobby() string {
	var body strings.Builder
	body.WriteString(fmt.Sprintf("Signed in as %s", m.username))
	if m.stats != nil {
		body.WriteString(fmt.Sprintf("  (%s)", formatRecord(*m.stats)))
	}
	body.WriteString("\n\n")
	body.WriteString(seatLine(1, m.lobby.Player1, m.lobby.Player1Name, m.lobby.Player1Ready, m.seat == pong.Player1))
	body.WriteString("\n")
	body.WriteString(seatLine(2, m.lobby.Player2, m.lobby.Player2Name, m.lobby.Player2Ready, m.seat == pong.Player2))

	title := fmt.Sprintf("LOBBY  %d/2", m.lobby.PlayersCount)
	if m.state == OnlineStateEnded && m.result != nil {
		title = "MATCH OVER"
		outcome := "You lost"
		if m.result.Winner == m.seat {
			outcome = "You won"
		}
		body.WriteString(fmt.Sprintf("\n\n%s  %d : %d", outcome,
			m.result.FinalScore.Player1, m.result.FinalScore.Player2))
	}
	return m.frameLines(title, body.String(), "R: toggle ready  |  Enter: refresh stats  |  Esc: leave")
}

func seatLine(n int, taken bool, name string, ready, you bool) string {
	switch {
	case !taken:
		return fmt.Sprintf("P%d  (empty)", n)
	case you:
		name += " (you)"
	}
	state := "not ready"
	if ready {
		state = "READY"
	}
	return fmt.Sprintf("P%d  %-20s %s", n, name, state)
}

func (m OnlineModel) viewMatch() string {
	st := m.syncer.State()
	footer := "W/S: move  Space: serve  Esc: leave"
	if m.latency != "" {
		footer += "  |  rtt " + m.latency
	}
	if m.notice != "" {
		footer += "  |  " + m.notice
	}
	DrawMatch(m.screen, st, m.params, HUD{
		Left:    m.lobby.Player1Name,
		Right:   m.lobby.Player2Name,
		Message: m.banner,
		Footer:  footer,
	})
	return RenderScreen(m.screen)
}

// formatRecord renders wins, losses and win rate.
func formatRecord(s protocol.Stats) string {
	return fmt.Sprintf("%dW %dL, %s", s.Wins, s.Losses, winRate(s))
}

func winRate(s protocol.Stats) string {
	if s.Games == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(s.Wins)/float64(s.Games))
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// RunOnline runs the online flow as its own program.
func RunOnline(cfg OnlineConfig, width, height int) error {
	m := NewOnlineModel(cfg, width, height)
	m.quitOnBack = true
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
