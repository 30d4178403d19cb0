package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.pong/host_key.
	HostKeyPath string

	// ServerURL is the match server every SSH session plays on.
	ServerURL string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		ServerURL:   client.DefaultSettings().ServerURL,
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves the terminal client to SSH users.
type SSHServer struct {
	config SSHServerConfig
	game   config.PongConfig
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, game config.PongConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.Default()
	}
	srv := &SSHServer{
		config: cfg,
		game:   game,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".pong", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// teaHandler creates a session model for each SSH session. Settings live in
// memory for the length of the session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	settings := client.NewMemorySettings()
	initial := client.DefaultSettings()
	initial.ServerURL = s.config.ServerURL
	initial.Username = sess.User()
	_ = settings.Save(initial)

	model := NewSessionModel(SessionConfig{
		Game:     s.game,
		Settings: settings,
		Logger:   s.logger.WithPrefix(sess.User()),
	}, pty.Window.Width, pty.Window.Height)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr().String())
		next(sess)
		s.logger.Info("session ended", "user", sess.User(), "remote", sess.RemoteAddr().String())
	}
}

// ListenAndServe serves until Shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "match_server", s.config.ServerURL)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionConfig wires a SessionModel.
type SessionConfig struct {
	Game     config.PongConfig
	Settings client.SettingsStore
	Logger   *log.Logger
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenLocal
	screenOnline
	screenStats
)

// SessionModel is the top-level flow: menu, then local play, online play or
// stats, then back to the menu.
type SessionModel struct {
	cfg      SessionConfig
	settings client.Settings
	width    int
	height   int

	screen sessionScreen
	menu   MenuModel
	local  LocalModel
	online OnlineModel
	stats  StatsModel

	quitting bool
}

// NewSessionModel creates a session starting at the menu.
func NewSessionModel(cfg SessionConfig, width, height int) SessionModel {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	settings := client.DefaultSettings()
	if cfg.Settings != nil {
		loaded, err := cfg.Settings.Load()
		if err != nil {
			cfg.Logger.Warn("settings unreadable, using defaults", "err", err)
		}
		settings = loaded
	}
	return SessionModel{
		cfg:      cfg,
		settings: settings,
		width:    width,
		height:   height,
		menu:     NewMenuModel(cfg.Settings, settings, width, height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = wsm.Width, wsm.Height
	}

	switch m.screen {
	case screenLocal:
		return m.updateLocal(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenStats:
		return m.updateStats(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)
	m.settings = m.menu.Settings()

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.menu.Selected() {
	case MenuLocal:
		m.screen = screenLocal
		m.local = NewLocalModel(m.localConfig(), m.settings.Username, m.width, m.height)
		return m, m.local.Init()
	case MenuOnline:
		m.screen = screenOnline
		m.online = NewOnlineModel(OnlineConfig{
			URL:      m.settings.ServerURL,
			Username: m.settings.Username,
			Game:     m.cfg.Game,
			Logger:   m.cfg.Logger,
		}, m.width, m.height)
		return m, m.online.Init()
	case MenuStats:
		m.screen = screenStats
		url, sync, logger := m.settings.ServerURL, m.cfg.Game.Sync, m.cfg.Logger
		m.stats = NewStatsModel(func(ctx context.Context) (client.StatsReport, error) {
			return client.LoadStats(ctx, url, "", "", sync, logger)
		}, m.width, m.height)
		return m, m.stats.Init()
	}
	return m, cmd
}

// localConfig applies the saved difficulty and paddle size.
func (m SessionModel) localConfig() config.PongConfig {
	cfg := m.cfg.Game
	config.ApplyDifficulty(&cfg.AI, m.settings.Difficulty)
	if m.settings.PaddleHeight > 0 {
		cfg.Paddles.Height = m.settings.PaddleHeight
	}
	return cfg.Validate()
}

func (m SessionModel) updateLocal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.local.Update(msg)
	m.local = next.(LocalModel)
	switch {
	case m.local.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.local.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.online.Update(msg)
	m.online = next.(OnlineModel)
	switch {
	case m.online.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.online.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.stats.Update(msg)
	m.stats = next.(StatsModel)
	switch {
	case m.stats.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.stats.IsGoingBack():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.cfg.Settings, m.settings, m.width, m.height)
	return m, m.menu.Init()
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenLocal:
		return m.local.View()
	case screenOnline:
		return m.online.View()
	case screenStats:
		return m.stats.View()
	}
	return m.menu.View()
}

// RunSession runs the full menu flow in the local terminal.
func RunSession(cfg SessionConfig, width, height int) error {
	p := tea.NewProgram(NewSessionModel(cfg, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
