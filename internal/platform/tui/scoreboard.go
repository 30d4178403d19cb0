package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pong-ultimate/internal/client"
)

// StatsKeyMap defines the key bindings for the stats screen.
type StatsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k StatsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k StatsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Refresh},
		{k.Back, k.Quit},
	}
}

// DefaultStatsKeyMap returns default key bindings.
func DefaultStatsKeyMap() StatsKeyMap {
	return StatsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// StatsLoader fetches the report shown by the stats screen.
type StatsLoader func(ctx context.Context) (client.StatsReport, error)

type statsLoadedMsg struct {
	report client.StatsReport
	err    error
}

// StatsModel shows the user's record and the server's recent matches.
type StatsModel struct {
	load     StatsLoader
	report   client.StatsReport
	err      error
	loading  bool
	table    table.Model
	help     help.Model
	keys     StatsKeyMap
	width    int
	height   int
	quitting bool

	goingBack  bool
	quitOnBack bool
}

// NewStatsModel creates a stats screen that loads its data on Init.
func NewStatsModel(load StatsLoader, width, height int) StatsModel {
	h := help.New()
	h.ShowAll = false

	m := StatsModel{
		load:    load,
		loading: true,
		keys:    DefaultStatsKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	return m
}

// createTable creates a new table sized to the window.
func (m *StatsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Player 1", Width: 14},
		{Title: "Score", Width: 7},
		{Title: "Player 2", Width: 14},
		{Title: "Result", Width: 16},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-12)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// updateTableRows fills the table from the loaded matches.
func (m *StatsModel) updateTableRows() {
	rows := make([]table.Row, len(m.report.Matches))
	for i, r := range m.report.Matches {
		rows[i] = table.Row{
			r.Player1,
			fmt.Sprintf("%d-%d", r.Score1, r.Score2),
			r.Player2,
			matchOutcome(r),
			r.PlayedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func matchOutcome(r client.MatchSummary) string {
	if r.Winner == "" {
		return r.EndReason
	}
	return r.Winner + " won"
}

func (m StatsModel) fetch() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		rep, err := load(context.Background())
		return statsLoadedMsg{report: rep, err: err}
	}
}

// Init starts loading.
func (m StatsModel) Init() tea.Cmd {
	return m.fetch()
}

// Update handles messages for the stats screen.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		m.report, m.err = msg.report, msg.err
		m.updateTableRows()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.quitOnBack {
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the stats screen.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("STATS", m.width)))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(centerText("Loading...", m.width))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(centerText(noticeStyle.Render(m.err.Error()), m.width))
		b.WriteString("\n")
	default:
		if st := m.report.Stats; st != nil {
			line := fmt.Sprintf("%s  -  wins %d  losses %d  games %d  win rate %s",
				m.report.Username, st.Wins, st.Losses, st.Games, winRate(*st))
			b.WriteString(centerText(line, m.width))
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderTableContent())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m StatsModel) renderTableContent() string {
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.report.Matches) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(1, 4)
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tableStyle.Render(emptyStyle.Render("No online matches recorded yet.")))
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tableStyle.Render(m.table.View()))
}

// IsGoingBack returns true if user wants to go back to menu.
func (m StatsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m StatsModel) IsQuitting() bool {
	return m.quitting
}

// RunStats runs the stats screen as its own program.
func RunStats(load StatsLoader, width, height int) error {
	m := NewStatsModel(load, width, height)
	m.quitOnBack = true
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
