package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
)

// MenuChoice is what the user picked from the main menu.
type MenuChoice int

const (
	MenuNone MenuChoice = iota
	MenuLocal
	MenuOnline
	MenuStats
	MenuDifficulty // cycles in place, never returned by Selected
	MenuQuit
)

var difficulties = []config.DifficultyPreset{
	config.DifficultyEasy,
	config.DifficultyNormal,
	config.DifficultyHard,
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items     []MenuChoice
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	settings  client.Settings
	store     client.SettingsStore
	notice    string
	selected  MenuChoice
	quitting  bool
}

// NewMenuModel creates a new menu model.
func NewMenuModel(store client.SettingsStore, settings client.Settings, width, height int) MenuModel {
	return MenuModel{
		items:     []MenuChoice{MenuLocal, MenuOnline, MenuStats, MenuDifficulty, MenuQuit},
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
		settings:  settings,
		store:     store,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		switch choice := m.items[m.cursor]; choice {
		case MenuDifficulty:
			m.cycleDifficulty()
		case MenuQuit:
			m.quitting = true
			return m, tea.Quit
		default:
			m.selected = choice
		}
	}
	return m, nil
}

func (m *MenuModel) cycleDifficulty() {
	next := difficulties[0]
	for i, d := range difficulties {
		if d == m.settings.Difficulty {
			next = difficulties[(i+1)%len(difficulties)]
		}
	}
	m.settings.Difficulty = next
	m.notice = ""
	if m.store != nil {
		if err := m.store.Save(m.settings); err != nil {
			m.notice = err.Error()
		}
	}
}

func (m MenuModel) label(c MenuChoice) string {
	switch c {
	case MenuLocal:
		return "Play vs CPU"
	case MenuOnline:
		return "Play online"
	case MenuStats:
		return "Stats"
	case MenuDifficulty:
		return fmt.Sprintf("CPU: %s", m.settings.Difficulty)
	case MenuQuit:
		return "Quit"
	}
	return ""
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  P O N G  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(dimStyle.Render(m.settings.ServerURL), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%-16s", cursor+m.label(item)), m.width))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(centerText(noticeStyle.Render(m.notice), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit"), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen entry, or MenuNone.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}

// Settings returns the settings, including any difficulty change.
func (m MenuModel) Settings() client.Settings {
	return m.settings
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}
