package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pong-ultimate/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	case "w", "up", "k":
		return core.ActionUp, false
	case "s", "down", "j":
		return core.ActionDown, false
	case " ":
		return core.ActionLaunch, false
	case "r":
		return core.ActionReady, false
	case "enter":
		return core.ActionConfirm, false
	case "b", "esc":
		return core.ActionBack, false
	case "p":
		return core.ActionPause, false
	case "n":
		return core.ActionRestart, false
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}

// holdTicks is how long a direction stays held after the last key repeat.
const holdTicks = 8

// heldDirection turns key-repeat presses into a held paddle direction.
// Terminals report no key releases, so a direction lapses after holdTicks
// ticks without a press.
type heldDirection struct {
	dir  float64
	left int
}

// Update folds one tick's input in and reports the direction and whether it
// changed since the previous tick.
func (h *heldDirection) Update(frame core.InputFrame) (dir float64, changed bool) {
	prev := h.dir
	if v := frame.Vertical(); v != 0 {
		h.dir, h.left = v, holdTicks
	} else if h.left > 0 {
		h.left--
		if h.left == 0 {
			h.dir = 0
		}
	}
	return h.dir, h.dir != prev
}

// Reset drops any held direction.
func (h *heldDirection) Reset() {
	*h = heldDirection{}
}
