package core

// Action is a semantic input intent, decoupled from the physical key that
// produced it.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow
	ActionDown           // S, Down arrow
	ActionLaunch         // Space - serve after a goal
	ActionReady          // R in the lobby - toggle ready
	ActionConfirm        // Enter
	ActionBack           // Esc, B
	ActionPause          // P
	ActionRestart        // N after a local match ends
	ActionQuit           // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLaunch:
		return "Launch"
	case ActionReady:
		return "Ready"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame is the set of actions triggered during one tick.
type InputFrame uint32

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	*f |= 1 << uint(a)
}

// Has reports whether the action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f&(1<<uint(a)) != 0
}

// Clear resets the frame.
func (f *InputFrame) Clear() {
	*f = 0
}

// Vertical resolves the paddle direction for this frame: -1 up, +1 down, 0
// when neither or both are held.
func (f InputFrame) Vertical() float64 {
	up, down := f.Has(ActionUp), f.Has(ActionDown)
	switch {
	case up && !down:
		return -1
	case down && !up:
		return 1
	default:
		return 0
	}
}
