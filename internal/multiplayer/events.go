package multiplayer

// CoordinatorMessage is a request from the transport to the coordinator.
// All messages are processed on the coordinator goroutine, in arrival order.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// JoinLobbyMsg asks for a seat. Username must already be authenticated.
type JoinLobbyMsg struct {
	SessionID SessionID
	Username  string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// LeaveLobbyMsg gives up a seat.
type LeaveLobbyMsg struct {
	SessionID SessionID
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// ReadyMsg sets the seat's ready flag.
type ReadyMsg struct {
	SessionID SessionID
	Ready     bool
}

func (ReadyMsg) coordinatorMessage() {}

// MoveMsg sets the paddle direction: -1 up, +1 down, 0 stop.
type MoveMsg struct {
	SessionID SessionID
	Direction float64
}

func (MoveMsg) coordinatorMessage() {}

// PositionMsg places the paddle's top edge directly (pointer input).
type PositionMsg struct {
	SessionID SessionID
	Y         float64
}

func (PositionMsg) coordinatorMessage() {}

// LaunchMsg asks to serve after a goal.
type LaunchMsg struct {
	SessionID SessionID
}

func (LaunchMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent once when a connection closes.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
