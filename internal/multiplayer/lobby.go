package multiplayer

import (
	"errors"

	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

var (
	// ErrLobbyFull is returned when both seats are taken.
	ErrLobbyFull = errors.New("lobby full")
	// ErrAlreadySeated is returned when a session asks for a second seat.
	ErrAlreadySeated = errors.New("already in lobby")
)

type seat struct {
	session  SessionHandle
	username string
	ready    bool
}

// Lobby holds the two seats. It is owned by the coordinator goroutine and is
// not safe for concurrent use.
type Lobby struct {
	seats [2]*seat
}

// NewLobby returns a lobby with both seats vacant.
func NewLobby() *Lobby {
	return &Lobby{}
}

func (l *Lobby) seat(id PlayerID) *seat {
	if !id.Valid() {
		return nil
	}
	return l.seats[id-1]
}

// Take seats the session in the first free slot.
func (l *Lobby) Take(session SessionHandle, username string) (PlayerID, error) {
	if l.SeatOf(session.ID()) != NoPlayer {
		return NoPlayer, ErrAlreadySeated
	}
	for i := range l.seats {
		if l.seats[i] == nil {
			l.seats[i] = &seat{session: session, username: username}
			return PlayerID(i + 1), nil
		}
	}
	return NoPlayer, ErrLobbyFull
}

// Vacate frees the seat held by the session and returns it.
func (l *Lobby) Vacate(id SessionID) PlayerID {
	p := l.SeatOf(id)
	if p != NoPlayer {
		l.seats[p-1] = nil
	}
	return p
}

// SeatOf returns the seat held by the session, or NoPlayer.
func (l *Lobby) SeatOf(id SessionID) PlayerID {
	for i, s := range l.seats {
		if s != nil && s.session.ID() == id {
			return PlayerID(i + 1)
		}
	}
	return NoPlayer
}

// Username returns the name seated at id, or "".
func (l *Lobby) Username(id PlayerID) string {
	if s := l.seat(id); s != nil {
		return s.username
	}
	return ""
}

// Count returns the number of occupied seats.
func (l *Lobby) Count() int {
	n := 0
	for _, s := range l.seats {
		if s != nil {
			n++
		}
	}
	return n
}

// SetReady updates a seat's ready flag.
func (l *Lobby) SetReady(id PlayerID, ready bool) {
	if s := l.seat(id); s != nil {
		s.ready = ready
	}
}

// Ready reports a seat's ready flag.
func (l *Lobby) Ready(id PlayerID) bool {
	s := l.seat(id)
	return s != nil && s.ready
}

// BothReady reports whether both seats are taken and ready.
func (l *Lobby) BothReady() bool {
	return l.Ready(Player1) && l.Ready(Player2)
}

// NoneReady reports whether no seated player is ready.
func (l *Lobby) NoneReady() bool {
	return !l.Ready(Player1) && !l.Ready(Player2)
}

// ClearReady drops both ready flags. Seats stay occupied.
func (l *Lobby) ClearReady() {
	for _, s := range l.seats {
		if s != nil {
			s.ready = false
		}
	}
}

// Update renders the lobby as the wire message.
func (l *Lobby) Update() protocol.LobbyUpdate {
	return protocol.LobbyUpdate{
		Player1:      l.seats[0] != nil,
		Player2:      l.seats[1] != nil,
		Player1Ready: l.Ready(Player1),
		Player2Ready: l.Ready(Player2),
		Player1Name:  l.Username(Player1),
		Player2Name:  l.Username(Player2),
		PlayersCount: l.Count(),
	}
}

// Send unicasts to one seat.
func (l *Lobby) Send(id PlayerID, msg protocol.ServerMessage) {
	if s := l.seat(id); s != nil {
		s.session.Send(msg)
	}
}

// Broadcast sends to every seated session.
func (l *Lobby) Broadcast(msg protocol.ServerMessage) {
	for _, s := range l.seats {
		if s != nil {
			s.session.Send(msg)
		}
	}
}
