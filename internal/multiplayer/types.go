// Package multiplayer runs the authoritative online match: two seats, a ready
// handshake, a countdown and the fixed-rate tick loop that owns the MatchState.
package multiplayer

import (
	"context"

	"github.com/google/uuid"

	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

// PlayerID is an alias to pong.PlayerID for convenience.
type PlayerID = pong.PlayerID

// Re-export seat constants for convenience.
const (
	NoPlayer = pong.NoPlayer
	Player1  = pong.Player1
	Player2  = pong.Player2
)

// SessionID uniquely identifies a live connection.
type SessionID string

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// MatchID uniquely identifies one match from countdown to end.
type MatchID string

// NewMatchID returns a random match identifier.
func NewMatchID() MatchID {
	return MatchID("match-" + uuid.NewString())
}

// Phase is the coordinator's lifecycle state.
type Phase int

const (
	PhaseEmpty     Phase = iota // no seat taken
	PhaseSeating                // one or two seats taken, not both ready
	PhaseBothReady              // start delay running
	PhaseCountdown
	PhaseRunning
	PhaseGoalPause // waiting for the non-scorer to serve
	PhaseEnded     // reset delay running
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseSeating:
		return "seating"
	case PhaseBothReady:
		return "both-ready"
	case PhaseCountdown:
		return "countdown"
	case PhaseRunning:
		return "running"
	case PhaseGoalPause:
		return "goal-pause"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// InMatch reports whether a match is underway (countdown included).
func (p Phase) InMatch() bool {
	return p == PhaseCountdown || p == PhaseRunning || p == PhaseGoalPause
}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted MatchEndReason = iota // a seat reached the winning score
	MatchEndReasonAborted                         // a seat left mid-match
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MatchResultSaver persists the outcome of a match.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(ctx context.Context, result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID      MatchID
	Player1      string // username
	Player2      string
	Score1       int
	Score2       int
	Winner       PlayerID // NoPlayer for aborted matches
	Reason       MatchEndReason
	DurationSecs int
}

// WinnerName returns the username of the winning seat, or "".
func (d MatchResultData) WinnerName() string {
	switch d.Winner {
	case Player1:
		return d.Player1
	case Player2:
		return d.Player2
	default:
		return ""
	}
}

// Status is a read-only view of the coordinator for diagnostics.
type Status struct {
	Phase        string `json:"phase"`
	MatchID      string `json:"matchId,omitempty"`
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	PlayersCount int    `json:"playersCount"`
	Score1       int    `json:"score1"`
	Score2       int    `json:"score2"`
}
