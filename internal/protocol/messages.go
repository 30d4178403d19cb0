// Package protocol defines the JSON wire protocol between the match server and
// its clients. Every message is a JSON object carrying a "type" tag; the set of
// tags is closed in both directions.
package protocol

import (
	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

// ClientMessage is a message sent by a client to the server.
type ClientMessage interface {
	Type() string
	clientMessage()
}

// ServerMessage is a message sent by the server to a client.
type ServerMessage interface {
	Type() string
	serverMessage()
}

// Client -> server tags.
const (
	TypeLogin       = "login"
	TypeRegister    = "register"
	TypeJoinLobby   = "joinLobby"
	TypeLeaveLobby  = "leaveLobby"
	TypePlayerReady = "playerReady"
	TypeInput       = "input"
	TypeInputStop   = "inputStop"
	TypeMouseInput  = "mouseInput"
	TypeLaunchBall  = "launchBall"
	TypeGetStats    = "getStats"
	TypePing        = "ping"
)

// Server -> client tags.
const (
	TypeLoginResult      = "loginResult"
	TypeRegisterResult   = "registerResult"
	TypePlayerID         = "playerId"
	TypeLobbyUpdate      = "lobbyUpdate"
	TypeCountdown        = "countdown"
	TypeGameStart        = "gameStart"
	TypeGameState        = "gameState"
	TypeGoal             = "goal"
	TypeWaitingForLaunch = "waitingForLaunch"
	TypeBallLaunched     = "ballLaunched"
	TypeGameEnd          = "gameEnd"
	TypePlayerLeft       = "playerLeft"
	TypeError            = "error"
	TypePong             = "pong"
	TypeUserStats        = "userStats"
)

// Direction is a paddle movement intent.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Sign maps the direction to -1 (up) or +1 (down).
func (d Direction) Sign() float64 {
	switch d {
	case DirectionUp:
		return -1
	case DirectionDown:
		return 1
	default:
		return 0
	}
}

// Stats is a user's win/loss record.
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Games  int `json:"games"`
}

// Login authenticates the connection.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account.
type Register struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// JoinLobby asks for a seat.
type JoinLobby struct{}

// LeaveLobby gives up the seat without closing the connection.
type LeaveLobby struct{}

// PlayerReady sets the seat's ready flag.
type PlayerReady struct {
	Ready bool `json:"ready"`
}

// Input starts moving the paddle.
type Input struct {
	Input Direction `json:"input"`
}

// InputStop stops the paddle.
type InputStop struct{}

// MouseInput places the paddle's top edge at PaddleY.
type MouseInput struct {
	PaddleY float64 `json:"paddleY"`
}

// LaunchBall serves after a goal.
type LaunchBall struct{}

// GetStats requests the caller's stats.
type GetStats struct{}

// Ping is a latency probe.
type Ping struct{}

func (Login) Type() string       { return TypeLogin }
func (Register) Type() string    { return TypeRegister }
func (JoinLobby) Type() string   { return TypeJoinLobby }
func (LeaveLobby) Type() string  { return TypeLeaveLobby }
func (PlayerReady) Type() string { return TypePlayerReady }
func (Input) Type() string       { return TypeInput }
func (InputStop) Type() string   { return TypeInputStop }
func (MouseInput) Type() string  { return TypeMouseInput }
func (LaunchBall) Type() string  { return TypeLaunchBall }
func (GetStats) Type() string    { return TypeGetStats }
func (Ping) Type() string        { return TypePing }

func (Login) clientMessage()       {}
func (Register) clientMessage()    {}
func (JoinLobby) clientMessage()   {}
func (LeaveLobby) clientMessage()  {}
func (PlayerReady) clientMessage() {}
func (Input) clientMessage()       {}
func (InputStop) clientMessage()   {}
func (MouseInput) clientMessage()  {}
func (LaunchBall) clientMessage()  {}
func (GetStats) clientMessage()    {}
func (Ping) clientMessage()        {}

// LoginResult answers Login.
type LoginResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Stats    *Stats `json:"stats,omitempty"`
	Message  string `json:"message,omitempty"`
}

// RegisterResult answers Register.
type RegisterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PlayerIDAssigned tells a client which seat it occupies.
type PlayerIDAssigned struct {
	ID pong.PlayerID `json:"id"`
}

// LobbyUpdate is the lobby as seen by every seated client.
type LobbyUpdate struct {
	Player1      bool   `json:"player1"`
	Player2      bool   `json:"player2"`
	Player1Ready bool   `json:"player1Ready"`
	Player2Ready bool   `json:"player2Ready"`
	Player1Name  string `json:"player1Name"`
	Player2Name  string `json:"player2Name"`
	PlayersCount int    `json:"playersCount"`
}

// Countdown carries one countdown value.
type Countdown struct {
	Count CountdownValue `json:"count"`
}

// GameStart marks the transition to Running.
type GameStart struct{}

// GameState is the per-tick authoritative snapshot.
type GameState struct {
	State pong.Snapshot `json:"state"`
}

// Goal announces a point.
type Goal struct {
	Scorer pong.PlayerID `json:"scorer"`
}

// WaitingForLaunch tells clients who scored last; the other seat serves.
type WaitingForLaunch struct {
	LastScorer pong.PlayerID `json:"lastScorer"`
}

// BallLaunched confirms a serve.
type BallLaunched struct{}

// FinalScore is the terminal score of a match.
type FinalScore struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// GameEnd announces the winner.
type GameEnd struct {
	Winner     pong.PlayerID `json:"winner"`
	FinalScore FinalScore    `json:"finalScore"`
}

// PlayerLeft tells the remaining seat its opponent is gone.
type PlayerLeft struct{}

// Error is a human-readable rejection.
type Error struct {
	Message string `json:"message"`
}

// Pong answers Ping.
type Pong struct{}

// UserStats answers GetStats.
type UserStats struct {
	Username string `json:"username"`
	Stats    Stats  `json:"stats"`
}

func (LoginResult) Type() string      { return TypeLoginResult }
func (RegisterResult) Type() string   { return TypeRegisterResult }
func (PlayerIDAssigned) Type() string { return TypePlayerID }
func (LobbyUpdate) Type() string      { return TypeLobbyUpdate }
func (Countdown) Type() string        { return TypeCountdown }
func (GameStart) Type() string        { return TypeGameStart }
func (GameState) Type() string        { return TypeGameState }
func (Goal) Type() string             { return TypeGoal }
func (WaitingForLaunch) Type() string { return TypeWaitingForLaunch }
func (BallLaunched) Type() string     { return TypeBallLaunched }
func (GameEnd) Type() string          { return TypeGameEnd }
func (PlayerLeft) Type() string       { return TypePlayerLeft }
func (Error) Type() string            { return TypeError }
func (Pong) Type() string             { return TypePong }
func (UserStats) Type() string        { return TypeUserStats }

func (LoginResult) serverMessage()      {}
func (RegisterResult) serverMessage()   {}
func (PlayerIDAssigned) serverMessage() {}
func (LobbyUpdate) serverMessage()      {}
func (Countdown) serverMessage()        {}
func (GameStart) serverMessage()        {}
func (GameState) serverMessage()        {}
func (Goal) serverMessage()             {}
func (WaitingForLaunch) serverMessage() {}
func (BallLaunched) serverMessage()     {}
func (GameEnd) serverMessage()          {}
func (PlayerLeft) serverMessage()       {}
func (Error) serverMessage()            {}
func (Pong) serverMessage()             {}
func (UserStats) serverMessage()        {}
