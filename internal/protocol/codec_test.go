package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

func TestEncodeFlatObjects(t *testing.T) {
	tests := []struct {
		name     string
		msg      ServerMessage
		expected string
	}{
		{name: "empty payload", msg: GameStart{}, expected: `{"type":"gameStart"}`},
		{name: "goal", msg: Goal{Scorer: pong.Player2}, expected: `{"type":"goal","scorer":2}`},
		{name: "countdown number", msg: Countdown{Count: 3}, expected: `{"type":"countdown","count":3}`},
		{name: "countdown go", msg: Countdown{Count: CountdownGo}, expected: `{"type":"countdown","count":"go"}`},
		{name: "waiting null scorer", msg: WaitingForLaunch{}, expected: `{"type":"waitingForLaunch","lastScorer":null}`},
		{
			name:     "game end",
			msg:      GameEnd{Winner: pong.Player1, FinalScore: FinalScore{Player1: 5, Player2: 2}},
			expected: `{"type":"gameEnd","winner":1,"finalScore":{"player1":5,"player2":2}}`,
		},
		{
			name:     "failed login omits optional fields",
			msg:      LoginResult{Success: false, Message: "user not found"},
			expected: `{"type":"loginResult","success":false,"message":"user not found"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeServer(tc.msg)
			if err != nil {
				t.Fatalf("EncodeServer() failed: %v", err)
			}
			if string(data) != tc.expected {
				t.Errorf("EncodeServer() = %s, expected %s", data, tc.expected)
			}
		})
	}
}

func TestDecodeClientKnownTags(t *testing.T) {
	tests := []struct {
		raw      string
		expected ClientMessage
	}{
		{`{"type":"login","username":"guest1","password":"password"}`, Login{Username: "guest1", Password: "password"}},
		{`{"type":"register","username":"bob","password":"pw1"}`, Register{Username: "bob", Password: "pw1"}},
		{`{"type":"joinLobby"}`, JoinLobby{}},
		{`{"type":"leaveLobby"}`, LeaveLobby{}},
		{`{"type":"playerReady","ready":true}`, PlayerReady{Ready: true}},
		{`{"type":"input","input":"down"}`, Input{Input: DirectionDown}},
		{`{"type":"inputStop"}`, InputStop{}},
		{`{"type":"mouseInput","paddleY":123.5}`, MouseInput{PaddleY: 123.5}},
		{`{"type":"launchBall"}`, LaunchBall{}},
		{`{"type":"getStats"}`, GetStats{}},
		{`{"type":"ping"}`, Ping{}},
	}

	for _, tc := range tests {
		t.Run(tc.expected.Type(), func(t *testing.T) {
			got, err := DecodeClient([]byte(tc.raw))
			if err != nil {
				t.Fatalf("DecodeClient() failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("DecodeClient() = %#v, expected %#v", got, tc.expected)
			}
		})
	}
}

func TestDecodeClientRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "unknown tag", raw: `{"type":"cheat"}`, want: ErrUnknownMessageType},
		{name: "server tag from client", raw: `{"type":"gameState"}`, want: ErrUnknownMessageType},
		{name: "not json", raw: `hello`, want: ErrMalformedMessage},
		{name: "missing type", raw: `{"ready":true}`, want: ErrMalformedMessage},
		{name: "bad direction", raw: `{"type":"input","input":"left"}`, want: ErrMalformedMessage},
		{name: "wrong field type", raw: `{"type":"playerReady","ready":"yes"}`, want: ErrMalformedMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeClient([]byte(tc.raw))
			if !errors.Is(err, tc.want) {
				t.Errorf("DecodeClient() error = %v, expected %v", err, tc.want)
			}
		})
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	state := pong.NewMatchState(pong.DefaultParams())
	state.Score1 = 4
	state.Running = true

	msgs := []ServerMessage{
		LoginResult{Success: true, Username: "guest1", Stats: &Stats{Wins: 5, Losses: 3, Games: 8}},
		RegisterResult{Success: false, Message: "username already exists"},
		PlayerIDAssigned{ID: pong.Player2},
		LobbyUpdate{Player1: true, Player1Name: "guest1", Player1Ready: true, PlayersCount: 1},
		Countdown{Count: 2},
		Countdown{Count: CountdownGo},
		GameState{State: state.Snapshot()},
		Goal{Scorer: pong.Player1},
		WaitingForLaunch{LastScorer: pong.Player1},
		GameEnd{Winner: pong.Player2, FinalScore: FinalScore{Player1: 3, Player2: 5}},
		Error{Message: "lobby full"},
		UserStats{Username: "admin", Stats: Stats{Wins: 10, Losses: 2, Games: 12}},
	}

	for _, msg := range msgs {
		t.Run(msg.Type(), func(t *testing.T) {
			data, err := EncodeServer(msg)
			if err != nil {
				t.Fatal(err)
			}
			got, err := DecodeServer(data)
			if err != nil {
				t.Fatalf("DecodeServer(%s) failed: %v", data, err)
			}
			want, _ := json.Marshal(msg)
			have, _ := json.Marshal(got)
			if got.Type() != msg.Type() || string(want) != string(have) {
				t.Errorf("round trip mismatch: %s vs %s", have, want)
			}
		})
	}
}

func TestCountdownValueString(t *testing.T) {
	if CountdownValue(3).String() != "3" || CountdownGo.String() != "go" {
		t.Error("unexpected CountdownValue strings")
	}
}
