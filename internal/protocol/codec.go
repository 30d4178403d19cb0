package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownMessageType is returned when a message carries a tag outside the protocol.
	ErrUnknownMessageType = errors.New("protocol: unknown message type")
	// ErrMalformedMessage is returned for invalid JSON or invalid field values.
	ErrMalformedMessage = errors.New("protocol: malformed message")
)

// CountdownValue is a countdown step. Zero is sent as the string "go".
type CountdownValue int

// CountdownGo is the final countdown step.
const CountdownGo CountdownValue = 0

// String returns the value as shown to players.
func (v CountdownValue) String() string {
	if v <= CountdownGo {
		return "go"
	}
	return strconv.Itoa(int(v))
}

// MarshalJSON encodes positive values as numbers and zero as "go".
func (v CountdownValue) MarshalJSON() ([]byte, error) {
	if v <= CountdownGo {
		return []byte(`"go"`), nil
	}
	return strconv.AppendInt(nil, int64(v), 10), nil
}

// UnmarshalJSON accepts a number or the string "go".
func (v *CountdownValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"go"`)) {
		*v = CountdownGo
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("countdown value %s: %w", data, err)
	}
	*v = CountdownValue(max(n, 0))
	return nil
}

type tagged interface {
	Type() string
}

// EncodeClient serializes a client message with its type tag.
func EncodeClient(msg ClientMessage) ([]byte, error) {
	return encode(msg)
}

// EncodeServer serializes a server message with its type tag.
func EncodeServer(msg ServerMessage) ([]byte, error) {
	return encode(msg)
}

// encode splices the "type" member into the marshaled struct so messages stay
// flat objects on the wire.
func encode(msg tagged) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", msg.Type(), err)
	}
	tag, err := json.Marshal(msg.Type())
	if err != nil {
		return nil, fmt.Errorf("protocol: encode tag: %w", err)
	}

	out := make([]byte, 0, len(body)+len(tag)+9)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

func peekType(data []byte) (string, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return env.Type, nil
}

func decodeAs[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return v, nil
}

// DecodeClient parses an inbound client message. Unknown tags yield
// ErrUnknownMessageType; bad payloads yield ErrMalformedMessage.
func DecodeClient(data []byte) (ClientMessage, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeLogin:
		return decodeAs[Login](data)
	case TypeRegister:
		return decodeAs[Register](data)
	case TypeJoinLobby:
		return JoinLobby{}, nil
	case TypeLeaveLobby:
		return LeaveLobby{}, nil
	case TypePlayerReady:
		return decodeAs[PlayerReady](data)
	case TypeInput:
		msg, err := decodeAs[Input](data)
		if err != nil {
			return nil, err
		}
		if msg.Input.Sign() == 0 {
			return nil, fmt.Errorf("%w: input %q", ErrMalformedMessage, msg.Input)
		}
		return msg, nil
	case TypeInputStop:
		return InputStop{}, nil
	case TypeMouseInput:
		return decodeAs[MouseInput](data)
	case TypeLaunchBall:
		return LaunchBall{}, nil
	case TypeGetStats:
		return GetStats{}, nil
	case TypePing:
		return Ping{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, typ)
	}
}

// DecodeServer parses a message received from the server.
func DecodeServer(data []byte) (ServerMessage, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeLoginResult:
		return decodeAs[LoginResult](data)
	case TypeRegisterResult:
		return decodeAs[RegisterResult](data)
	case TypePlayerID:
		return decodeAs[PlayerIDAssigned](data)
	case TypeLobbyUpdate:
		return decodeAs[LobbyUpdate](data)
	case TypeCountdown:
		return decodeAs[Countdown](data)
	case TypeGameStart:
		return GameStart{}, nil
	case TypeGameState:
		return decodeAs[GameState](data)
	case TypeGoal:
		return decodeAs[Goal](data)
	case TypeWaitingForLaunch:
		return decodeAs[WaitingForLaunch](data)
	case TypeBallLaunched:
		return BallLaunched{}, nil
	case TypeGameEnd:
		return decodeAs[GameEnd](data)
	case TypePlayerLeft:
		return PlayerLeft{}, nil
	case TypeError:
		return decodeAs[Error](data)
	case TypePong:
		return Pong{}, nil
	case TypeUserStats:
		return decodeAs[UserStats](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, typ)
	}
}
