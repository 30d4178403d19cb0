package client

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// ErrLoginRejected wraps a failed login while loading stats.
var ErrLoginRejected = errors.New("client: login rejected")

// recentLimit is how many matches the stats view asks for.
const recentLimit = 20

// StatsReport is everything the stats view shows.
type StatsReport struct {
	Username string
	Stats    *protocol.Stats // nil when no credentials were given
	Matches  []MatchSummary
}

// LoadStats fetches recent matches and, with credentials, the user's record.
// It opens its own short-lived connection.
func LoadStats(ctx context.Context, wsURL, username, password string, cfg config.SyncConfig, logger *log.Logger) (StatsReport, error) {
	var rep StatsReport

	matches, err := FetchRecentMatches(ctx, wsURL, recentLimit)
	if err != nil {
		return rep, err
	}
	rep.Matches = matches
	if username == "" {
		return rep, nil
	}

	bus := NewBus(logger)
	replies := make(chan protocol.ServerMessage, 8)
	unsub := On(bus, func(e MessageReceived) {
		select {
		case replies <- e.Msg:
		default:
		}
	})
	defer unsub()

	nc := NewNetworkClient(wsURL, cfg, bus, logger)
	defer nc.Close()
	if err := nc.Connect(ctx); err != nil {
		return rep, err
	}
	nc.Send(protocol.Login{Username: username, Password: password})

	for {
		select {
		case msg := <-replies:
			switch msg := msg.(type) {
			case protocol.LoginResult:
				if !msg.Success {
					return rep, errors.Join(ErrLoginRejected, errors.New(msg.Message))
				}
				nc.Send(protocol.GetStats{})
			case protocol.UserStats:
				stats := msg.Stats
				rep.Username = msg.Username
				rep.Stats = &stats
				return rep, nil
			}
		case <-ctx.Done():
			return rep, ctx.Err()
		}
	}
}
