package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MatchSummary is one entry of the server's recent match list.
type MatchSummary struct {
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Score1    int       `json:"score1"`
	Score2    int       `json:"score2"`
	Winner    string    `json:"winner,omitempty"`
	EndReason string    `json:"endReason"`
	Duration  int       `json:"durationSecs"`
	PlayedAt  time.Time `json:"playedAt"`
}

// HTTPBase turns the WebSocket endpoint into the server's HTTP root:
// ws://host:3000/ws becomes http://host:3000.
func HTTPBase(wsURL string) (string, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "", fmt.Errorf("client: parse %q: %w", wsURL, err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	u.Path, u.RawQuery, u.Fragment = "", "", ""
	return u.String(), nil
}

// FetchRecentMatches reads the newest matches from the server.
func FetchRecentMatches(ctx context.Context, wsURL string, limit int) ([]MatchSummary, error) {
	base, err := HTTPBase(wsURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		base+"/matches?limit="+strconv.Itoa(limit), nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: fetch matches: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client: fetch matches: %s", resp.Status)
	}
	var out []MatchSummary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("client: decode matches: %w", err)
	}
	return out, nil
}
