package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/pong-ultimate/internal/multiplayer"
)

// ResultSaver books finished matches into a UserStore: one history row per
// match, and +1 game with +1 win or loss for each seat of a completed match.
type ResultSaver struct {
	Users UserStore
}

// NewResultSaver wraps a store.
func NewResultSaver(users UserStore) *ResultSaver {
	return &ResultSaver{Users: users}
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (r *ResultSaver) SaveMatchResult(ctx context.Context, result multiplayer.MatchResultData) error {
	var errs []error

	if result.Reason == multiplayer.MatchEndReasonCompleted {
		seats := []struct {
			name string
			id   multiplayer.PlayerID
		}{
			{result.Player1, multiplayer.Player1},
			{result.Player2, multiplayer.Player2},
		}
		for _, s := range seats {
			if s.name == "" {
				continue
			}
			if err := r.Users.IncrementStats(ctx, s.name, s.id == result.Winner); err != nil {
				errs = append(errs, fmt.Errorf("stats for %s: %w", s.name, err))
			}
		}
	}

	rec := MatchRecord{
		Player1:   result.Player1,
		Player2:   result.Player2,
		Score1:    result.Score1,
		Score2:    result.Score2,
		Winner:    result.WinnerName(),
		EndReason: result.Reason.String(),
		Duration:  result.DurationSecs,
	}
	if err := r.Users.RecordMatch(ctx, rec); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var _ multiplayer.MatchResultSaver = (*ResultSaver)(nil)
