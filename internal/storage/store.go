// Package storage persists user accounts, win/loss statistics and match
// history. SQLite (pure-Go modernc.org/sqlite driver) is the primary backend;
// MemoryStore is the fallback used when the database cannot be opened.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no account matches the username.
	ErrUserNotFound = errors.New("storage: user not found")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("storage: username already exists")
)

// Stats is a user's record. Games always equals Wins + Losses for accounts
// created through this package.
type Stats struct {
	Wins   int
	Losses int
	Games  int
}

// User is an account record.
type User struct {
	Username     string
	PasswordHash string
	Stats        Stats
	CreatedAt    time.Time
}

// MatchRecord is one completed or aborted online match.
type MatchRecord struct {
	ID        int64
	Player1   string
	Player2   string
	Score1    int
	Score2    int
	Winner    string // empty for aborted matches
	EndReason string
	Duration  int // seconds
	CreatedAt time.Time
}

// UserStore is the persistence port used by the server.
type UserStore interface {
	FindUser(ctx context.Context, username string) (User, error)
	CreateUser(ctx context.Context, user User) error
	IncrementStats(ctx context.Context, username string, won bool) error
	RecordMatch(ctx context.Context, rec MatchRecord) error
	RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error)
	Close() error
}
