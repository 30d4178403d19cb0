package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore is the database-backed UserStore.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path (a leading ~ is
// expanded). Parent directories are created and migrations run.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("storage: empty database path")
	}

	inMemory := dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:")
	if !inMemory {
		if dbPath[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer keeps SQLite free of "database is locked" errors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			games INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FindUser implements UserStore.
func (s *SQLiteStore) FindUser(ctx context.Context, username string) (User, error) {
	var u User
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, wins, losses, games, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.PasswordHash, &u.Stats.Wins, &u.Stats.Losses, &u.Stats.Games, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot query user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// CreateUser implements UserStore.
func (s *SQLiteStore) CreateUser(ctx context.Context, user User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, wins, losses, games)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		user.Username, user.PasswordHash, user.Stats.Wins, user.Stats.Losses, user.Stats.Games,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot read affected rows: %w", err)
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

// IncrementStats implements UserStore. Games and exactly one of wins/losses
// move together in a single statement.
func (s *SQLiteStore) IncrementStats(ctx context.Context, username string, won bool) error {
	win, loss := 0, 1
	if won {
		win, loss = 1, 0
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET games = games + 1, wins = wins + ?, losses = losses + ?
		 WHERE username = ?`,
		win, loss, username,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update stats: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordMatch implements UserStore.
func (s *SQLiteStore) RecordMatch(ctx context.Context, rec MatchRecord) error {
	var winner sql.NullString
	if rec.Winner != "" {
		winner = sql.NullString{String: rec.Winner, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (player1, player2, score1, score2, winner, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Player1, rec.Player2, rec.Score1, rec.Score2, winner, rec.EndReason, rec.Duration,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match: %w", err)
	}
	return nil
}

// RecentMatches implements UserStore, newest first.
func (s *SQLiteStore) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player1, player2, score1, score2, winner, end_reason, duration_secs, created_at
		 FROM matches
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var winner sql.NullString
		var createdAt any
		if err := rows.Scan(&rec.ID, &rec.Player1, &rec.Player2, &rec.Score1, &rec.Score2,
			&winner, &rec.EndReason, &rec.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.Winner = winner.String
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// parseTime handles the driver returning either time.Time or a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

var _ UserStore = (*SQLiteStore)(nil)
