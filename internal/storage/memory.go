package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps accounts in process memory. Data is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]User
	matches []MatchRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

// NewDemoMemoryStore creates an in-memory store holding the demo accounts.
func NewDemoMemoryStore() (*MemoryStore, error) {
	s := NewMemoryStore()
	if err := SeedDemoAccounts(context.Background(), s); err != nil {
		return nil, err
	}
	return s, nil
}

// FindUser implements UserStore.
func (s *MemoryStore) FindUser(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// CreateUser implements UserStore.
func (s *MemoryStore) CreateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.Username] = user
	return nil
}

// IncrementStats implements UserStore.
func (s *MemoryStore) IncrementStats(_ context.Context, username string, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.Stats.Games++
	if won {
		u.Stats.Wins++
	} else {
		u.Stats.Losses++
	}
	s.users[username] = u
	return nil
}

// RecordMatch implements UserStore.
func (s *MemoryStore) RecordMatch(_ context.Context, rec MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = int64(len(s.matches) + 1)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.matches = append(s.matches, rec)
	return nil
}

// RecentMatches implements UserStore, newest first.
func (s *MemoryStore) RecentMatches(_ context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	out := make([]MatchRecord, len(s.matches))
	copy(out, s.matches)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements UserStore.
func (s *MemoryStore) Close() error {
	return nil
}

var _ UserStore = (*MemoryStore)(nil)
