package storage

import (
	"context"
	"errors"
	"fmt"
)

// DemoAccount is a fixed account available on every server.
type DemoAccount struct {
	Username string
	Password string
	Stats    Stats
}

// DemoAccounts are seeded into the database and back the in-memory fallback.
var DemoAccounts = []DemoAccount{
	{Username: "guest1", Password: "password", Stats: Stats{Wins: 5, Losses: 3, Games: 8}},
	{Username: "guest2", Password: "password", Stats: Stats{Wins: 2, Losses: 6, Games: 8}},
	{Username: "admin", Password: "admin123", Stats: Stats{Wins: 10, Losses: 2, Games: 12}},
}

// SeedDemoAccounts creates any demo account missing from the store. Existing
// accounts are left untouched.
func SeedDemoAccounts(ctx context.Context, store UserStore) error {
	for _, acct := range DemoAccounts {
		_, err := store.FindUser(ctx, acct.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		hash, err := HashPassword(acct.Password)
		if err != nil {
			return err
		}
		err = store.CreateUser(ctx, User{Username: acct.Username, PasswordHash: hash, Stats: acct.Stats})
		if err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("storage: seed %s: %w", acct.Username, err)
		}
	}
	return nil
}
