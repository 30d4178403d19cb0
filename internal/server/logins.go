package server

import (
	"sync"

	"github.com/vovakirdan/pong-ultimate/internal/multiplayer"
)

// loginTable maps usernames to the connection logged in as them, so one
// account is never seated twice.
type loginTable struct {
	mu     sync.Mutex
	byUser map[string]multiplayer.SessionID
}

func newLoginTable() *loginTable {
	return &loginTable{byUser: make(map[string]multiplayer.SessionID)}
}

// claim records that id is logged in as username. It fails if another
// connection already holds the name.
func (t *loginTable) claim(username string, id multiplayer.SessionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if owner, ok := t.byUser[username]; ok && owner != id {
		return false
	}
	t.byUser[username] = id
	return true
}

// release frees username if id holds it.
func (t *loginTable) release(username string, id multiplayer.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byUser[username] == id {
		delete(t.byUser, username)
	}
}

func (t *loginTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byUser)
}
