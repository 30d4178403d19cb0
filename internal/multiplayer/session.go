package multiplayer

import (
	"sync"
	"sync/atomic"

	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// SessionHandle is the transport-neutral interface for talking to a connection.
// It allows the coordinator to send messages without depending on WebSocket code.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send queues a message for the session.
	// Must be non-blocking; implementations should use buffered channels.
	Send(msg protocol.ServerMessage)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel. The
// transport's write pump drains Outbox; tests read it directly.
type ChannelSession struct {
	id       SessionID
	outbox   chan protocol.ServerMessage
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Uint64
}

// NewChannelSession creates a channel-backed session handle.
// bufferSize controls how many messages can queue before the oldest is dropped.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		outbox: make(chan protocol.ServerMessage, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues msg. A full buffer drops its oldest message so a slow reader
// never stalls the tick loop. Sending after Close is a no-op.
func (s *ChannelSession) Send(msg protocol.ServerMessage) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.outbox <- msg:
		return
	default:
	}

	select {
	case <-s.outbox:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.outbox <- msg:
	default:
		s.dropped.Add(1)
	}
}

// Outbox returns the channel queued messages are read from.
func (s *ChannelSession) Outbox() <-chan protocol.ServerMessage {
	return s.outbox
}

// Dropped returns how many messages were discarded on overflow.
func (s *ChannelSession) Dropped() uint64 {
	return s.dropped.Load()
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done.
// Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks live sessions.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session to the registry.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Unregister removes a session from the registry.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
