package multiplayer

import (
	"testing"

	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", 2)
	s.Send(protocol.Countdown{Count: 3})
	s.Send(protocol.Countdown{Count: 2})
	s.Send(protocol.Countdown{Count: 1})

	msgs := drain(s)
	if len(msgs) != 2 {
		t.Fatalf("len = %d, expected 2", len(msgs))
	}
	if first := msgs[0].(protocol.Countdown); first.Count != 2 {
		t.Errorf("first = %v, expected 2", first.Count)
	}
	if s.Dropped() != 1 {
		t.Errorf("Dropped() = %d, expected 1", s.Dropped())
	}
}

func TestChannelSessionClose(t *testing.T) {
	s := NewChannelSession("s", 4)
	s.Close()
	s.Close()

	s.Send(protocol.Pong{})
	if got := len(drain(s)); got != 0 {
		t.Errorf("got %d messages after Close, expected 0", got)
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed")
	}
}

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()
	s := NewChannelSession(NewSessionID(), 1)
	r.Register(s)

	if got, ok := r.Get(s.ID()); !ok || got.ID() != s.ID() {
		t.Errorf("Get() = %v, %v", got, ok)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", r.Count())
	}
	r.Unregister(s.ID())
	if _, ok := r.Get(s.ID()); ok {
		t.Error("session still registered")
	}
}
