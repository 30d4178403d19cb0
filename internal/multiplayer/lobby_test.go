package multiplayer

import (
	"errors"
	"testing"

	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

func TestLobbyOccupancy(t *testing.T) {
	l := NewLobby()
	a := NewChannelSession("a", 8)
	b := NewChannelSession("b", 8)
	c := NewChannelSession("c", 8)

	steps := []struct {
		name    string
		do      func() error
		wantErr error
		count   int
	}{
		{"a joins", func() error { _, err := l.Take(a, "alice"); return err }, nil, 1},
		{"a joins again", func() error { _, err := l.Take(a, "alice"); return err }, ErrAlreadySeated, 1},
		{"b joins", func() error { _, err := l.Take(b, "bob"); return err }, nil, 2},
		{"c rejected", func() error { _, err := l.Take(c, "carol"); return err }, ErrLobbyFull, 2},
		{"a leaves", func() error { l.Vacate(a.ID()); return nil }, nil, 1},
		{"c takes seat 1", func() error { _, err := l.Take(c, "carol"); return err }, nil, 2},
		{"unknown leaves", func() error { l.Vacate("zzz"); return nil }, nil, 2},
	}

	for _, step := range steps {
		err := step.do()
		if !errors.Is(err, step.wantErr) {
			t.Errorf("%s: err = %v, expected %v", step.name, err, step.wantErr)
		}
		upd := l.Update()
		occupied := 0
		for _, taken := range []bool{upd.Player1, upd.Player2} {
			if taken {
				occupied++
			}
		}
		if upd.PlayersCount != occupied || upd.PlayersCount != step.count {
			t.Errorf("%s: PlayersCount = %d occupied = %d, expected %d", step.name, upd.PlayersCount, occupied, step.count)
		}
	}

	if got := l.SeatOf(c.ID()); got != Player1 {
		t.Errorf("SeatOf(c) = %v, expected 1", got)
	}
	if got := l.Username(Player2); got != "bob" {
		t.Errorf("Username(2) = %q, expected bob", got)
	}
}

func TestLobbyReadyFlags(t *testing.T) {
	l := NewLobby()
	a := NewChannelSession("a", 8)
	b := NewChannelSession("b", 8)
	l.Take(a, "alice")

	l.SetReady(Player1, true)
	if l.BothReady() {
		t.Error("BothReady() with one seat")
	}

	l.Take(b, "bob")
	l.SetReady(Player2, true)
	if !l.BothReady() {
		t.Error("BothReady() = false, expected true")
	}

	l.Vacate(a.ID())
	if l.Ready(Player1) {
		t.Error("vacated seat still ready")
	}

	l.ClearReady()
	if !l.NoneReady() || l.Count() != 1 {
		t.Errorf("ClearReady(): NoneReady = %v Count = %d", l.NoneReady(), l.Count())
	}
}

func TestLobbyBroadcastSeatedOnly(t *testing.T) {
	l := NewLobby()
	a := NewChannelSession("a", 8)
	outsider := NewChannelSession("x", 8)
	l.Take(a, "alice")

	l.Broadcast(protocol.PlayerLeft{})
	l.Send(Player2, protocol.Pong{})

	if got := len(drain(a)); got != 1 {
		t.Errorf("seated session got %d messages, expected 1", got)
	}
	if got := len(drain(outsider)); got != 0 {
		t.Errorf("outsider got %d messages, expected 0", got)
	}
}
