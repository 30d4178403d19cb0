// Package client is the player side of an online match: the WebSocket
// connection with reconnect, snapshot reconciliation, a local CPU match for
// offline play and persisted user settings.
package client

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// Event is published on a Bus. The set of events is closed.
type Event interface {
	clientEvent()
}

// Connected fires after a successful dial, including reconnects.
type Connected struct {
	Reconnect bool
}

// Disconnected fires when an open connection drops.
type Disconnected struct {
	Err error
}

// Reconnecting fires before each reconnect attempt.
type Reconnecting struct {
	Attempt int
	Delay   time.Duration
}

// ReconnectFailed fires once the attempt budget is spent. The client stays
// offline until Connect is called again.
type ReconnectFailed struct {
	Err error
}

// MessageReceived carries one decoded server message.
type MessageReceived struct {
	Msg protocol.ServerMessage
}

// LatencyMeasured reports a ping round trip.
type LatencyMeasured struct {
	RTT time.Duration
}

func (Connected) clientEvent()       {}
func (Disconnected) clientEvent()    {}
func (Reconnecting) clientEvent()    {}
func (ReconnectFailed) clientEvent() {}
func (MessageReceived) clientEvent() {}
func (LatencyMeasured) clientEvent() {}

// Bus is a synchronous publish/subscribe hub. A panicking listener is logged
// and the remaining listeners still run.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	log    *log.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{subs: make(map[int]func(Event)), log: logger}
}

// Subscribe registers fn for every event. The returned func removes it and
// is safe to call more than once.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// On subscribes fn to events of type T only.
func On[T Event](b *Bus, fn func(T)) (unsubscribe func()) {
	return b.Subscribe(func(e Event) {
		if ev, ok := e.(T); ok {
			fn(ev)
		}
	})
}

// Publish delivers e to every listener in subscription order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	fns := make(map[int]func(Event), len(b.subs))
	for id, fn := range b.subs {
		fns[id] = fn
	}
	b.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		b.call(fns[id], e)
	}
}

func (b *Bus) call(fn func(Event), e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event listener panicked", "event", e, "panic", r)
		}
	}()
	fn(e)
}
