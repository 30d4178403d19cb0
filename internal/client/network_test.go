package client

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// fakeServer records client messages and answers pings.
type fakeServer struct {
	hs       *httptest.Server
	received chan protocol.ClientMessage
	conns    atomic.Int32

	dropFirst   bool  // close the first connection after one message
	refuseAfter int32 // reject upgrades past this many connections; 0 never rejects
}

func newFakeServer(t *testing.T, dropFirst bool, refuseAfter int32) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		received:    make(chan protocol.ClientMessage, 32),
		dropFirst:   dropFirst,
		refuseAfter: refuseAfter,
	}
	upgrader := websocket.Upgrader{}
	fs.hs = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := fs.conns.Add(1)
		if fs.refuseAfter > 0 && n > fs.refuseAfter {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.DecodeClient(data)
			if err != nil {
				continue
			}
			fs.received <- msg
			if _, ok := msg.(protocol.Ping); ok {
				out, _ := protocol.EncodeServer(protocol.Pong{})
				ws.WriteMessage(websocket.TextMessage, out)
			}
			if fs.dropFirst && n == 1 {
				return
			}
		}
	}))
	t.Cleanup(fs.hs.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.hs.URL, "http")
}

func (fs *fakeServer) next(t *testing.T) protocol.ClientMessage {
	t.Helper()
	select {
	case msg := <-fs.received:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a client message")
		return nil
	}
}

func testNetConfig() config.SyncConfig {
	return config.SyncConfig{
		ConnectTimeout:       time.Second,
		MaxReconnectAttempts: 2,
		ReconnectDelay:       5 * time.Millisecond,
	}
}

// collect forwards events of type T into a buffered channel.
func collect[T Event](b *Bus) <-chan T {
	ch := make(chan T, 16)
	On(b, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
	return ch
}

func await[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %T", *new(T))
		var zero T
		return zero
	}
}

func newTestClient(t *testing.T, url string, cfg config.SyncConfig) (*NetworkClient, *Bus) {
	t.Helper()
	bus := NewBus(log.New(io.Discard))
	c := NewNetworkClient(url, cfg, bus, log.New(io.Discard))
	t.Cleanup(c.Close)
	return c, bus
}

func TestNetworkQueuesUntilConnected(t *testing.T) {
	fs := newFakeServer(t, false, 0)
	c, bus := newTestClient(t, fs.url(), testNetConfig())
	connected := collect[Connected](bus)

	c.Send(protocol.JoinLobby{})
	c.Send(protocol.PlayerReady{Ready: true})
	assert.Equal(t, StateDisconnected, c.State())

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, StateConnected, c.State())
	assert.False(t, await(t, connected).Reconnect)

	assert.IsType(t, protocol.JoinLobby{}, fs.next(t))
	assert.Equal(t, protocol.PlayerReady{Ready: true}, fs.next(t))
}

func TestNetworkPingMeasuresLatency(t *testing.T) {
	fs := newFakeServer(t, false, 0)
	c, bus := newTestClient(t, fs.url(), testNetConfig())
	latency := collect[LatencyMeasured](bus)
	received := collect[MessageReceived](bus)

	require.NoError(t, c.Connect(context.Background()))
	c.Ping()

	ev := await(t, latency)
	assert.Greater(t, ev.RTT, time.Duration(0))
	assert.Equal(t, ev.RTT, c.Latency())
	assert.IsType(t, protocol.Pong{}, await(t, received).Msg)
}

func TestNetworkReconnectReplaysLogin(t *testing.T) {
	fs := newFakeServer(t, true, 0)
	c, bus := newTestClient(t, fs.url(), testNetConfig())
	connected := collect[Connected](bus)
	disconnected := collect[Disconnected](bus)

	require.NoError(t, c.Connect(context.Background()))
	await(t, connected)

	login := protocol.Login{Username: "guest1", Password: "password"}
	c.Send(login)
	assert.Equal(t, login, fs.next(t))

	await(t, disconnected)
	assert.True(t, await(t, connected).Reconnect)
	assert.Equal(t, login, fs.next(t))
	assert.Equal(t, StateConnected, c.State())
}

func TestNetworkReconnectExhausted(t *testing.T) {
	fs := newFakeServer(t, true, 1)
	c, bus := newTestClient(t, fs.url(), testNetConfig())
	attempts := collect[Reconnecting](bus)
	failed := collect[ReconnectFailed](bus)

	require.NoError(t, c.Connect(context.Background()))
	c.Send(protocol.JoinLobby{})
	fs.next(t)

	first := await(t, attempts)
	second := await(t, attempts)
	assert.Equal(t, 1, first.Attempt)
	assert.Equal(t, 2, second.Attempt)
	assert.Equal(t, 2*first.Delay, second.Delay)

	ev := await(t, failed)
	assert.ErrorIs(t, ev.Err, ErrReconnectExhausted)
	assert.Eventually(t, func() bool { return c.State() == StateFailed }, time.Second, 5*time.Millisecond)
}

func TestNetworkConnectTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		var held []net.Conn
		defer func() {
			for _, conn := range held {
				conn.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			held = append(held, conn)
		}
	}()

	cfg := testNetConfig()
	cfg.ConnectTimeout = 50 * time.Millisecond
	c, _ := newTestClient(t, "ws://"+ln.Addr().String(), cfg)

	err = c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnectTimeout)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestNetworkCloseStopsReconnect(t *testing.T) {
	fs := newFakeServer(t, false, 0)
	c, bus := newTestClient(t, fs.url(), testNetConfig())
	attempts := collect[Reconnecting](bus)

	require.NoError(t, c.Connect(context.Background()))
	c.Close()

	assert.Eventually(t, func() bool { return c.State() == StateDisconnected }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Connect(context.Background()), ErrClosed)
	select {
	case <-attempts:
		t.Error("client reconnected after Close()")
	case <-time.After(50 * time.Millisecond):
	}
}
