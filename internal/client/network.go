package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

var (
	// ErrConnectTimeout is returned when the dial does not finish in time.
	ErrConnectTimeout = errors.New("client: connection timed out")
	// ErrReconnectExhausted is reported after the last reconnect attempt fails.
	ErrReconnectExhausted = errors.New("client: reconnect attempts exhausted")
	// ErrClosed is returned by Connect after Close.
	ErrClosed = errors.New("client: closed")
)

// ConnState is the connection lifecycle.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed // reconnect budget spent
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const outboxSize = 64

// NetworkClient keeps one WebSocket connection to the match server. Messages
// sent while offline are queued and flushed on connect; a dropped connection
// is retried with linearly growing delays and the last login is replayed.
type NetworkClient struct {
	url string
	cfg config.SyncConfig
	bus *Bus
	log *log.Logger

	mu       sync.Mutex
	state    ConnState
	ws       *websocket.Conn
	outbox   chan []byte
	queue    []protocol.ClientMessage
	login    *protocol.Login
	pingSent time.Time
	latency  time.Duration
	closed   bool
	stop     chan struct{}
}

// NewNetworkClient creates an unconnected client for the ws:// or wss:// url.
func NewNetworkClient(url string, cfg config.SyncConfig, bus *Bus, logger *log.Logger) *NetworkClient {
	if logger == nil {
		logger = log.Default()
	}
	return &NetworkClient{
		url:  url,
		cfg:  cfg,
		bus:  bus,
		log:  logger,
		stop: make(chan struct{}),
	}
}

// State returns the connection state.
func (c *NetworkClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Latency returns the last measured round trip.
func (c *NetworkClient) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// Connect dials the server, bounded by the configured connect timeout.
func (c *NetworkClient) Connect(ctx context.Context) error {
	return c.connect(ctx, false)
}

func (c *NetworkClient) connect(ctx context.Context, reconnect bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	if !reconnect {
		c.state = StateConnecting
	}
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.ConnectTimeout}
	ws, _, err := dialer.DialContext(dialCtx, c.url, nil)
	if err != nil {
		c.setState(StateDisconnected)
		var ne net.Error
		if dialCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return ErrConnectTimeout
		}
		return fmt.Errorf("client: dial %s: %w", c.url, err)
	}

	outbox := make(chan []byte, outboxSize)
	c.mu.Lock()
	c.ws = ws
	c.outbox = outbox
	c.state = StateConnected
	pending := c.queue
	c.queue = nil
	login := c.login
	c.mu.Unlock()

	c.log.Info("connected", "url", c.url, "reconnect", reconnect)
	c.run(ws, outbox)
	c.bus.Publish(Connected{Reconnect: reconnect})

	if reconnect && login != nil {
		c.Send(*login)
	}
	for _, msg := range pending {
		c.Send(msg)
	}
	return nil
}

// run starts the per-connection pumps. When any of them ends, the others
// are cancelled and the drop is handled once.
func (c *NetworkClient) run(ws *websocket.Conn, outbox chan []byte) {
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return c.readLoop(ws) })
	g.Go(func() error { return c.writeLoop(ctx, ws, outbox) })
	g.Go(func() error { return c.pingLoop(ctx) })

	go func() {
		err := g.Wait()
		ws.Close()
		c.handleDrop(ws, err)
	}()
}

func (c *NetworkClient) readLoop(ws *websocket.Conn) error {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		msg, err := protocol.DecodeServer(data)
		if err != nil {
			c.log.Warn("dropping server message", "err", err)
			continue
		}
		if _, ok := msg.(protocol.Pong); ok {
			c.recordPong()
		}
		c.bus.Publish(MessageReceived{Msg: msg})
	}
}

func (c *NetworkClient) writeLoop(ctx context.Context, ws *websocket.Conn, outbox <-chan []byte) error {
	for {
		select {
		case data := <-outbox:
			ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				ws.Close()
				return err
			}
		case <-ctx.Done():
			return nil
		case <-c.stop:
			ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			ws.Close()
			return nil
		}
	}
}

func (c *NetworkClient) pingLoop(ctx context.Context) error {
	if c.cfg.PingInterval <= 0 {
		return nil
	}
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Ping()
		case <-ctx.Done():
			return nil
		case <-c.stop:
			return nil
		}
	}
}

// Ping sends a latency probe.
func (c *NetworkClient) Ping() {
	c.mu.Lock()
	c.pingSent = time.Now()
	c.mu.Unlock()
	c.Send(protocol.Ping{})
}

func (c *NetworkClient) recordPong() {
	c.mu.Lock()
	if c.pingSent.IsZero() {
		c.mu.Unlock()
		return
	}
	rtt := time.Since(c.pingSent)
	c.pingSent = time.Time{}
	c.latency = rtt
	c.mu.Unlock()
	c.bus.Publish(LatencyMeasured{RTT: rtt})
}

// Send writes msg, or queues it while offline. A login is remembered and
// replayed after a reconnect.
func (c *NetworkClient) Send(msg protocol.ClientMessage) {
	data, err := protocol.EncodeClient(msg)
	if err != nil {
		c.log.Error("encode failed", "type", msg.Type(), "err", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := msg.(protocol.Login); ok {
		c.login = &l
	}
	if c.state != StateConnected {
		c.queue = append(c.queue, msg)
		return
	}
	select {
	case c.outbox <- data:
	default:
		c.log.Warn("outbox full, dropping message", "type", msg.Type())
	}
}

func (c *NetworkClient) handleDrop(ws *websocket.Conn, err error) {
	c.mu.Lock()
	if c.ws != ws {
		c.mu.Unlock()
		return
	}
	c.ws = nil
	closed := c.closed
	if closed {
		c.state = StateDisconnected
	} else {
		c.state = StateReconnecting
	}
	c.mu.Unlock()

	if closed {
		return
	}
	c.log.Warn("connection lost", "err", err)
	c.bus.Publish(Disconnected{Err: err})
	c.reconnect()
}

// reconnect retries up to MaxReconnectAttempts times, waiting
// ReconnectDelay*attempt before each try.
func (c *NetworkClient) reconnect() {
	for attempt := 1; attempt <= c.cfg.MaxReconnectAttempts; attempt++ {
		delay := c.cfg.ReconnectDelay * time.Duration(attempt)
		c.bus.Publish(Reconnecting{Attempt: attempt, Delay: delay})

		select {
		case <-time.After(delay):
		case <-c.stop:
			return
		}

		err := c.connect(context.Background(), true)
		if err == nil {
			return
		}
		if errors.Is(err, ErrClosed) {
			return
		}
		c.log.Warn("reconnect failed", "attempt", attempt, "err", err)
		c.setState(StateReconnecting)
	}

	c.setState(StateFailed)
	c.bus.Publish(ReconnectFailed{Err: ErrReconnectExhausted})
}

func (c *NetworkClient) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Close ends the connection without reconnecting.
func (c *NetworkClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.stop)
	c.mu.Unlock()
}
