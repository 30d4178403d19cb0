package server

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pong-ultimate/internal/multiplayer"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
	"github.com/vovakirdan/pong-ultimate/internal/storage"
)

const minCredentialLength = 3

// conn is one WebSocket client. Everything the client is sent goes through
// the embedded session's outbox.
type conn struct {
	*multiplayer.ChannelSession

	srv       *Server
	ws        *websocket.Conn
	closeOnce sync.Once

	mu       sync.Mutex
	username string // empty until login succeeds
}

func (c *conn) user() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *conn) setUser(name string) {
	c.mu.Lock()
	c.username = name
	c.mu.Unlock()
}

func newConn(srv *Server, ws *websocket.Conn) *conn {
	return &conn{
		ChannelSession: multiplayer.NewChannelSession(multiplayer.NewSessionID(), srv.cfg.SendBuffer),
		srv:            srv,
		ws:             ws,
	}
}

// close tears the connection down exactly once: the coordinator hears about
// it a single time and later messages find a closed session.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		c.srv.sessions.Unregister(c.ID())
		c.ChannelSession.Close()
		c.srv.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: c.ID()})
		name := c.user()
		if name != "" {
			c.srv.logins.release(name, c.ID())
		}
		c.ws.Close()
		c.srv.log.Debug("connection closed", "session", c.ID(), "user", name)
	})
}

// readPump decodes inbound frames until the socket fails.
func (c *conn) readPump() {
	defer c.close()

	cfg := c.srv.cfg
	c.ws.SetReadLimit(cfg.ReadLimit)
	c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.srv.log.Warn("websocket read failed", "session", c.ID(), "err", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			c.srv.log.Warn("dropping message", "session", c.ID(), "err", err)
			continue
		}
		c.dispatch(msg)
	}
}

// writePump drains the outbox and keeps the peer alive with pings.
func (c *conn) writePump() {
	cfg := c.srv.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.Outbox():
			data, err := protocol.EncodeServer(msg)
			if err != nil {
				c.srv.log.Error("encode failed", "type", msg.Type(), "err", err)
				continue
			}
			c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.Done():
			c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// dispatch routes one decoded message. A panic in a handler is logged and
// the connection stays up.
func (c *conn) dispatch(msg protocol.ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.srv.log.Error("panic in handler", "type", msg.Type(), "panic", r, "stack", string(debug.Stack()))
			c.Send(protocol.Error{Message: "server error"})
		}
	}()

	switch m := msg.(type) {
	case protocol.Login:
		c.handleLogin(m)
	case protocol.Register:
		c.handleRegister(m)
	case protocol.GetStats:
		c.handleGetStats()
	case protocol.Ping:
		c.Send(protocol.Pong{})
	default:
		c.forward(m)
	}
}

// forward hands lobby and gameplay commands to the coordinator.
func (c *conn) forward(msg protocol.ClientMessage) {
	name := c.user()
	if name == "" {
		c.Send(protocol.Error{Message: "not authenticated"})
		return
	}

	id := c.ID()
	var out multiplayer.CoordinatorMessage
	switch m := msg.(type) {
	case protocol.JoinLobby:
		out = multiplayer.JoinLobbyMsg{SessionID: id, Username: name}
	case protocol.LeaveLobby:
		out = multiplayer.LeaveLobbyMsg{SessionID: id}
	case protocol.PlayerReady:
		out = multiplayer.ReadyMsg{SessionID: id, Ready: m.Ready}
	case protocol.Input:
		out = multiplayer.MoveMsg{SessionID: id, Direction: m.Input.Sign()}
	case protocol.InputStop:
		out = multiplayer.MoveMsg{SessionID: id}
	case protocol.MouseInput:
		out = multiplayer.PositionMsg{SessionID: id, Y: m.PaddleY}
	case protocol.LaunchBall:
		out = multiplayer.LaunchMsg{SessionID: id}
	default:
		c.srv.log.Warn("unhandled message", "type", msg.Type())
		return
	}
	c.srv.coord.Send(out)
}

func (c *conn) storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.srv.storeTimeout)
}

// handleLogin authenticates the connection once. Switching users on a live
// connection is refused since a seat is bound to the name it was taken with.
func (c *conn) handleLogin(m protocol.Login) {
	if prev := c.user(); prev != "" {
		c.Send(protocol.LoginResult{Message: "already logged in as " + prev})
		return
	}

	ctx, cancel := c.storeContext()
	defer cancel()

	user, err := c.srv.users.FindUser(ctx, m.Username)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		c.Send(protocol.LoginResult{Message: "user not found"})
		return
	case err != nil:
		c.srv.log.Error("login lookup failed", "user", m.Username, "err", err)
		c.Send(protocol.LoginResult{Message: "server error"})
		return
	}
	if !storage.CheckPassword(user.PasswordHash, m.Password) {
		c.Send(protocol.LoginResult{Message: "wrong password"})
		return
	}
	if !c.srv.logins.claim(user.Username, c.ID()) {
		c.Send(protocol.LoginResult{Message: "user already connected"})
		return
	}
	c.setUser(user.Username)

	c.srv.log.Info("user logged in", "user", user.Username, "session", c.ID())
	stats := toWireStats(user.Stats)
	c.Send(protocol.LoginResult{Success: true, Username: user.Username, Stats: &stats})
}

func (c *conn) handleRegister(m protocol.Register) {
	if len(m.Username) < minCredentialLength || len(m.Password) < minCredentialLength {
		c.Send(protocol.RegisterResult{
			Message: fmt.Sprintf("username and password must be at least %d characters", minCredentialLength),
		})
		return
	}

	hash, err := storage.HashPassword(m.Password)
	if err != nil {
		c.srv.log.Error("hash failed", "err", err)
		c.Send(protocol.RegisterResult{Message: "server error"})
		return
	}

	ctx, cancel := c.storeContext()
	defer cancel()
	err = c.srv.users.CreateUser(ctx, storage.User{Username: m.Username, PasswordHash: hash})
	switch {
	case errors.Is(err, storage.ErrUserExists):
		c.Send(protocol.RegisterResult{Message: "username already exists"})
	case err != nil:
		c.srv.log.Error("register failed", "user", m.Username, "err", err)
		c.Send(protocol.RegisterResult{Message: "server error"})
	default:
		c.srv.log.Info("user registered", "user", m.Username)
		c.Send(protocol.RegisterResult{Success: true, Message: "registration successful"})
	}
}

func (c *conn) handleGetStats() {
	name := c.user()
	if name == "" {
		c.Send(protocol.Error{Message: "not authenticated"})
		return
	}
	ctx, cancel := c.storeContext()
	defer cancel()

	user, err := c.srv.users.FindUser(ctx, name)
	if err != nil {
		c.srv.log.Error("stats lookup failed", "user", name, "err", err)
		c.Send(protocol.Error{Message: "server error"})
		return
	}
	c.Send(protocol.UserStats{Username: user.Username, Stats: toWireStats(user.Stats)})
}

func toWireStats(s storage.Stats) protocol.Stats {
	return protocol.Stats{Wins: s.Wins, Losses: s.Losses, Games: s.Games}
}
