// Package server exposes the match coordinator over WebSocket: it upgrades
// connections, authenticates users against a storage.UserStore and maps each
// connection to a coordinator session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/multiplayer"
	"github.com/vovakirdan/pong-ultimate/internal/storage"
)

// Server is the HTTP + WebSocket front of the match coordinator.
type Server struct {
	cfg          config.ServerConfig
	users        storage.UserStore
	coord        *multiplayer.Coordinator
	sessions     *multiplayer.SessionRegistry
	logins       *loginTable
	log          *log.Logger
	upgrader     websocket.Upgrader
	storeTimeout time.Duration

	httpSrv *http.Server
}

// New wires a server around users. The coordinator is created here and
// persists results into the same store.
func New(cfg config.PongConfig, users storage.UserStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	sessions := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(
		multiplayer.CoordinatorConfigFrom(cfg),
		sessions,
		logger.WithPrefix("match"),
	)
	coord.SetResultSaver(storage.NewResultSaver(users))

	s := &Server{
		cfg:          cfg.Server,
		users:        users,
		coord:        coord,
		sessions:     sessions,
		logins:       newLoginTable(),
		log:          logger,
		storeTimeout: 5 * time.Second,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     isValidOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	s.httpSrv = &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// OpenStore opens the SQLite database at dsn and seeds demo accounts. When the
// database is unusable it falls back to an in-memory store with the demo
// accounts, logging the reason.
func OpenStore(ctx context.Context, dsn string, logger *log.Logger) storage.UserStore {
	db, err := storage.Open(dsn)
	if err == nil {
		if err = storage.SeedDemoAccounts(ctx, db); err == nil {
			logger.Info("database ready", "path", dsn)
			return db
		}
		db.Close()
	}

	logger.Warn("database unavailable, using in-memory store with demo accounts", "err", err)
	mem, memErr := storage.NewDemoMemoryStore()
	if memErr != nil {
		logger.Error("seeding demo accounts failed", "err", memErr)
		return storage.NewMemoryStore()
	}
	return mem
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/matches", s.handleMatches)
	return mux
}

// Start runs the coordinator loop. ListenAndServe calls it.
func (s *Server) Start() {
	s.coord.Start()
}

// ListenAndServe starts the coordinator and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	s.Start()
	s.log.Info("listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, stops the coordinator and closes the
// store.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.coord.Stop()
	if err := s.users.Close(); err != nil {
		errs = append(errs, fmt.Errorf("server: close store: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newConn(s, ws)
	s.sessions.Register(c)
	s.log.Debug("connection opened", "session", c.ID(), "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.sessions.Count(),
		"loggedIn":    s.logins.count(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Status())
}

type matchJSON struct {
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Score1    int       `json:"score1"`
	Score2    int       `json:"score2"`
	Winner    string    `json:"winner,omitempty"`
	EndReason string    `json:"endReason"`
	Duration  int       `json:"durationSecs"`
	PlayedAt  time.Time `json:"playedAt"`
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1-100"})
			return
		}
		limit = n
	}

	recs, err := s.users.RecentMatches(r.Context(), limit)
	if err != nil {
		s.log.Error("recent matches failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
		return
	}

	out := make([]matchJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, matchJSON{
			Player1:   rec.Player1,
			Player2:   rec.Player2,
			Score1:    rec.Score1,
			Score2:    rec.Score2,
			Winner:    rec.Winner,
			EndReason: rec.EndReason,
			Duration:  rec.Duration,
			PlayedAt:  rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// isValidOrigin accepts non-browser clients, same-origin pages and localhost.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".localhost")
}
