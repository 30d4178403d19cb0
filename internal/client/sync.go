package client

import (
	"math"
	"sync"
	"time"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// Role says whether this peer simulates the match or follows snapshots.
type Role int

const (
	RoleFollower  Role = iota // renders authoritative snapshots, sends only actions
	RoleAuthority             // owns the state and publishes it
)

func (r Role) String() string {
	if r == RoleAuthority {
		return "authority"
	}
	return "follower"
}

// SyncStats are diagnostic counters. Nothing reads them for control flow.
type SyncStats struct {
	Received    uint64
	Sent        uint64
	Corrections uint64
	Predictions uint64
}

// Accuracy is the share of snapshots that needed no correction.
func (s SyncStats) Accuracy() float64 {
	if s.Received == 0 {
		return 1
	}
	return 1 - float64(s.Corrections)/float64(s.Received)
}

// Tuning is the adjustable part of the sync configuration.
type Tuning struct {
	Threshold  float64 // positional difference that triggers a correction
	Interval   time.Duration
	Prediction bool
}

type bufferedSnapshot struct {
	state      pong.MatchState
	receivedAt time.Time
}

// SyncManager reconciles the locally rendered state with authoritative
// snapshots. Scores and match flags always come verbatim from the latest
// snapshot; only positions are smoothed.
type SyncManager struct {
	mu sync.Mutex

	engine      *pong.Engine
	role        Role
	seat        pong.PlayerID
	bufferSize  int
	ballAlpha   float64
	paddleAlpha float64
	smoothing   bool
	base        Tuning
	tuning      Tuning

	buffer   []bufferedSnapshot
	local    pong.MatchState
	lastSent time.Time
	stats    SyncStats

	now func() time.Time
}

// NewSyncManager creates a manager for the given seat.
func NewSyncManager(cfg config.SyncConfig, params pong.Params, role Role, seat pong.PlayerID) *SyncManager {
	base := Tuning{
		Threshold:  cfg.CorrectionThreshold,
		Interval:   cfg.Interval,
		Prediction: cfg.Prediction,
	}
	return &SyncManager{
		engine:      pong.NewEngine(params),
		role:        role,
		seat:        seat,
		bufferSize:  max(1, cfg.BufferSize),
		ballAlpha:   cfg.BallSmoothing,
		paddleAlpha: cfg.PaddleSmoothing,
		smoothing:   cfg.Smoothing,
		base:        base,
		tuning:      base,
		local:       pong.NewMatchState(params),
		now:         time.Now,
	}
}

// SetSeat changes which paddle is ours, e.g. after playerId arrives.
func (m *SyncManager) SetSeat(seat pong.PlayerID) {
	m.mu.Lock()
	m.seat = seat
	m.mu.Unlock()
}

// State returns a copy of the state to render.
func (m *SyncManager) State() pong.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.local
}

// Stats returns the diagnostic counters.
func (m *SyncManager) Stats() SyncStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Tuning returns the current latency-adjusted settings.
func (m *SyncManager) Tuning() Tuning {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tuning
}

// Buffered returns the retained snapshots, oldest first.
func (m *SyncManager) Buffered() []pong.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pong.MatchState, len(m.buffer))
	for i, b := range m.buffer {
		out[i] = b.state
	}
	return out
}

// Reset drops buffered snapshots, counters and latency tuning, and returns
// the local state to the initial layout.
func (m *SyncManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer = nil
	m.stats = SyncStats{}
	m.tuning = m.base
	m.lastSent = time.Time{}
	m.local = pong.NewMatchState(m.engine.Params())
}

// ApplySnapshot folds an authoritative snapshot into the local state and
// reports whether a positional correction was made.
func (m *SyncManager) ApplySnapshot(snap pong.Snapshot) bool {
	server := snap.State()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer = append(m.buffer, bufferedSnapshot{state: server, receivedAt: m.now()})
	if len(m.buffer) > m.bufferSize {
		m.buffer = m.buffer[len(m.buffer)-m.bufferSize:]
	}
	m.stats.Received++

	corrected := false
	switch {
	case !m.smoothing:
		corrected = positionDiff(m.local, server) > m.tuning.Threshold
		m.local.Ball = server.Ball
		m.local.Paddle1 = server.Paddle1
		m.local.Paddle2 = server.Paddle2
	case server.Ball.Paused || m.local.Ball.Paused:
		// Serves and goals are discrete jumps; blending them reads as lag.
		m.local.Ball = server.Ball
		m.blendPaddles(server)
	case positionDiff(m.local, server) > m.tuning.Threshold:
		m.blendBall(server.Ball)
		m.blendPaddles(server)
		corrected = true
	}
	if corrected {
		m.stats.Corrections++
	}

	m.local.Score1 = server.Score1
	m.local.Score2 = server.Score2
	m.local.Running = server.Running
	m.local.Paused = server.Paused
	m.local.WaitingForLaunch = server.WaitingForLaunch
	m.local.LastScorer = server.LastScorer
	m.local.Winner = server.Winner
	return corrected
}

func (m *SyncManager) blendBall(b pong.Ball) {
	a := m.ballAlpha
	l := &m.local.Ball
	l.X = lerp(l.X, b.X, a)
	l.Y = lerp(l.Y, b.Y, a)
	l.DX = lerp(l.DX, b.DX, a)
	l.DY = lerp(l.DY, b.DY, a)
	l.Radius = b.Radius
	l.Paused = b.Paused
}

// blendPaddles eases the opponent's paddle toward the snapshot. Our own
// paddle follows local input and only snaps when it has drifted past the
// threshold.
func (m *SyncManager) blendPaddles(server pong.MatchState) {
	for _, id := range []pong.PlayerID{pong.Player1, pong.Player2} {
		local, remote := m.local.Paddle(id), server.Paddle(id)
		if id == m.seat {
			if math.Abs(local.Y-remote.Y) > m.tuning.Threshold {
				*local = *remote
			}
			continue
		}
		local.Y = lerp(local.Y, remote.Y, m.paddleAlpha)
		local.DY = remote.DY
		local.X, local.Width, local.Height = remote.X, remote.Width, remote.Height
	}
}

// Predict advances the local state between snapshots. Goals detected here are
// ignored: scoring is the server's call.
func (m *SyncManager) Predict(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tuning.Prediction || !m.local.Running {
		return
	}
	m.engine.Advance(&m.local, dt)
	m.stats.Predictions++
}

// MoveOwnPaddle applies local input immediately so the player's paddle
// responds without waiting for the server.
func (m *SyncManager) MoveOwnPaddle(dir float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.SetPaddleDirection(&m.local, m.seat, dir)
}

// SetLatency adapts the threshold and send interval to the measured round
// trip: high latency tolerates larger drift and sends less often.
func (m *SyncManager) SetLatency(rtt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tuning = TuningForLatency(rtt)
}

// TuningForLatency returns the tier for a round-trip time.
func TuningForLatency(rtt time.Duration) Tuning {
	switch {
	case rtt > 100*time.Millisecond:
		return Tuning{Threshold: 20, Interval: 100 * time.Millisecond, Prediction: true}
	case rtt > 50*time.Millisecond:
		return Tuning{Threshold: 15, Interval: 75 * time.Millisecond, Prediction: true}
	default:
		return Tuning{Threshold: 10, Interval: 50 * time.Millisecond, Prediction: false}
	}
}

// OutgoingState returns the state to publish when this peer is the authority
// and the send interval has elapsed.
func (m *SyncManager) OutgoingState() (pong.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.role != RoleAuthority {
		return pong.Snapshot{}, false
	}
	now := m.now()
	if !m.lastSent.IsZero() && now.Sub(m.lastSent) < m.tuning.Interval {
		return pong.Snapshot{}, false
	}
	m.lastSent = now
	m.stats.Sent++
	return m.local.Snapshot(), true
}

// AllowAction reports whether msg may be sent. A follower only sends
// discrete actions, and only launches when it is the seat allowed to serve.
func (m *SyncManager) AllowAction(msg protocol.ClientMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := true
	if m.role == RoleFollower {
		switch msg.(type) {
		case protocol.Input, protocol.InputStop, protocol.MouseInput:
		case protocol.LaunchBall:
			allowed = m.local.WaitingForLaunch && m.seat != m.local.LastScorer
		default:
			allowed = false
		}
	}
	if allowed {
		m.stats.Sent++
	}
	return allowed
}

// RollbackTo restores positions from the buffered snapshot received closest
// to t. Scores stay as they are. It reports false when nothing is buffered.
func (m *SyncManager) RollbackTo(t time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buffer) == 0 {
		return false
	}
	best := m.buffer[0]
	for _, b := range m.buffer[1:] {
		if absDuration(b.receivedAt.Sub(t)) < absDuration(best.receivedAt.Sub(t)) {
			best = b
		}
	}
	m.local.Ball = best.state.Ball
	m.local.Paddle1 = best.state.Paddle1
	m.local.Paddle2 = best.state.Paddle2
	return true
}

// SetLocal replaces the local state. The authority calls this after each
// step of its own simulation.
func (m *SyncManager) SetLocal(s pong.MatchState) {
	m.mu.Lock()
	m.local = s
	m.mu.Unlock()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// positionDiff is the sum of absolute coordinate deltas of the ball and both
// paddles.
func positionDiff(a, b pong.MatchState) float64 {
	return math.Abs(a.Ball.X-b.Ball.X) +
		math.Abs(a.Ball.Y-b.Ball.Y) +
		math.Abs(a.Paddle1.Y-b.Paddle1.Y) +
		math.Abs(a.Paddle2.Y-b.Paddle2.Y)
}

func lerp(from, to, alpha float64) float64 {
	return from + (to-from)*alpha
}
