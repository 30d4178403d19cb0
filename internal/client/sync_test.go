package client

import (
	"testing"
	"time"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		BufferSize:          3,
		Interval:            50 * time.Millisecond,
		CorrectionThreshold: 10,
		BallSmoothing:       0.3,
		PaddleSmoothing:     0.5,
		Smoothing:           true,
		Prediction:          true,
	}
}

func newTestSync(role Role) *SyncManager {
	return NewSyncManager(testSyncConfig(), pong.DefaultParams(), role, pong.Player1)
}

// movingSnapshot is a running match with the ball in flight at x.
func movingSnapshot(x float64) pong.Snapshot {
	s := pong.NewMatchState(pong.DefaultParams())
	s.Running = true
	s.Ball.X = x
	s.Ball.DX = 5
	s.Ball.Paused = false
	return s.Snapshot()
}

func TestApplySnapshotBlendsPastThreshold(t *testing.T) {
	m := newTestSync(RoleFollower)

	if m.ApplySnapshot(movingSnapshot(400)) {
		t.Error("first snapshot over a paused local ball should snap, not correct")
	}
	if got := m.State().Ball.X; got != 400 {
		t.Fatalf("Ball.X = %v, expected 400", got)
	}

	if m.ApplySnapshot(movingSnapshot(405)) {
		t.Error("ApplySnapshot() below threshold = true, expected false")
	}
	if got := m.State().Ball.X; got != 400 {
		t.Errorf("Ball.X below threshold = %v, expected unchanged 400", got)
	}

	if !m.ApplySnapshot(movingSnapshot(450)) {
		t.Error("ApplySnapshot() above threshold = false, expected true")
	}
	if got := m.State().Ball.X; got != 415 {
		t.Errorf("Ball.X after blend = %v, expected 415", got)
	}
	if got := m.Stats().Corrections; got != 1 {
		t.Errorf("Corrections = %d, expected 1", got)
	}
}

func TestApplySnapshotWithoutSmoothingSnaps(t *testing.T) {
	cfg := testSyncConfig()
	cfg.Smoothing = false
	m := NewSyncManager(cfg, pong.DefaultParams(), RoleFollower, pong.Player1)

	if m.ApplySnapshot(movingSnapshot(400)) {
		t.Error("ApplySnapshot() matching local state = true, expected false")
	}
	if !m.ApplySnapshot(movingSnapshot(600)) {
		t.Error("ApplySnapshot() 200 units off = false, expected true")
	}
	if got := m.State().Ball.X; got != 600 {
		t.Errorf("Ball.X = %v, expected 600", got)
	}
	stats := m.Stats()
	if stats.Corrections != 1 {
		t.Errorf("Corrections = %d, expected 1", stats.Corrections)
	}
	if got := stats.Accuracy(); got != 0.5 {
		t.Errorf("Accuracy() = %v, expected 0.5", got)
	}
}

func TestApplySnapshotScoresAreVerbatim(t *testing.T) {
	m := newTestSync(RoleFollower)

	snap := movingSnapshot(400)
	snap.Score1, snap.Score2 = 3, 4
	snap.WaitingForLaunch = true
	snap.LastScorer = pong.Player2
	m.ApplySnapshot(snap)

	s := m.State()
	if s.Score1 != 3 || s.Score2 != 4 {
		t.Errorf("scores = %d-%d, expected 3-4", s.Score1, s.Score2)
	}
	if !s.WaitingForLaunch || s.LastScorer != pong.Player2 {
		t.Errorf("flags = %v/%v, expected true/2", s.WaitingForLaunch, s.LastScorer)
	}
}

func TestApplySnapshotPaddles(t *testing.T) {
	m := newTestSync(RoleFollower)
	base := pong.NewMatchState(pong.DefaultParams())
	y1, y2 := base.Paddle1.Y, base.Paddle2.Y

	snap := base.Snapshot()
	snap.Paddle1.Y = y1 + 5
	snap.Paddle2.Y = y2 + 40
	m.ApplySnapshot(snap)

	s := m.State()
	if s.Paddle1.Y != y1 {
		t.Errorf("own paddle within threshold moved to %v, expected %v", s.Paddle1.Y, y1)
	}
	if expected := y2 + 20; s.Paddle2.Y != expected {
		t.Errorf("opponent paddle = %v, expected %v", s.Paddle2.Y, expected)
	}

	snap.Paddle1.Y = y1 + 50
	m.ApplySnapshot(snap)
	if got := m.State().Paddle1.Y; got != y1+50 {
		t.Errorf("own paddle past threshold = %v, expected snap to %v", got, y1+50)
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	m := newTestSync(RoleFollower)
	for i := range 5 {
		snap := movingSnapshot(400)
		snap.Score1 = i
		m.ApplySnapshot(snap)
	}

	buf := m.Buffered()
	if len(buf) != 3 {
		t.Fatalf("len(Buffered()) = %d, expected 3", len(buf))
	}
	if buf[0].Score1 != 2 || buf[2].Score1 != 4 {
		t.Errorf("buffer scores = %d..%d, expected 2..4", buf[0].Score1, buf[2].Score1)
	}
	if got := m.Stats().Received; got != 5 {
		t.Errorf("Received = %d, expected 5", got)
	}
}

func TestRollbackTo(t *testing.T) {
	m := newTestSync(RoleFollower)
	if m.RollbackTo(time.Now()) {
		t.Error("RollbackTo() on empty buffer = true, expected false")
	}

	start := time.Unix(1000, 0)
	now := start
	m.now = func() time.Time { return now }
	for i, x := range []float64{100, 200, 300} {
		now = start.Add(time.Duration(i) * 100 * time.Millisecond)
		m.ApplySnapshot(movingSnapshot(x))
	}

	if !m.RollbackTo(start.Add(90 * time.Millisecond)) {
		t.Fatal("RollbackTo() = false, expected true")
	}
	if got := m.State().Ball.X; got != 200 {
		t.Errorf("Ball.X after rollback = %v, expected 200", got)
	}
}

func TestPredict(t *testing.T) {
	m := newTestSync(RoleFollower)
	m.ApplySnapshot(movingSnapshot(400))

	m.Predict(1)
	if got := m.State().Ball.X; got != 405 {
		t.Errorf("Ball.X after Predict(1) = %v, expected 405", got)
	}

	m.SetLatency(10 * time.Millisecond)
	m.Predict(1)
	if got := m.State().Ball.X; got != 405 {
		t.Errorf("Ball.X with prediction off = %v, expected 405", got)
	}
	if got := m.Stats().Predictions; got != 1 {
		t.Errorf("Predictions = %d, expected 1", got)
	}
}

func TestTuningForLatency(t *testing.T) {
	tests := []struct {
		rtt       time.Duration
		threshold float64
		interval  time.Duration
	}{
		{20 * time.Millisecond, 10, 50 * time.Millisecond},
		{50 * time.Millisecond, 10, 50 * time.Millisecond},
		{80 * time.Millisecond, 15, 75 * time.Millisecond},
		{250 * time.Millisecond, 20, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.rtt.String(), func(t *testing.T) {
			got := TuningForLatency(tt.rtt)
			if got.Threshold != tt.threshold || got.Interval != tt.interval {
				t.Errorf("TuningForLatency(%v) = %+v, expected threshold %v interval %v",
					tt.rtt, got, tt.threshold, tt.interval)
			}
		})
	}
}

func TestOutgoingState(t *testing.T) {
	if _, ok := newTestSync(RoleFollower).OutgoingState(); ok {
		t.Error("follower OutgoingState() ok = true, expected false")
	}

	m := newTestSync(RoleAuthority)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	if _, ok := m.OutgoingState(); !ok {
		t.Error("first OutgoingState() ok = false, expected true")
	}
	now = now.Add(10 * time.Millisecond)
	if _, ok := m.OutgoingState(); ok {
		t.Error("OutgoingState() inside interval ok = true, expected false")
	}
	now = now.Add(50 * time.Millisecond)
	if _, ok := m.OutgoingState(); !ok {
		t.Error("OutgoingState() after interval ok = false, expected true")
	}
	if got := m.Stats().Sent; got != 2 {
		t.Errorf("Sent = %d, expected 2", got)
	}
}

func TestAllowAction(t *testing.T) {
	waiting := func(lastScorer pong.PlayerID) pong.Snapshot {
		s := pong.NewMatchState(pong.DefaultParams())
		s.Running = true
		s.WaitingForLaunch = true
		s.LastScorer = lastScorer
		return s.Snapshot()
	}

	tests := []struct {
		name     string
		role     Role
		snap     *pong.Snapshot
		msg      protocol.ClientMessage
		expected bool
	}{
		{"follower input", RoleFollower, nil, protocol.Input{Input: protocol.DirectionUp}, true},
		{"follower stop", RoleFollower, nil, protocol.InputStop{}, true},
		{"follower mouse", RoleFollower, nil, protocol.MouseInput{PaddleY: 10}, true},
		{"follower launch not waiting", RoleFollower, nil, protocol.LaunchBall{}, false},
		{"follower launch after own goal", RoleFollower, ptr(waiting(pong.Player1)), protocol.LaunchBall{}, false},
		{"follower launch after opponent goal", RoleFollower, ptr(waiting(pong.Player2)), protocol.LaunchBall{}, true},
		{"follower other", RoleFollower, nil, protocol.GetStats{}, false},
		{"authority anything", RoleAuthority, nil, protocol.GetStats{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestSync(tt.role)
			if tt.snap != nil {
				m.ApplySnapshot(*tt.snap)
			}
			if got := m.AllowAction(tt.msg); got != tt.expected {
				t.Errorf("AllowAction(%s) = %v, expected %v", tt.msg.Type(), got, tt.expected)
			}
		})
	}
}

func TestSyncStatsAccuracy(t *testing.T) {
	tests := []struct {
		stats    SyncStats
		expected float64
	}{
		{SyncStats{}, 1},
		{SyncStats{Received: 10}, 1},
		{SyncStats{Received: 10, Corrections: 4}, 0.6},
	}
	for _, tt := range tests {
		if got := tt.stats.Accuracy(); got != tt.expected {
			t.Errorf("Accuracy(%+v) = %v, expected %v", tt.stats, got, tt.expected)
		}
	}
}

func TestReset(t *testing.T) {
	m := newTestSync(RoleFollower)
	m.ApplySnapshot(movingSnapshot(450))
	m.SetLatency(time.Second)
	m.Reset()

	if len(m.Buffered()) != 0 || m.Stats() != (SyncStats{}) {
		t.Error("Reset() kept buffer or counters")
	}
	if got := m.Tuning().Threshold; got != 10 {
		t.Errorf("Threshold after Reset() = %v, expected 10", got)
	}
}

func ptr[T any](v T) *T { return &v }
