package multiplayer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
	"github.com/vovakirdan/pong-ultimate/internal/protocol"
)

// CoordinatorConfig holds match rules and pacing.
type CoordinatorConfig struct {
	Params            pong.Params
	TickRate          int // Hz
	WinningScore      int
	CountdownFrom     int
	CountdownInterval time.Duration
	StartDelay        time.Duration // both ready -> first countdown value
	ResetDelay        time.Duration // gameEnd -> lobby reset
	SaveTimeout       time.Duration
}

// CoordinatorConfigFrom extracts coordinator settings from the loaded config.
func CoordinatorConfigFrom(cfg config.PongConfig) CoordinatorConfig {
	return CoordinatorConfig{
		Params:            pong.ParamsFromConfig(cfg),
		TickRate:          cfg.Server.TickRate,
		WinningScore:      cfg.Gameplay.WinningScore,
		CountdownFrom:     cfg.Gameplay.CountdownFrom,
		CountdownInterval: cfg.Gameplay.CountdownInterval,
		StartDelay:        cfg.Gameplay.StartDelay,
		ResetDelay:        cfg.Gameplay.ResetDelay,
		SaveTimeout:       5 * time.Second,
	}
}

// DefaultCoordinatorConfig returns the classic rules: first to 5, 60 Hz.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfigFrom(config.DefaultPongConfig())
}

type timerKind int

const (
	timerNone timerKind = iota
	timerStart
	timerCountdown
	timerReset
)

type inputKind int

const (
	inputNone inputKind = iota
	inputMove
	inputPosition
)

// pendingInput is the last command a seat sent since the previous tick.
type pendingInput struct {
	kind   inputKind
	dir    float64
	y      float64
	launch bool
}

// Coordinator owns the lobby and the single MatchState. Every mutation happens
// on the goroutine started by Start; other goroutines talk to it through Send.
type Coordinator struct {
	config   CoordinatorConfig
	engine   *pong.Engine
	rng      *rand.Rand
	sessions *SessionRegistry
	saver    MatchResultSaver // Optional, can be nil
	log      *log.Logger

	lobby     *Lobby
	state     pong.MatchState
	phase     Phase
	armed     bool // countdown already triggered for the current ready pair
	countdown int
	matchID   MatchID
	startedAt time.Time
	pending   [2]pendingInput

	timer     *time.Timer
	timerKind timerKind
	ticker    *time.Ticker

	statusMu sync.RWMutex
	status   Status

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator with an empty lobby.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	c := &Coordinator{
		config:   cfg,
		engine:   pong.NewEngine(cfg.Params),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // gameplay randomness
		sessions: sessions,
		log:      logger,
		lobby:    NewLobby(),
		state:    pong.NewMatchState(cfg.Params),
		msgChan:  make(chan CoordinatorMessage, 256),
		done:     make(chan struct{}),
	}
	c.publishStatus()
	return c
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.saver = saver
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.run()
}

// Stop shuts down the coordinator. Safe to call multiple times.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// Send queues a message for the coordinator goroutine.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// Status returns the most recently published view of the lobby and match.
func (c *Coordinator) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

func (c *Coordinator) run() {
	defer c.stopTimers()
	for {
		var tickC, timerC <-chan time.Time
		if c.ticker != nil {
			tickC = c.ticker.C
		}
		if c.timer != nil {
			timerC = c.timer.C
		}

		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-tickC:
			c.tick()
		case <-timerC:
			c.fireTimer()
		case <-c.done:
			return
		}
		c.publishStatus()
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case JoinLobbyMsg:
		c.handleJoin(m)
	case LeaveLobbyMsg:
		c.vacate(m.SessionID, "left")
	case SessionDisconnectedMsg:
		c.vacate(m.SessionID, "disconnected")
	case ReadyMsg:
		c.handleReady(m)
	case MoveMsg:
		if p := c.inputSeat(m.SessionID); p != NoPlayer {
			in := &c.pending[p-1]
			in.kind, in.dir = inputMove, m.Direction
		}
	case PositionMsg:
		if p := c.inputSeat(m.SessionID); p != NoPlayer {
			in := &c.pending[p-1]
			in.kind, in.y = inputPosition, m.Y
		}
	case LaunchMsg:
		if p := c.inputSeat(m.SessionID); p != NoPlayer {
			c.pending[p-1].launch = true
		}
	}
}

func (c *Coordinator) handleJoin(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}
	select {
	case <-session.Done():
		c.log.Debug("join from closed session ignored", "session", msg.SessionID)
		return
	default:
	}
	if msg.Username == "" {
		session.Send(protocol.Error{Message: "not authenticated"})
		return
	}

	id, err := c.lobby.Take(session, msg.Username)
	if err != nil {
		session.Send(protocol.Error{Message: err.Error()})
		return
	}
	if c.phase == PhaseEmpty {
		c.phase = PhaseSeating
	}

	c.log.Info("player seated", "user", msg.Username, "seat", int(id))
	session.Send(protocol.PlayerIDAssigned{ID: id})
	c.lobby.Broadcast(c.lobby.Update())
}

func (c *Coordinator) handleReady(msg ReadyMsg) {
	id := c.lobby.SeatOf(msg.SessionID)
	if id == NoPlayer {
		return
	}

	c.lobby.SetReady(id, msg.Ready)
	if c.lobby.NoneReady() {
		c.armed = false
	}
	c.log.Debug("ready changed", "seat", int(id), "ready", msg.Ready)
	c.lobby.Broadcast(c.lobby.Update())

	switch {
	case c.phase == PhaseSeating && !c.armed && c.lobby.Count() == 2 && c.lobby.BothReady():
		c.armed = true
		c.phase = PhaseBothReady
		c.schedule(c.config.StartDelay, timerStart)
		c.log.Info("both players ready")
	case c.phase == PhaseBothReady && !c.lobby.BothReady():
		// Countdown has not begun yet, so this pair may try again.
		c.cancelTimer()
		c.armed = false
		c.phase = PhaseSeating
	}
}

// inputSeat returns the seat of a session whose gameplay input is currently
// accepted, or NoPlayer.
func (c *Coordinator) inputSeat(id SessionID) PlayerID {
	if c.phase != PhaseRunning && c.phase != PhaseGoalPause {
		return NoPlayer
	}
	return c.lobby.SeatOf(id)
}

// vacate frees a seat. A match in progress is aborted and both ready flags
// clear; the remaining seat is told its opponent left.
func (c *Coordinator) vacate(id SessionID, why string) {
	seat := c.lobby.SeatOf(id)
	if seat == NoPlayer {
		return
	}
	p1, p2 := c.lobby.Username(Player1), c.lobby.Username(Player2)
	c.log.Info("player "+why, "user", c.lobby.Username(seat), "seat", int(seat), "phase", c.phase)

	wasActive := c.phase.InMatch()
	c.lobby.Vacate(id)
	c.armed = false

	switch {
	case wasActive:
		c.stopTimers()
		if !c.startedAt.IsZero() {
			c.persist(MatchEndReasonAborted, NoPlayer, p1, p2)
		}
		c.state.Reset(c.config.Params)
		c.matchID, c.startedAt = "", time.Time{}
		c.lobby.ClearReady()
		c.phase = PhaseSeating
	case c.phase == PhaseBothReady:
		c.cancelTimer()
		c.lobby.ClearReady()
		c.phase = PhaseSeating
	}
	if c.phase == PhaseSeating && c.lobby.Count() == 0 {
		c.phase = PhaseEmpty
	}

	c.lobby.Broadcast(protocol.PlayerLeft{})
	c.lobby.Broadcast(c.lobby.Update())
}

func (c *Coordinator) fireTimer() {
	kind := c.timerKind
	c.timer, c.timerKind = nil, timerNone

	switch kind {
	case timerStart:
		c.beginCountdown()
	case timerCountdown:
		c.countdownStep()
	case timerReset:
		c.finishReset()
	}
}

func (c *Coordinator) beginCountdown() {
	if c.phase != PhaseBothReady {
		return
	}
	c.phase = PhaseCountdown
	c.matchID = NewMatchID()
	c.startedAt = time.Time{}
	c.state.Reset(c.config.Params)
	c.countdown = c.config.CountdownFrom
	c.log.Info("countdown started", "match", c.matchID)
	c.countdownStep()
}

// countdownStep emits the next value: CountdownFrom..1 at fixed intervals,
// then "go" immediately followed by gameStart.
func (c *Coordinator) countdownStep() {
	if c.phase != PhaseCountdown {
		return
	}
	if c.countdown > 0 {
		c.lobby.Broadcast(protocol.Countdown{Count: protocol.CountdownValue(c.countdown)})
		c.countdown--
		c.schedule(c.config.CountdownInterval, timerCountdown)
		return
	}
	c.lobby.Broadcast(protocol.Countdown{Count: protocol.CountdownGo})
	c.startRunning()
}

func (c *Coordinator) startRunning() {
	c.phase = PhaseRunning
	c.startedAt = time.Now()
	c.pending = [2]pendingInput{}
	c.state.Running = true

	dir := 1.0
	if c.rng.Intn(2) == 0 {
		dir = -1
	}
	c.engine.Serve(&c.state, dir, c.rng)

	c.lobby.Broadcast(protocol.GameStart{})
	c.ticker = time.NewTicker(time.Second / time.Duration(max(1, c.config.TickRate)))
	c.log.Info("match running", "match", c.matchID)
}

// tick is one fixed-rate step: apply buffered commands, advance physics,
// resolve a goal, then broadcast.
func (c *Coordinator) tick() {
	if c.phase != PhaseRunning && c.phase != PhaseGoalPause {
		return
	}

	c.applyInputs()
	res := c.engine.Advance(&c.state, 1)
	if res.Goal != NoPlayer && c.scoreGoal(res.Goal) {
		return
	}
	c.lobby.Broadcast(protocol.GameState{State: c.state.Snapshot()})
}

func (c *Coordinator) applyInputs() {
	for i := range c.pending {
		id := PlayerID(i + 1)
		in := c.pending[i]
		c.pending[i] = pendingInput{}

		switch in.kind {
		case inputMove:
			c.engine.SetPaddleDirection(&c.state, id, in.dir)
		case inputPosition:
			c.engine.SetPaddlePosition(&c.state, id, in.y)
		}
		if !in.launch {
			continue
		}
		if c.phase == PhaseGoalPause && c.canServe(id) {
			c.launch()
		} else {
			c.log.Debug("launch ignored", "seat", int(id), "phase", c.phase)
		}
	}
}

// canServe reports whether the seat may launch: the seat that just scored
// never serves.
func (c *Coordinator) canServe(id PlayerID) bool {
	return c.state.LastScorer == NoPlayer || id != c.state.LastScorer
}

func (c *Coordinator) launch() {
	c.engine.Serve(&c.state, pong.ServeDirection(c.state.LastScorer), c.rng)
	c.phase = PhaseRunning
	c.lobby.Broadcast(protocol.BallLaunched{})
}

// scoreGoal books a point and reports whether it ended the match.
func (c *Coordinator) scoreGoal(scorer PlayerID) bool {
	score := c.state.AddPoint(scorer)
	c.state.LastScorer = scorer
	c.state.CenterBall(c.config.Params)
	c.state.WaitingForLaunch = true
	c.phase = PhaseGoalPause

	c.log.Info("goal", "scorer", int(scorer), "score1", c.state.Score1, "score2", c.state.Score2)
	c.lobby.Broadcast(protocol.Goal{Scorer: scorer})

	if score >= c.config.WinningScore {
		c.endMatch(scorer)
		return true
	}
	c.lobby.Broadcast(protocol.WaitingForLaunch{LastScorer: scorer})
	return false
}

func (c *Coordinator) endMatch(winner PlayerID) {
	c.stopTicker()
	c.state.Running = false
	c.state.WaitingForLaunch = false
	c.state.Winner = winner
	c.phase = PhaseEnded

	c.lobby.Broadcast(protocol.GameState{State: c.state.Snapshot()})
	c.lobby.Broadcast(protocol.GameEnd{
		Winner:     winner,
		FinalScore: protocol.FinalScore{Player1: c.state.Score1, Player2: c.state.Score2},
	})
	c.log.Info("match ended", "match", c.matchID, "winner", int(winner),
		"score1", c.state.Score1, "score2", c.state.Score2)

	c.persist(MatchEndReasonCompleted, winner, c.lobby.Username(Player1), c.lobby.Username(Player2))
	c.schedule(c.config.ResetDelay, timerReset)
}

// finishReset returns an ended match to the lobby. Seats stay occupied.
func (c *Coordinator) finishReset() {
	if c.phase != PhaseEnded {
		return
	}
	c.state.Reset(c.config.Params)
	c.lobby.ClearReady()
	c.armed = false
	c.matchID = ""
	c.startedAt = time.Time{}
	c.phase = PhaseSeating
	if c.lobby.Count() == 0 {
		c.phase = PhaseEmpty
	}
	c.lobby.Broadcast(c.lobby.Update())
}

// persist hands the result to the saver off the tick goroutine. Broadcasts
// have already gone out by the time this runs.
func (c *Coordinator) persist(reason MatchEndReason, winner PlayerID, p1, p2 string) {
	if c.saver == nil {
		return
	}
	data := MatchResultData{
		MatchID:      c.matchID,
		Player1:      p1,
		Player2:      p2,
		Score1:       c.state.Score1,
		Score2:       c.state.Score2,
		Winner:       winner,
		Reason:       reason,
		DurationSecs: int(time.Since(c.startedAt).Seconds()),
	}
	saver, timeout, logger := c.saver, c.config.SaveTimeout, c.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := saver.SaveMatchResult(ctx, data); err != nil {
			logger.Error("failed to save match result", "match", data.MatchID, "err", err)
		}
	}()
}

func (c *Coordinator) schedule(d time.Duration, kind timerKind) {
	c.cancelTimer()
	c.timer = time.NewTimer(d)
	c.timerKind = kind
}

func (c *Coordinator) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer, c.timerKind = nil, timerNone
}

func (c *Coordinator) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Coordinator) stopTimers() {
	c.cancelTimer()
	c.stopTicker()
}

func (c *Coordinator) publishStatus() {
	st := Status{
		Phase:        c.phase.String(),
		MatchID:      string(c.matchID),
		Player1:      c.lobby.Username(Player1),
		Player2:      c.lobby.Username(Player2),
		PlayersCount: c.lobby.Count(),
		Score1:       c.state.Score1,
		Score2:       c.state.Score2,
	}
	c.statusMu.Lock()
	c.status = st
	c.statusMu.Unlock()
}
