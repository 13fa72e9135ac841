package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seojin-dev/boardwatch/internal/board"
	"github.com/seojin-dev/boardwatch/internal/coalesce"
	"github.com/seojin-dev/boardwatch/internal/feed"
	"github.com/seojin-dev/boardwatch/internal/prefs"
	"github.com/seojin-dev/boardwatch/internal/snapshot"
	"github.com/seojin-dev/boardwatch/internal/tracker"
)

// Status is the lifecycle state of the one game the controller binds to.
type Status string

const (
	StatusIdle     Status = "IDLE"
	StatusWatching Status = "WATCHING"
	StatusActive   Status = "ACTIVE"
	StatusEnded    Status = "ENDED"
)

// Advisor produces a move recommendation for a position.
type Advisor interface {
	BestMove(ctx context.Context, fen string, elo int) (string, error)
}

// AdvisorFunc adapts a function to the Advisor interface.
type AdvisorFunc func(ctx context.Context, fen string, elo int) (string, error)

func (f AdvisorFunc) BestMove(ctx context.Context, fen string, elo int) (string, error) {
	return f(ctx, fen, elo)
}

// Archiver persists finished games. Optional.
type Archiver interface {
	SaveGame(ctx context.Context, rec *Record) error
}

// Record mirrors archive.Record without importing it, keeping the
// controller decoupled from the storage layer.
type Record struct {
	GameID      string
	SessionUUID string
	Winner      string
	Result      string
	Reason      string
	FinalFEN    string
	PlyCount    int
	StartedAt   time.Time
	EndedAt     time.Time
}

// Recommendation is surfaced to the presentation callback; it never feeds
// back into hidden state.
type Recommendation struct {
	GameID  string
	FEN     string
	MoveUCI string
	Elo     int
}

type Config struct {
	Debounce       time.Duration
	RequestTimeout time.Duration
}

type msgKind int

const (
	msgNotification msgKind = iota
	msgFlush
	msgReco
	msgPause
)

type message struct {
	kind   msgKind
	notif  *feed.Notification
	reco   recoResult
	paused bool
}

type recoResult struct {
	sessionUUID string
	key         string
	fen         string
	move        string
	elo         int
	err         error
}

// Controller binds the extractor, tracker and coalescer to the lifecycle
// of one game at a time. All mutable state is owned by a single event
// loop; feed callbacks, debounce fires and recommendation results are
// funneled through the inbox so every update cycle completes before the
// next notification is processed.
type Controller struct {
	cfg       Config
	extractor *snapshot.Extractor
	track     *tracker.Tracker
	coal      *coalesce.Coalescer
	prefs     prefs.Store
	advisor   Advisor
	archiver  Archiver
	logger    *zap.Logger

	status       Status
	gameID       string
	sessionUUID  string
	localColor   board.Color
	endedGameID  string
	startedAt    time.Time
	lastGameOver board.GameOverInfo
	requested    map[string]struct{}

	onReco func(Recommendation)

	viewMu sync.RWMutex
	view   struct {
		status Status
		gameID string
	}

	inbox    chan message
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewController(cfg Config, ex *snapshot.Extractor, store prefs.Store, advisor Advisor, logger *zap.Logger) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = coalesce.DefaultInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		cfg:       cfg,
		extractor: ex,
		track:     tracker.New(),
		prefs:     store,
		advisor:   advisor,
		logger:    logger,
		status:    StatusIdle,
		inbox:     make(chan message, 256),
		stopCh:    make(chan struct{}),
	}
	c.coal = coalesce.New(cfg.Debounce, func() { c.post(message{kind: msgFlush}) })
	c.publishView()
	return c
}

// AttachArchiver wires an optional finished-game sink.
func (c *Controller) AttachArchiver(a Archiver) { c.archiver = a }

// OnRecommendation registers the presentation callback. It is invoked from
// the event loop; keep it cheap.
func (c *Controller) OnRecommendation(fn func(Recommendation)) { c.onReco = fn }

// Start launches the event loop and arms game detection.
func (c *Controller) Start() {
	c.status = StatusWatching
	c.publishView()
	c.wg.Add(1)
	go c.loop()
	c.logger.Info("session_start")
}

func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	c.coal.Stop()
}

// HandleNotification is the feed callback; safe from any goroutine.
func (c *Controller) HandleNotification(n *feed.Notification) {
	if n == nil {
		return
	}
	c.post(message{kind: msgNotification, notif: n})
}

// SetPaused persists the pause flag and applies it to the running session.
func (c *Controller) SetPaused(v bool) {
	c.post(message{kind: msgPause, paused: v})
}

// Status returns the externally visible lifecycle state.
func (c *Controller) Status() Status {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view.status
}

// GameID returns the identifier of the currently bound game, if any.
func (c *Controller) GameID() string {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view.gameID
}

func (c *Controller) post(m message) {
	select {
	case c.inbox <- m:
	case <-c.stopCh:
	}
}

func (c *Controller) publishView() {
	c.viewMu.Lock()
	c.view.status = c.status
	c.view.gameID = c.gameID
	c.viewMu.Unlock()
}

func (c *Controller) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopCh:
			return
		case m := <-c.inbox:
			switch m.kind {
			case msgNotification:
				c.handleNotification(m.notif)
			case msgFlush:
				c.handleFlush()
			case msgReco:
				c.handleReco(m.reco)
			case msgPause:
				c.handlePause(m.paused)
			}
			c.publishView()
		}
	}
}

func (c *Controller) handleNotification(n *feed.Notification) {
	if n.Kind == feed.KindNavigate {
		if n.GameID != c.gameID || c.status == StatusActive {
			c.logger.Info("session_navigate", zap.String("game_id", n.GameID))
			c.resetToWatching("navigation")
		}
		return
	}
	if n.Snapshot == nil {
		return
	}

	snap := c.extractor.Extract(n.Snapshot)
	if snap.GameID == "" {
		snap.GameID = n.GameID
	}

	// The bound game silently changed identity under us.
	if c.status == StatusActive && snap.GameID != "" && snap.GameID != c.gameID {
		c.logger.Info("session_game_switch",
			zap.String("old_game_id", c.gameID),
			zap.String("new_game_id", snap.GameID),
		)
		c.resetToWatching("game switch")
	}

	switch c.status {
	case StatusIdle, StatusWatching, StatusEnded:
		c.tryActivate(snap)
	case StatusActive:
		c.observe(snap, n.Region)
	}
}

// tryActivate performs the Watching → Active transition when a live game
// is detectable and the pause flag allows it.
func (c *Controller) tryActivate(snap snapshot.Snapshot) {
	if snap.GameID == "" || len(snap.Board) == 0 || snap.GameOver.Over {
		return
	}
	if snap.GameID == c.endedGameID {
		return
	}
	paused, err := c.prefs.Paused(context.Background())
	if err != nil {
		c.logger.Warn("prefs_read_error", zap.Error(err))
	}
	if paused {
		return
	}

	c.gameID = snap.GameID
	c.endedGameID = ""
	c.sessionUUID = uuid.NewString()
	c.localColor = snap.Local
	c.startedAt = time.Now()
	c.lastGameOver = board.GameOverInfo{}
	c.requested = make(map[string]struct{})
	c.resetStateFromPosition(snap)
	c.status = StatusActive
	c.logger.Info("session_activate",
		zap.String("game_id", c.gameID),
		zap.String("session_uuid", c.sessionUUID),
		zap.String("local_color", c.localColor.String()),
		zap.Int("ply_count", snap.PlyCount),
	)
}

// resetStateFromPosition rebinds all hidden state to the snapshot, the
// only point where castling rights are restored.
func (c *Controller) resetStateFromPosition(snap snapshot.Snapshot) {
	side := snap.Active
	if !side.Known() {
		side = board.White
	}
	c.track.Reset(snap.Board, side, snap.PlyCount)
	c.coal.Reset(coalesce.State{Active: snap.Active, GameOver: false})
}

// observe runs the full recompute cycle for one raw notification while
// Active. Hidden state advances on every notification regardless of
// whether a coalesced event will fire.
func (c *Controller) observe(snap snapshot.Snapshot, region string) {
	if c.localColor == board.NoColor && snap.Local.Known() {
		c.localColor = snap.Local
	}
	if snap.GameOver.Over {
		c.lastGameOver = snap.GameOver
	}

	if len(snap.Board) > 0 {
		c.track.SetPlyCount(snap.PlyCount)
		mover := board.NoColor
		if snap.Active.Known() {
			mover = snap.Active.Other()
		}
		c.track.Update(snap.Board, mover, snap.Highlights)
	}

	c.logger.Debug("notification",
		zap.String("game_id", c.gameID),
		zap.String("hint", string(coalesce.ClassifyHint(region))),
		zap.String("active", snap.Active.String()),
		zap.Bool("game_over", snap.GameOver.Over),
	)
	c.coal.Observe(coalesce.State{Active: snap.Active, GameOver: snap.GameOver.Over})
}

func (c *Controller) handleFlush() {
	if c.status != StatusActive {
		// Stale timer from before a reset.
		return
	}
	// The flag is process-wide persisted state; an external writer may have
	// set it since activation, so re-check it before emitting anything.
	paused, err := c.prefs.Paused(context.Background())
	if err != nil {
		c.logger.Warn("prefs_read_error", zap.Error(err))
	}
	if paused {
		c.resetToWatching("paused")
		return
	}
	for _, ev := range c.coal.Flush() {
		switch ev.Kind {
		case coalesce.KindTurn:
			c.onTurn(ev)
		case coalesce.KindGameOver:
			c.onGameOver()
		}
	}
}

func (c *Controller) onTurn(ev coalesce.Event) {
	desc := c.track.Descriptor()
	c.logger.Info("turn_change",
		zap.String("game_id", c.gameID),
		zap.String("active", ev.State.Active.String()),
		zap.String("fen", desc.FEN()),
	)
	if !c.localColor.Known() || ev.State.Active != c.localColor {
		return
	}

	key := dedupKey(desc)
	if _, seen := c.requested[key]; seen {
		return
	}
	c.requested[key] = struct{}{}

	elo, err := c.prefs.Rating(context.Background())
	if err != nil || elo <= 0 {
		elo = prefs.DefaultRating
	}
	fen := desc.FEN()
	sessionUUID := c.sessionUUID
	gameDeadline := c.cfg.RequestTimeout

	// Fire and forget: the result rejoins the loop through the inbox and
	// is dropped if the session moved on.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), gameDeadline)
		defer cancel()
		move, rerr := c.advisor.BestMove(ctx, fen, elo)
		c.post(message{kind: msgReco, reco: recoResult{
			sessionUUID: sessionUUID,
			key:         key,
			fen:         fen,
			move:        move,
			elo:         elo,
			err:         rerr,
		}})
	}()
}

func (c *Controller) handleReco(r recoResult) {
	if r.sessionUUID != c.sessionUUID || c.status != StatusActive {
		c.logger.Debug("recommendation_stale", zap.String("session_uuid", r.sessionUUID))
		return
	}
	if r.err != nil {
		// Isolated failure: no retry, the next turn supersedes it.
		c.logger.Warn("recommendation_error", zap.String("game_id", c.gameID), zap.Error(r.err))
		return
	}
	c.logger.Info("recommendation",
		zap.String("game_id", c.gameID),
		zap.String("move", r.move),
		zap.Int("elo", r.elo),
	)
	if c.onReco != nil {
		c.onReco(Recommendation{GameID: c.gameID, FEN: r.fen, MoveUCI: r.move, Elo: r.elo})
	}
}

func (c *Controller) onGameOver() {
	info := c.lastGameOver
	desc := c.track.Descriptor()
	c.logger.Info("game_over",
		zap.String("game_id", c.gameID),
		zap.String("winner", info.Winner.String()),
		zap.String("result", info.Result),
		zap.String("reason", info.Reason),
	)

	if c.archiver != nil {
		rec := &Record{
			GameID:      c.gameID,
			SessionUUID: c.sessionUUID,
			Result:      info.Result,
			Reason:      info.Reason,
			FinalFEN:    desc.FEN(),
			PlyCount:    c.track.PlyCount(),
			StartedAt:   c.startedAt,
			EndedAt:     time.Now(),
		}
		if info.Winner.Known() {
			rec.Winner = info.Winner.String()
		}
		archiver := c.archiver
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := archiver.SaveGame(ctx, rec); err != nil {
				c.logger.Warn("archive_error", zap.String("game_id", rec.GameID), zap.Error(err))
			}
		}()
	}

	// Freeze and tear down, then re-arm immediately for a rematch.
	c.coal.Stop()
	c.status = StatusEnded
	c.endedGameID = c.gameID
	c.rearm()
}

func (c *Controller) rearm() {
	c.gameID = ""
	c.sessionUUID = ""
	c.localColor = board.NoColor
	c.requested = nil
	c.status = StatusWatching
}

func (c *Controller) handlePause(v bool) {
	if err := c.prefs.SetPaused(context.Background(), v); err != nil {
		c.logger.Warn("prefs_write_error", zap.Error(err))
	}
	c.logger.Info("session_pause", zap.Bool("paused", v))
	if v && c.status == StatusActive {
		c.resetToWatching("paused")
	}
}

// resetToWatching discards the bound game without a clean gameover: any
// pending window and in-flight request become stale by construction.
func (c *Controller) resetToWatching(reason string) {
	if c.status == StatusActive {
		c.logger.Info("session_reset",
			zap.String("game_id", c.gameID),
			zap.String("reason", reason),
		)
	}
	c.coal.Stop()
	c.gameID = ""
	c.endedGameID = ""
	c.sessionUUID = ""
	c.localColor = board.NoColor
	c.requested = nil
	c.lastGameOver = board.GameOverInfo{}
	c.status = StatusWatching
}

// dedupKey identifies a logical position: placement, turn, rights and en
// passant, with move counters excluded so redundant notifications before a
// counter-move hash identically.
func dedupKey(d board.PositionDescriptor) string {
	sum := sha256.Sum256([]byte(d.Placement()))
	return hex.EncodeToString(sum[:])
}
