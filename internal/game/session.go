package game

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/pinchpop/backend/internal/events"
)

// Broadcaster fans an outbound payload to every websocket client watching a
// session. The hub in internal/ws implements it.
type Broadcaster interface {
	BroadcastToGame(token string, message []byte)
}

// ShotRecord is one fired shot, kept for the per-game shot log.
type ShotRecord struct {
	Number     int
	PowerRatio float64
	Angle      float64 // radians, grid coordinates
	Color      Color
	Outcome    string
	Popped     int
	Points     int
	FiredAt    time.Time
}

// Shot outcomes.
const (
	ShotPopped = "popped" // landed and cleared a cluster
	ShotStuck  = "stuck"  // landed without a match
	ShotLost   = "lost"   // dissolved or timed out in flight
)

// SessionConfig carries loop tuning plus the collaborators a session talks
// to. Any of the collaborator fields may be nil; the session degrades to a
// standalone simulation, which is what the tests and the headless runner use.
type SessionConfig struct {
	TickRate     int
	SnapshotRate int
	SettleDelay  time.Duration
	DrawThrottle time.Duration

	Advisor   Advisor
	Notifier  *events.Notifier
	Broadcast Broadcaster

	// Persistence hooks, filled in by the manager. All of them are invoked
	// on throwaway goroutines so a slow store never stalls the loop.
	OnPlacement func(s *Session, snap Snapshot)
	OnShot      func(s *Session, rec ShotRecord)
	OnFinish    func(s *Session, snap Snapshot, won bool)
}

func (c *SessionConfig) fillDefaults() {
	if c.TickRate <= 0 {
		c.TickRate = TickRate
	}
	if c.SnapshotRate <= 0 {
		c.SnapshotRate = SnapshotRate
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.DrawThrottle <= 0 {
		c.DrawThrottle = 100 * time.Millisecond
	}
}

// Hand frames older than this are treated as "hand left the camera view".
const handFrameTTL = 500 * time.Millisecond

type ctrlKind int

const (
	ctrlSelectColor ctrlKind = iota
	ctrlRestart
)

type ctrlMsg struct {
	kind  ctrlKind
	color Color
}

type adviceResult struct {
	hint Hint
	gen  int
}

// Session owns one live game end to end: the authoritative state, the frame
// loop that mutates it, and the mailboxes other goroutines use to reach it.
// Only the loop goroutine touches st and aim; everything crossing the
// boundary goes through the mutex or a channel.
type Session struct {
	Token       string
	DisplayName string
	CreatedAt   time.Time

	cfg SessionConfig

	st  *State
	aim AimController

	mu           sync.Mutex
	latestFrame  HandFrame
	frameAt      time.Time
	lastActivity time.Time
	lastSnap     Snapshot

	ctrl     chan ctrlMsg
	adviceCh chan adviceResult
	done     chan struct{}
	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc

	// Loop-local bookkeeping. Never read outside the loop goroutine.
	adviceGen      int
	awaitingAdvice bool
	adviceQueued   bool
	settleAdvised  bool
	collisionSent  bool
	lastDraw       time.Time
	pendingShot    *ShotRecord
}

// NewSession builds a session around a freshly generated board. Call Start
// to spin up its frame loop.
func NewSession(token, displayName string, seed int64, cfg SessionConfig) *Session {
	return newSessionWithState(token, displayName, NewState(seed, time.Now()), cfg)
}

// RestoreSession rebuilds a session around a snapshot saved by a previous
// process.
func RestoreSession(token, displayName string, snap Snapshot, cfg SessionConfig) *Session {
	return newSessionWithState(token, displayName, StateFromSnapshot(snap, time.Now()), cfg)
}

func newSessionWithState(token, displayName string, st *State, cfg SessionConfig) *Session {
	cfg.fillDefaults()
	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Token:       token,
		DisplayName: displayName,
		CreatedAt:   now,
		cfg:         cfg,
		st:          st,
		ctrl:        make(chan ctrlMsg, 8),
		adviceCh:    make(chan adviceResult, 1),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.lastActivity = now
	s.lastSnap = s.st.BuildSnapshot(now)
	return s
}

// Start launches the frame loop. Call exactly once.
func (s *Session) Start() {
	go s.run()
}

// Stop shuts the loop down and releases any advisory request still in
// flight. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.done)
	})
}

// SubmitHandFrame replaces the pending hand sample. Only the newest sample
// matters to the loop, so intermediate frames are simply overwritten.
func (s *Session) SubmitHandFrame(f HandFrame) {
	now := time.Now()
	s.mu.Lock()
	s.latestFrame = f
	s.frameAt = now
	s.lastActivity = now
	s.mu.Unlock()
}

// RequestSelectColor asks the loop to switch the loaded color.
func (s *Session) RequestSelectColor(c Color) {
	s.pushCtrl(ctrlMsg{kind: ctrlSelectColor, color: c})
}

// RequestRestart asks the loop to regenerate the board and zero the score.
func (s *Session) RequestRestart() {
	s.pushCtrl(ctrlMsg{kind: ctrlRestart})
}

func (s *Session) pushCtrl(m ctrlMsg) {
	s.Touch()
	select {
	case s.ctrl <- m:
	default:
		log.Printf("[GAME] %s: control queue full, dropping message", s.Token)
	}
}

// Touch marks player activity so the reaper leaves the session alone.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity reports when the session last saw player input.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// LatestSnapshot returns the most recent published state copy. REST reads
// and the get_state websocket message are served from here without touching
// the loop.
func (s *Session) LatestSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnap
}

func (s *Session) handFrame(now time.Time) HandFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.latestFrame
	if s.frameAt.IsZero() || now.Sub(s.frameAt) > handFrameTTL {
		f.Detected = false
	}
	return f
}

// Outbound websocket frames. The session marshals these itself so the hub
// stays a dumb byte pipe.
type stateMessage struct {
	Type  string   `json:"type"`
	State Snapshot `json:"state"`
}

type hintMessage struct {
	Type string `json:"type"`
	Hint Hint   `json:"hint"`
}

type eventMessage struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (s *Session) broadcast(v any) {
	if s.cfg.Broadcast == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[GAME] %s: failed to marshal outbound message: %v", s.Token, err)
		return
	}
	s.cfg.Broadcast.BroadcastToGame(s.Token, b)
}

// mirrorEvent gives connected spectators the same payload the sink gets.
func (s *Session) mirrorEvent(kind events.Kind, data any) {
	s.broadcast(eventMessage{Type: "game_event", Event: string(kind), Data: data})
}
