package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// captureBroadcaster records every outbound frame so tests can assert on the
// message stream without a websocket.
type captureBroadcaster struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (c *captureBroadcaster) BroadcastToGame(token string, message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := make([]byte, len(message))
	copy(b, message)
	c.msgs = append(c.msgs, b)
}

// kinds tallies message types, with game_event frames counted by event name.
func (c *captureBroadcaster) kinds() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int)
	for _, m := range c.msgs {
		var head struct {
			Type  string `json:"type"`
			Event string `json:"event"`
		}
		if err := json.Unmarshal(m, &head); err != nil {
			continue
		}
		key := head.Type
		if head.Type == "game_event" {
			key = head.Event
		}
		out[key]++
	}
	return out
}

type stubAdvisor struct {
	delay time.Duration
	hint  Hint

	mu   sync.Mutex
	reqs []AdviceRequest
}

func (a *stubAdvisor) Advise(ctx context.Context, req AdviceRequest) Hint {
	a.mu.Lock()
	a.reqs = append(a.reqs, req)
	a.mu.Unlock()
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
	}
	return a.hint
}

func (a *stubAdvisor) requests() []AdviceRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AdviceRequest(nil), a.reqs...)
}

func waitFor(t *testing.T, timeout time.Duration, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

// TestSessionWinFlow drives a full game through the real loop: pinch on the
// ball, pull back, release, watch the shot clear the board.
func TestSessionWinFlow(t *testing.T) {
	cast := &captureBroadcaster{}
	shots := make(chan ShotRecord, 4)
	type finish struct {
		snap Snapshot
		won  bool
	}
	finished := make(chan finish, 1)

	snap := Snapshot{
		Bubbles: []Bubble{
			{Cell: Cell{0, 0}, Color: Red},
			{Cell: Cell{0, 1}, Color: Red},
		},
		Selected: Red,
		Status:   StatusPlaying,
	}
	s := RestoreSession("tok-win", "Tester", snap, SessionConfig{
		TickRate:     240,
		SnapshotRate: 120,
		SettleDelay:  time.Hour,
		Broadcast:    cast,
		OnShot:       func(_ *Session, rec ShotRecord) { shots <- rec },
		OnFinish:     func(_ *Session, snap Snapshot, won bool) { finished <- finish{snap, won} },
	})
	s.Start()
	defer s.Stop()

	// Aim so the extended drag line runs through the anchor into the free
	// slot next to the red pair.
	anchor := LaunchAnchor()
	target := CellToPixel(Cell{0, 2})
	dir := target.Minus(anchor).Normalize()
	pull := anchor.Minus(dir.Times(MaxDrag))

	s.SubmitHandFrame(pinchFrame(anchor.X, anchor.Y, true))
	time.Sleep(60 * time.Millisecond)
	s.SubmitHandFrame(pinchFrame(pull.X, pull.Y, true))
	time.Sleep(60 * time.Millisecond)
	s.SubmitHandFrame(pinchFrame(pull.X, pull.Y, false))

	select {
	case f := <-finished:
		if !f.won {
			t.Error("finish hook reported won=false")
		}
		if f.snap.Score != 300 {
			t.Errorf("final score = %d, want 300", f.snap.Score)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("game never finished")
	}

	select {
	case rec := <-shots:
		if rec.Number != 1 {
			t.Errorf("shot number = %d, want 1", rec.Number)
		}
		if rec.Outcome != ShotPopped {
			t.Errorf("shot outcome = %s, want popped", rec.Outcome)
		}
		if rec.Popped != 3 || rec.Points != 300 {
			t.Errorf("shot popped/points = %d/%d, want 3/300", rec.Popped, rec.Points)
		}
		if rec.Color != Red {
			t.Errorf("shot color = %s, want Red", rec.Color)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("shot hook never fired")
	}

	waitFor(t, 2*time.Second, "won snapshot", func() bool {
		return s.LatestSnapshot().Status == StatusWon
	})
	got := s.LatestSnapshot()
	if got.Score != 300 || got.ShotsFired != 1 || got.BubblesPopped != 3 {
		t.Errorf("snapshot = score %d shots %d popped %d, want 300/1/3", got.Score, got.ShotsFired, got.BubblesPopped)
	}
	if len(got.Bubbles) != 0 {
		t.Errorf("board should be empty, has %d bubbles", len(got.Bubbles))
	}

	kinds := cast.kinds()
	if kinds["game_state"] == 0 {
		t.Error("no game_state frames broadcast")
	}
	for _, want := range []string{"slingshot_fire", "bubble_eliminated", "game_win"} {
		if kinds[want] == 0 {
			t.Errorf("no %s event broadcast (got %v)", want, kinds)
		}
	}
}

// TestSessionAdvisoryLockAndHint checks the advisory round trip: interaction
// locks while the advisor thinks, then the hint lands, unlocks play, and
// switches the loaded color.
func TestSessionAdvisoryLockAndHint(t *testing.T) {
	cast := &captureBroadcaster{}
	targetCell := Cell{0, 2}
	adv := &stubAdvisor{
		delay: 150 * time.Millisecond,
		hint: Hint{
			Target:    &targetCell,
			Color:     Green,
			Message:   "Clear the red pair",
			Heuristic: true,
		},
	}

	snap := Snapshot{
		Bubbles: []Bubble{
			{Cell: Cell{0, 0}, Color: Red},
			{Cell: Cell{0, 1}, Color: Red},
			{Cell: Cell{1, 0}, Color: Green},
		},
		Selected: Red,
		Status:   StatusPlaying,
	}
	s := RestoreSession("tok-hint", "Tester", snap, SessionConfig{
		TickRate:     240,
		SnapshotRate: 120,
		SettleDelay:  30 * time.Millisecond,
		Advisor:      adv,
		Broadcast:    cast,
	})
	s.Start()
	defer s.Stop()

	waitFor(t, 2*time.Second, "interaction lock", func() bool {
		return s.LatestSnapshot().Locked
	})
	waitFor(t, 2*time.Second, "hint delivery", func() bool {
		snap := s.LatestSnapshot()
		return snap.Hint != nil && !snap.Locked
	})

	got := s.LatestSnapshot()
	if got.Hint.Message != "Clear the red pair" {
		t.Errorf("hint message = %q", got.Hint.Message)
	}
	if got.Hint.Target == nil || *got.Hint.Target != targetCell {
		t.Errorf("hint target = %v, want %v", got.Hint.Target, targetCell)
	}
	if got.Selected != Green {
		t.Errorf("hint color should switch selection to Green, got %s", got.Selected)
	}

	reqs := adv.requests()
	if len(reqs) == 0 {
		t.Fatal("advisor never consulted")
	}
	if reqs[0].Board.Count() != 3 {
		t.Errorf("advisor saw %d bubbles, want 3", reqs[0].Board.Count())
	}
	if reqs[0].Danger {
		t.Error("advisor saw danger on a three-bubble board")
	}

	if cast.kinds()["advisor_hint"] == 0 {
		t.Error("no advisor_hint frame broadcast")
	}
}

func TestSessionRestartClearsState(t *testing.T) {
	snap := Snapshot{
		Bubbles:    []Bubble{{Cell: Cell{0, 0}, Color: Red}},
		Score:      700,
		ShotsFired: 3,
		Selected:   Red,
		Status:     StatusPlaying,
	}
	s := RestoreSession("tok-restart", "Tester", snap, SessionConfig{
		TickRate:     240,
		SnapshotRate: 120,
		SettleDelay:  time.Hour,
	})
	s.Start()
	defer s.Stop()

	s.RequestRestart()

	waitFor(t, 2*time.Second, "regenerated board", func() bool {
		snap := s.LatestSnapshot()
		return snap.Score == 0 && len(snap.Bubbles) == 38
	})
	got := s.LatestSnapshot()
	if got.ShotsFired != 0 || got.BubblesPopped != 0 {
		t.Errorf("counters not cleared: shots=%d popped=%d", got.ShotsFired, got.BubblesPopped)
	}
	if got.Status != StatusPlaying {
		t.Errorf("status = %s, want playing", got.Status)
	}
}

// TestSessionDrawThrottle holds a drag against two throttle settings and
// counts the slingshot_draw frames that reach clients.
func TestSessionDrawThrottle(t *testing.T) {
	hold := func(throttle time.Duration) map[string]int {
		cast := &captureBroadcaster{}
		snap := Snapshot{
			Bubbles:  []Bubble{{Cell: Cell{0, 0}, Color: Red}},
			Selected: Red,
			Status:   StatusPlaying,
		}
		s := RestoreSession("tok-draw", "Tester", snap, SessionConfig{
			TickRate:     240,
			SnapshotRate: 120,
			SettleDelay:  time.Hour,
			DrawThrottle: throttle,
			Broadcast:    cast,
		})
		s.Start()
		t.Cleanup(s.Stop)

		anchor := LaunchAnchor()
		s.SubmitHandFrame(pinchFrame(anchor.X, anchor.Y, true))
		time.Sleep(60 * time.Millisecond)
		s.SubmitHandFrame(pinchFrame(anchor.X, anchor.Y+60, true))

		waitFor(t, 2*time.Second, "first draw event", func() bool {
			return cast.kinds()["slingshot_draw"] >= 1
		})
		time.Sleep(120 * time.Millisecond) // drag stays held well past the first emit
		return cast.kinds()
	}

	if n := hold(time.Hour)["slingshot_draw"]; n != 1 {
		t.Errorf("hour throttle let %d draw events through one held drag, want 1", n)
	}
	if n := hold(time.Millisecond)["slingshot_draw"]; n < 3 {
		t.Errorf("1ms throttle produced %d draw events over a held drag, want several", n)
	}
}

func TestHandFrameExpires(t *testing.T) {
	s := NewSession("tok-ttl", "Tester", 1, SessionConfig{})

	if f := s.handFrame(time.Now()); f.Detected {
		t.Error("frame should read undetected before any input")
	}

	s.SubmitHandFrame(HandFrame{X: 1, Y: 2, Detected: true})
	if f := s.handFrame(time.Now()); !f.Detected {
		t.Error("fresh frame should stay detected")
	}
	if f := s.handFrame(time.Now().Add(600 * time.Millisecond)); f.Detected {
		t.Error("stale frame should read undetected")
	}
}

func TestSessionSnapshotAvailableBeforeStart(t *testing.T) {
	s := NewSession("tok-snap", "Tester", 5, SessionConfig{})
	snap := s.LatestSnapshot()
	if snap.Status != StatusPlaying {
		t.Errorf("status = %s, want playing", snap.Status)
	}
	if len(snap.Bubbles) != 38 {
		t.Errorf("bubble count = %d, want 38", len(snap.Bubbles))
	}
}
