package game

import (
	"log"
	"time"

	"github.com/pinchpop/backend/internal/events"
)

// run is the session's frame loop. It ticks at the configured rate, applies
// one simulation step per tick, and publishes a snapshot every few frames.
func (s *Session) run() {
	interval := time.Second / time.Duration(s.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	snapEvery := s.cfg.TickRate / s.cfg.SnapshotRate
	if snapEvery < 1 {
		snapEvery = 1
	}

	frame := 0
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.step(now)
			frame++
			if frame%snapEvery == 0 {
				s.publishSnapshot(now)
			}
		}
	}
}

// step advances the simulation by one frame. Order matters: advisory
// completions land before input so an unlock takes effect on the same frame,
// and the advisory trigger runs last so it sees the settled board.
func (s *Session) step(now time.Time) {
	st := s.st

	s.drainAdvice()
	s.drainCtrl(now)

	if st.Status == StatusPlaying {
		s.stepInput(now)
		s.stepBall(now)
	}

	st.Particles.Step()
	s.maybeRequestAdvice(now)
}

func (s *Session) drainAdvice() {
	for {
		select {
		case res := <-s.adviceCh:
			if res.gen != s.adviceGen {
				continue // from before a restart, board no longer matches
			}
			s.applyHint(res.hint)
		default:
			return
		}
	}
}

func (s *Session) drainCtrl(now time.Time) {
	for {
		select {
		case m := <-s.ctrl:
			s.applyCtrl(m, now)
		default:
			return
		}
	}
}

func (s *Session) applyHint(h Hint) {
	st := s.st
	s.awaitingAdvice = false
	st.Locked = false
	st.Hint = &h
	if h.Color != "" {
		st.SelectColor(h.Color)
	}
	s.broadcast(hintMessage{Type: "advisor_hint", Hint: h})
}

func (s *Session) applyCtrl(m ctrlMsg, now time.Time) {
	st := s.st
	switch m.kind {
	case ctrlSelectColor:
		// Invalid picks are dropped; the next snapshot shows the truth.
		st.SelectColor(m.color)
	case ctrlRestart:
		st.Restart(now.UnixNano(), now)
		s.aim = AimController{}
		s.adviceGen++
		s.awaitingAdvice = false
		s.adviceQueued = false
		s.settleAdvised = false
		s.collisionSent = false
		s.pendingShot = nil
		log.Printf("[GAME] %s: restarted", s.Token)
	}
}

// stepInput feeds the newest hand frame through the aim controller and
// reports draw and fire events.
func (s *Session) stepInput(now time.Time) {
	st := s.st
	frame := s.handFrame(now)
	res := s.aim.Update(st.Ball, frame, st.Locked)

	switch {
	case res.Fired:
		st.ShotsFired++
		s.collisionSent = false
		s.pendingShot = &ShotRecord{
			Number:     st.ShotsFired,
			PowerRatio: res.PowerRatio,
			Angle:      res.AngleRad,
			Color:      st.Ball.Color,
			FiredAt:    now,
		}
		d := events.FireData{
			PowerRatio: res.PowerRatio,
			Velocity:   events.Velocity{VX: st.Ball.Velocity.X, VY: st.Ball.Velocity.Y},
			Color:      string(st.Ball.Color),
		}
		s.cfg.Notifier.Fire(d)
		s.mirrorEvent(events.KindFire, d)
	case res.Dragging && res.DragDistance > 0 && now.Sub(s.lastDraw) >= s.cfg.DrawThrottle:
		s.lastDraw = now
		d := events.DrawData{
			PowerRatio:   res.PowerRatio,
			DragDistance: res.DragDistance,
			Angle:        res.AngleRad,
		}
		s.cfg.Notifier.Draw(d)
		s.mirrorEvent(events.KindDraw, d)
	}
}

// stepBall advances flight physics or eases a resting ball back onto the
// launch anchor.
func (s *Session) stepBall(now time.Time) {
	st := s.st
	switch st.Ball.Phase {
	case PhaseFlight:
		contact := st.Ball.StepFlight(st.Board)
		switch {
		case contact.Hit:
			if contact.HitBubble && !s.collisionSent {
				s.collisionSent = true
				d := events.CollisionData{
					HitBubbleColor:    string(contact.HitColor),
					CollisionPosition: events.Position{X: contact.Point.X, Y: contact.Point.Y},
				}
				s.cfg.Notifier.Collision(d)
				s.mirrorEvent(events.KindCollision, d)
			}
			s.settle(contact, now)
		case contact.TimedOut:
			st.Ball.Reset(st.Selected)
			s.finishShot(ShotLost, 0, 0)
			log.Printf("[GAME] %s: shot timed out in flight", s.Token)
		}
	case PhaseRest:
		st.Ball.EaseStep()
	}
}

// settle resolves a contact into a placement, scoring, events, and the
// persistence hooks.
func (s *Session) settle(contact Contact, now time.Time) {
	st := s.st
	res, ok := st.PlaceBall(contact)
	if !ok {
		s.finishShot(ShotLost, 0, 0)
		log.Printf("[GAME] %s: no free cell near contact, shot dissolved", s.Token)
		return
	}

	if len(res.Matched) > 0 {
		cells := make([]events.GridCell, len(res.Matched))
		for i, c := range res.Matched {
			cells[i] = events.GridCell{Row: c.Row, Col: c.Col}
		}
		d := events.EliminatedData{
			Count:       len(res.Matched),
			ColorLabel:  string(res.Color),
			TotalPoints: res.Points,
			Cells:       cells,
		}
		s.cfg.Notifier.Eliminated(d)
		s.mirrorEvent(events.KindEliminated, d)
		s.finishShot(ShotPopped, len(res.Matched), res.Points)
	} else {
		s.finishShot(ShotStuck, 0, 0)
	}

	if res.Won {
		d := events.WinData{
			FinalScore:    st.Score,
			ShotsFired:    st.ShotsFired,
			BubblesPopped: st.BubblesPopped,
			Duration:      now.Sub(st.StartedAt).Milliseconds(),
		}
		s.cfg.Notifier.Win(d)
		s.mirrorEvent(events.KindWin, d)
		if s.cfg.OnFinish != nil {
			snap := st.BuildSnapshot(now)
			go s.cfg.OnFinish(s, snap, true)
		}
		log.Printf("[GAME] %s: board cleared, score=%d shots=%d", s.Token, st.Score, st.ShotsFired)
	} else {
		s.adviceQueued = true
	}

	if s.cfg.OnPlacement != nil {
		snap := st.BuildSnapshot(now)
		go s.cfg.OnPlacement(s, snap)
	}
}

func (s *Session) finishShot(outcome string, popped, points int) {
	if s.pendingShot == nil {
		return
	}
	rec := *s.pendingShot
	s.pendingShot = nil
	rec.Outcome = outcome
	rec.Popped = popped
	rec.Points = points
	if s.cfg.OnShot != nil {
		go s.cfg.OnShot(s, rec)
	}
}

// maybeRequestAdvice kicks off an advisory round when one is due: once after
// the opening settle delay, then after every placement. At most one request
// is in flight, and player interaction stays locked until it lands.
func (s *Session) maybeRequestAdvice(now time.Time) {
	st := s.st
	if s.cfg.Advisor == nil || s.awaitingAdvice || st.Status != StatusPlaying {
		return
	}
	if !s.settleAdvised && now.Sub(st.StartedAt) >= s.cfg.SettleDelay {
		s.settleAdvised = true
		s.adviceQueued = true
	}
	if !s.adviceQueued {
		return
	}
	s.adviceQueued = false
	s.awaitingAdvice = true
	st.Locked = true

	req := AdviceRequest{
		Board:      st.Board.Clone(),
		Candidates: CandidateTargets(st.Board),
		Danger:     st.Board.InDanger(),
		Score:      st.Score,
	}
	gen := s.adviceGen
	go func() {
		hint := s.cfg.Advisor.Advise(s.ctx, req)
		select {
		case s.adviceCh <- adviceResult{hint: hint, gen: gen}:
		case <-s.done:
		}
	}()
}

func (s *Session) publishSnapshot(now time.Time) {
	snap := s.st.BuildSnapshot(now)
	s.mu.Lock()
	s.lastSnap = snap
	s.mu.Unlock()
	s.broadcast(stateMessage{Type: "game_state", State: snap})
}
