package game

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const reaperInterval = 30 * time.Second

// StartReaper sweeps sessions whose players walked away. Idle games get
// their state saved, their row closed out, and a session_expired notice
// published for any client still listening.
func (gm *GameManager) StartReaper() {
	log.Printf("[REAPER] started, idle limit %dm", gm.config.GameExpiryMinutes)
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for range ticker.C {
		gm.reapIdleSessions()
	}
}

func (gm *GameManager) reapIdleSessions() {
	maxIdle := time.Duration(gm.config.GameExpiryMinutes) * time.Minute

	gm.mu.RLock()
	now := time.Now()
	var idle []*Session
	for _, s := range gm.sessions {
		if now.Sub(s.LastActivity()) > maxIdle {
			idle = append(idle, s)
		}
	}
	gm.mu.RUnlock()

	for _, s := range idle {
		log.Printf("[REAPER] session %s idle past %s, expiring", s.Token, maxIdle)

		snap := s.LatestSnapshot()
		s.Stop()

		gm.mu.Lock()
		delete(gm.sessions, s.Token)
		gm.mu.Unlock()

		gm.saveSnapshotToRedis(s.Token, snap)
		if snap.Status == StatusPlaying {
			gm.finalizeGame(s.Token, snap, StatusAbandoned)
		}
		gm.publishExpired(s.Token)
	}
}

func (gm *GameManager) publishExpired(token string) {
	if gm.rdb == nil {
		return
	}
	payload := map[string]interface{}{
		"type":       "session_expired",
		"game_token": token,
		"message":    "Game closed after inactivity.",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if n, err := gm.rdb.Publish(context.Background(), "game_events", b).Result(); err != nil {
		log.Printf("[REAPER] publish session_expired failed: game=%s err=%v", token, err)
	} else {
		log.Printf("[REAPER] published session_expired: game=%s subscribers=%d", token, n)
	}
}
