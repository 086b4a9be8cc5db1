package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/pinchpop/backend/internal/config"
	"github.com/pinchpop/backend/internal/events"
)

const leaderboardKey = "leaderboard:scores"

// GameManager owns every live session on this instance plus the shared
// persistence clients. Sessions are keyed by their public game token.
type GameManager struct {
	sessions map[string]*Session
	rdb      *redis.Client
	db       *sqlx.DB
	config   *config.Config

	advisor   Advisor
	notifier  *events.Notifier
	broadcast Broadcaster

	mu sync.RWMutex
}

// Global game manager instance
var Manager *GameManager

// InitializeManager wires the global manager and starts its background jobs.
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, advisor Advisor, notifier *events.Notifier, broadcast Broadcaster) {
	Manager = NewGameManager(db, rdb, cfg, advisor, notifier, broadcast)
	go Manager.StartReaper()
}

// NewGameManager creates a new game manager.
func NewGameManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, advisor Advisor, notifier *events.Notifier, broadcast Broadcaster) *GameManager {
	return &GameManager{
		sessions:  make(map[string]*Session),
		rdb:       rdb,
		db:        db,
		config:    cfg,
		advisor:   advisor,
		notifier:  notifier,
		broadcast: broadcast,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (gm *GameManager) sessionConfig() SessionConfig {
	return SessionConfig{
		TickRate:     gm.config.TickRate,
		SnapshotRate: gm.config.SnapshotRate,
		SettleDelay:  time.Duration(gm.config.AdvisorSettleDelayMS) * time.Millisecond,
		Advisor:      gm.advisor,
		Notifier:     gm.notifier,
		Broadcast:    gm.broadcast,
		OnPlacement:  gm.onPlacement,
		OnShot:       gm.onShot,
		OnFinish:     gm.onFinish,
	}
}

// CreateSession generates a board, starts its frame loop, and registers it
// under a fresh token.
func (gm *GameManager) CreateSession(displayName string) *Session {
	token := generateToken(16)
	s := NewSession(token, displayName, time.Now().UnixNano(), gm.sessionConfig())

	gm.mu.Lock()
	gm.sessions[token] = s
	gm.mu.Unlock()

	if gm.db != nil {
		if _, err := gm.db.Exec(
			`INSERT INTO games (game_token, display_name, status, created_at) VALUES ($1, $2, $3, NOW())`,
			token, displayName, StatusPlaying,
		); err != nil {
			log.Printf("[DB] failed to insert game row for %s: %v", token, err)
		}
	}

	s.Start()
	gm.saveSnapshotToRedis(token, s.LatestSnapshot())
	log.Printf("[GAME] session created: %s (player %q)", token, displayName)
	return s
}

// GetSession retrieves a live session by token. On a miss it tries the
// Redis copy a previous process may have left behind and revives it.
func (gm *GameManager) GetSession(token string) (*Session, error) {
	gm.mu.RLock()
	s, ok := gm.sessions[token]
	gm.mu.RUnlock()
	if ok {
		return s, nil
	}

	snap, err := gm.loadSnapshotFromRedis(token)
	if err != nil {
		return nil, errors.New("game not found")
	}

	log.Printf("[GAME] restoring session %s from redis", token)
	s = RestoreSession(token, gm.displayNameFor(token), snap, gm.sessionConfig())

	gm.mu.Lock()
	if existing, raced := gm.sessions[token]; raced {
		gm.mu.Unlock()
		return existing, nil // another caller revived it first; ours never started
	}
	gm.sessions[token] = s
	gm.mu.Unlock()

	s.Start()
	return s, nil
}

// RemoveSession stops a session's loop and drops it from the registry.
func (gm *GameManager) RemoveSession(token string) {
	gm.mu.Lock()
	s, ok := gm.sessions[token]
	if ok {
		delete(gm.sessions, token)
	}
	gm.mu.Unlock()
	if ok {
		s.Stop()
	}
}

// ActiveSessionCount returns the number of live sessions.
func (gm *GameManager) ActiveSessionCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// SessionInfo is the ops view of one live session.
type SessionInfo struct {
	Token        string    `json:"token"`
	DisplayName  string    `json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Score        int       `json:"score"`
	ShotsFired   int       `json:"shotsFired"`
	Status       string    `json:"status"`
	BubblesLeft  int       `json:"bubblesLeft"`
}

// ActiveSessions lists live sessions, oldest first.
func (gm *GameManager) ActiveSessions() []SessionInfo {
	gm.mu.RLock()
	list := make([]*Session, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		list = append(list, s)
	}
	gm.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(list))
	for _, s := range list {
		snap := s.LatestSnapshot()
		infos = append(infos, SessionInfo{
			Token:        s.Token,
			DisplayName:  s.DisplayName,
			CreatedAt:    s.CreatedAt,
			LastActivity: s.LastActivity(),
			Score:        snap.Score,
			ShotsFired:   snap.ShotsFired,
			Status:       snap.Status,
			BubblesLeft:  len(snap.Bubbles),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	return infos
}

func (gm *GameManager) displayNameFor(token string) string {
	if gm.db == nil {
		return ""
	}
	var name string
	if err := gm.db.Get(&name, `SELECT display_name FROM games WHERE game_token = $1`, token); err != nil {
		return ""
	}
	return name
}

// Persistence hooks. The session invokes these on their own goroutines, so
// they may block on the stores without stalling the frame loop.

func (gm *GameManager) onPlacement(s *Session, snap Snapshot) {
	gm.saveSnapshotToRedis(s.Token, snap)
}

func (gm *GameManager) onShot(s *Session, rec ShotRecord) {
	if gm.db == nil {
		return
	}
	_, err := gm.db.Exec(
		`INSERT INTO game_shots (game_token, shot_number, color, power_ratio, angle, outcome, bubbles_popped, points, fired_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.Token, rec.Number, rec.Color, rec.PowerRatio, rec.Angle, rec.Outcome, rec.Popped, rec.Points, rec.FiredAt,
	)
	if err != nil {
		log.Printf("[DB] failed to record shot %d for %s: %v", rec.Number, s.Token, err)
	}
}

func (gm *GameManager) onFinish(s *Session, snap Snapshot, won bool) {
	gm.saveSnapshotToRedis(s.Token, snap)
	if won {
		gm.finalizeGame(s.Token, snap, StatusWon)
		gm.updateLeaderboard(s.DisplayName, snap.Score)
	} else {
		gm.finalizeGame(s.Token, snap, StatusAbandoned)
	}
}

// finalizeGame writes the game's closing stats onto its row.
func (gm *GameManager) finalizeGame(token string, snap Snapshot, status string) {
	if gm.db == nil {
		return
	}
	_, err := gm.db.Exec(
		`UPDATE games SET status = $1, score = $2, shots_fired = $3, bubbles_popped = $4, duration_ms = $5, completed_at = NOW()
		 WHERE game_token = $6`,
		status, snap.Score, snap.ShotsFired, snap.BubblesPopped, snap.ElapsedMS, token,
	)
	if err != nil {
		log.Printf("[DB] failed to finalize game %s: %v", token, err)
	}
}

// updateLeaderboard bumps the player's best score in the Redis ranking and
// tells connected clients to refresh theirs.
func (gm *GameManager) updateLeaderboard(displayName string, score int) {
	if gm.rdb == nil || displayName == "" {
		return
	}
	ctx := context.Background()
	if err := gm.rdb.ZAddGT(ctx, leaderboardKey, redis.Z{
		Score:  float64(score),
		Member: displayName,
	}).Err(); err != nil {
		log.Printf("[DB] failed to update leaderboard for %q: %v", displayName, err)
		return
	}

	payload := map[string]interface{}{
		"type":         "leaderboard_updated",
		"display_name": displayName,
		"score":        score,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if n, err := gm.rdb.Publish(ctx, "game_events", b).Result(); err != nil {
		log.Printf("[DB] publish leaderboard_updated failed: %v", err)
	} else {
		log.Printf("[GAME] published leaderboard_updated: %s=%d (subscribers=%d)", displayName, score, n)
	}
}

// LeaderboardEntry is one ranked row in the standings.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// TopScores returns the best n entries, highest score first.
func (gm *GameManager) TopScores(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if gm.rdb == nil {
		return nil, errors.New("no redis client")
	}
	zs, err := gm.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: name,
			Score:       int(z.Score),
		})
	}
	return out, nil
}

// ResetLeaderboard wipes the standings. Ops endpoint only.
func (gm *GameManager) ResetLeaderboard(ctx context.Context) error {
	if gm.rdb == nil {
		return errors.New("no redis client")
	}
	return gm.rdb.Del(ctx, leaderboardKey).Err()
}

// saveSnapshotToRedis persists a state copy so another process can pick the
// game up. Keys expire after an hour of neglect.
func (gm *GameManager) saveSnapshotToRedis(token string, snap Snapshot) error {
	if gm.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	key := "game:" + token + ":state"
	if err := gm.rdb.SetEx(context.Background(), key, data, time.Hour).Err(); err != nil {
		log.Printf("[DB] failed to save state for %s: %v", token, err)
		return err
	}
	return nil
}

func (gm *GameManager) loadSnapshotFromRedis(token string) (Snapshot, error) {
	var snap Snapshot
	if gm.rdb == nil {
		return snap, errors.New("no redis client")
	}
	data, err := gm.rdb.Get(context.Background(), "game:"+token+":state").Result()
	if err == redis.Nil {
		return snap, errors.New("game not found in redis")
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return snap, err
	}
	return snap, nil
}
