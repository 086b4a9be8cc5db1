package models

import (
	"database/sql"
	"time"
)

// Game is one persisted play session. Live state stays in memory and Redis;
// this row is the durable record used for history and the leaderboard.
type Game struct {
	ID            int          `db:"id" json:"id"`
	GameToken     string       `db:"game_token" json:"game_token"`
	DisplayName   string       `db:"display_name" json:"display_name"`
	Status        string       `db:"status" json:"status"`
	Score         int          `db:"score" json:"score"`
	ShotsFired    int          `db:"shots_fired" json:"shots_fired"`
	BubblesPopped int          `db:"bubbles_popped" json:"bubbles_popped"`
	DurationMS    int64        `db:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	CompletedAt   sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}

// GameShot is one recorded launch. Shot numbers restart from 1 after a
// board reset, so rows are ordered by id, not shot_number.
type GameShot struct {
	ID            int       `db:"id" json:"id"`
	GameToken     string    `db:"game_token" json:"game_token"`
	ShotNumber    int       `db:"shot_number" json:"shot_number"`
	Color         string    `db:"color" json:"color"`
	PowerRatio    float64   `db:"power_ratio" json:"power_ratio"`
	Angle         float64   `db:"angle" json:"angle"`
	Outcome       string    `db:"outcome" json:"outcome"`
	BubblesPopped int       `db:"bubbles_popped" json:"bubbles_popped"`
	Points        int       `db:"points" json:"points"`
	FiredAt       time.Time `db:"fired_at" json:"fired_at"`
}
