package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pinchpop/backend/internal/models"
)

// GetRecentGames returns the most recently finished games
func GetRecentGames(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			if n > 100 {
				n = 100
			}
			limit = n
		}

		var games []models.Game
		err := db.Select(&games, `SELECT id, game_token, display_name, status, score, shots_fired, bubbles_popped, duration_ms, created_at, completed_at
			FROM games WHERE status <> 'playing' ORDER BY completed_at DESC NULLS LAST LIMIT $1`, limit)
		if err != nil {
			log.Printf("[DB] Failed to fetch recent games: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch games"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"games": games,
			"count": len(games),
		})
	}
}

// GetGameShots returns the shot log for a game, used by the recap screen
func GetGameShots(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM games WHERE game_token=$1)`, token); err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}

		var shots []models.GameShot
		err := db.Select(&shots, `SELECT id, game_token, shot_number, color, power_ratio, angle, outcome, bubbles_popped, points, fired_at
			FROM game_shots WHERE game_token=$1 ORDER BY id ASC`, token)
		if err != nil {
			log.Printf("[DB] Failed to fetch shots for game %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shots"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"game_token": token,
			"shots":      shots,
			"count":      len(shots),
		})
	}
}
