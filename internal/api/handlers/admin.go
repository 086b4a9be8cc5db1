package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinchpop/backend/internal/config"
	"github.com/pinchpop/backend/internal/game"
	"golang.org/x/crypto/bcrypt"
)

// opsAuthorized checks the X-Ops-Token header against the configured bcrypt
// hash. Returns false after writing the error response.
func opsAuthorized(c *gin.Context, cfg *config.Config) bool {
	if cfg.OpsTokenHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ops endpoints are not configured"})
		return false
	}

	token := c.GetHeader("X-Ops-Token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing ops token"})
		return false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cfg.OpsTokenHash), []byte(token)); err != nil {
		log.Printf("[OPS] Rejected ops token from %s", c.ClientIP())
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid ops token"})
		return false
	}

	return true
}

// ResetLeaderboard clears every leaderboard entry
func ResetLeaderboard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !opsAuthorized(c, cfg) {
			return
		}

		if err := game.Manager.ResetLeaderboard(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset leaderboard"})
			return
		}

		log.Printf("[OPS] Leaderboard reset by %s", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"message": "Leaderboard reset"})
	}
}

// ListSessions returns a summary of every live session
func ListSessions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !opsAuthorized(c, cfg) {
			return
		}

		sessions := game.Manager.ActiveSessions()
		c.JSON(http.StatusOK, gin.H{
			"sessions": sessions,
			"count":    len(sessions),
		})
	}
}
