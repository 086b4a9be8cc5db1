package handlers

import (
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/pinchpop/backend/internal/config"
	"github.com/pinchpop/backend/internal/game"
	"github.com/redis/go-redis/v9"
)

// validName allows letters, numbers, punctuation, symbols and space separators
var validName = regexp.MustCompile("^[\\p{L}\\p{N}\\p{P}\\p{S}\\p{Zs}]+$")

// CreateGame starts a new session and returns the token plus the JWT the
// websocket upgrade requires.
func CreateGame(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DisplayName string `json:"display_name,omitempty"`
		}
		// Body is optional; an empty display name gets a default later.
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		name := strings.TrimSpace(req.DisplayName)
		if name != "" {
			if len(name) > 50 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid display_name"})
				return
			}
			if !validName.MatchString(name) {
				log.Printf("[INFO] Invalid display_name attempt: %q", name)
				c.JSON(http.StatusBadRequest, gin.H{"error": "display_name contains invalid characters"})
				return
			}
		}
		if name == "" {
			name = "Player"
		}

		sess := game.Manager.CreateSession(name)
		if sess == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
			return
		}

		// Issue JWT scoped to this game
		exp := time.Now().Add(time.Duration(cfg.GameExpiryMinutes) * time.Minute)
		claims := jwt.MapClaims{"game_token": sess.Token, "exp": exp.Unix()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("Failed to sign game token: %v", err)
			game.Manager.RemoveSession(sess.Token)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		gameLink := cfg.FrontendURL + "/g/" + sess.Token

		log.Printf("[INFO] CreateGame - token=%s display_name=%s", sess.Token, name)

		c.JSON(http.StatusOK, gin.H{
			"game_token":     sess.Token,
			"jwt":            signed,
			"display_name":   name,
			"game_link":      gameLink,
			"websocket_path": "/api/v1/game/" + sess.Token + "/ws",
			"expires_at":     exp.Format(time.RFC3339),
			"message":        "Game created! Connect to the websocket to play.",
		})
	}
}

// GetGameState returns the current snapshot for a game token
func GetGameState(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		sess, err := game.Manager.GetSession(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Game not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"game_token":   sess.Token,
			"display_name": sess.DisplayName,
			"created_at":   sess.CreatedAt,
			"state":        sess.LatestSnapshot(),
		})
	}
}
