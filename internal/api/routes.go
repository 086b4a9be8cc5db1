package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pinchpop/backend/internal/api/handlers"
	"github.com/pinchpop/backend/internal/config"
	"github.com/pinchpop/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// No-cache middleware MUST be first in development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			// Aggressive no-cache for development
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] Aggressive no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))

		// Game endpoints
		gameGroup := v1.Group("/game")
		{
			gameGroup.POST("", handlers.CreateGame(db, rdb, cfg))
			gameGroup.GET("/:token", handlers.GetGameState(db, rdb, cfg))
			gameGroup.GET("/:token/shots", handlers.GetGameShots(db))
			gameGroup.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleGameWebSocket(db, rdb, cfg))
		}

		// Leaderboard and history
		v1.GET("/leaderboard", handlers.GetLeaderboard)
		v1.DELETE("/leaderboard", handlers.ResetLeaderboard(cfg))
		v1.GET("/games/recent", handlers.GetRecentGames(db))

		// Ops
		v1.GET("/sessions", handlers.ListSessions(cfg))
	}
}
