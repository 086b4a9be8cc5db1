package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pinchpop/backend/internal/advisor"
	"github.com/pinchpop/backend/internal/api"
	"github.com/pinchpop/backend/internal/config"
	"github.com/pinchpop/backend/internal/database"
	"github.com/pinchpop/backend/internal/events"
	"github.com/pinchpop/backend/internal/game"
	"github.com/pinchpop/backend/internal/migrations"
	"github.com/pinchpop/backend/internal/redis"
	"github.com/pinchpop/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize event sink client (if configured)
	if cfg.EventSinkURL != "" {
		sinkClient := events.NewClient(cfg)
		if sinkClient != nil {
			events.SetDefault(sinkClient)
			log.Printf("[EVENTS] Event sink client initialized (url=%s)", cfg.EventSinkURL)
		}
	} else {
		log.Printf("[EVENTS] Event sink is not configured (EVENT_SINK_URL missing)")
	}
	notifier := events.NewNotifier(events.Default, cfg)
	defer notifier.Close()

	// Initialize advisor client (if configured)
	advisorClient := advisor.NewClient(cfg)
	if advisorClient != nil {
		log.Printf("[ADVISOR] Advisor client initialized (base=%s)", cfg.AdvisorBaseURL)
	} else {
		log.Printf("[ADVISOR] Advisor service not configured - hints fall back to the local heuristic")
	}
	coordinator := advisor.NewCoordinator(advisorClient, rdb)

	// Wire Redis and start the cross-instance event subscriber in the WS layer
	ws.SetRedisClient(rdb, cfg)
	ws.StartEventSubscriber(context.Background())

	// Initialize Game Manager with persistence, advisory, events and broadcast
	game.InitializeManager(db, rdb, cfg, coordinator, notifier, ws.GameHub)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting PinchPop server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
