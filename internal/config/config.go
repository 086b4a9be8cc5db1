package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Game Settings
	GameExpiryMinutes int
	TickRate          int
	SnapshotRate      int

	// Advisor (external AI service)
	AdvisorBaseURL       string
	AdvisorAPIKey        string
	AdvisorTimeoutSecs   int
	AdvisorSettleDelayMS int

	// Event sink
	EventSinkURL     string
	EventKinds       string // csv filter; empty means all
	MinNotifyCluster int
	VerboseEvents    bool

	// Security
	JWTSecret    string
	OpsTokenHash string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/pinchpop?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Game Settings
		GameExpiryMinutes: getEnvInt("GAME_EXPIRY_MINUTES", 10),
		TickRate:          getEnvInt("TICK_RATE", 60),
		SnapshotRate:      getEnvInt("SNAPSHOT_RATE", 20),

		// Advisor
		AdvisorBaseURL:       getEnv("ADVISOR_BASE_URL", ""),
		AdvisorAPIKey:        getEnv("ADVISOR_API_KEY", ""),
		AdvisorTimeoutSecs:   getEnvInt("ADVISOR_TIMEOUT_SECONDS", 15),
		AdvisorSettleDelayMS: getEnvInt("ADVISOR_SETTLE_DELAY_MS", 2000),

		// Event sink
		EventSinkURL:     getEnv("EVENT_SINK_URL", ""),
		EventKinds:       getEnv("EVENT_KINDS", ""),
		MinNotifyCluster: getEnvInt("MIN_NOTIFY_CLUSTER", 3),
		VerboseEvents:    getEnvBool("VERBOSE_EVENTS", false),

		// Security
		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
		OpsTokenHash: getEnv("OPS_TOKEN_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
