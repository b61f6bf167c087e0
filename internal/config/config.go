package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT (validation only, tokens are issued by the auth service)
	JWTSecret string

	// Learning engine
	StudyLocation           *time.Location
	StatsCacheTTL           time.Duration
	LearningRateLimitPerMin int
	QuestionSeed            int64

	// Study sessions
	StudySessionIdle     time.Duration
	SessionSweepInterval time.Duration

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                    getEnvOrDefault("PORT", "8080"),
		Env:                     getEnvOrDefault("ENV", "development"),
		DatabaseURL:             mustGetEnv("DATABASE_URL"),
		RedisURL:                mustGetEnv("REDIS_URL"),
		JWTSecret:               mustGetEnv("JWT_SECRET"),
		StudyLocation:           mustLoadLocation(getEnvOrDefault("STUDY_TIMEZONE", "UTC")),
		StatsCacheTTL:           time.Duration(getEnvAsIntOrDefault("STATS_CACHE_TTL_SECONDS", 60)) * time.Second,
		LearningRateLimitPerMin: getEnvAsPositiveIntOrDefault("LEARNING_RATE_LIMIT_PER_MIN", 120),
		QuestionSeed:            int64(getEnvAsIntOrDefault("QUESTION_SEED", 0)),
		StudySessionIdle:        time.Duration(getEnvAsPositiveIntOrDefault("STUDY_SESSION_IDLE_MINUTES", 30)) * time.Minute,
		SessionSweepInterval:    time.Duration(getEnvAsPositiveIntOrDefault("SESSION_SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
		FrontendURL:             getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("invalid STUDY_TIMEZONE %q: %v", name, err))
	}
	return loc
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsPositiveIntOrDefault is getEnvAsIntOrDefault for settings where zero or
// a negative value would stall the server (tickers, limiters).
func getEnvAsPositiveIntOrDefault(key string, defaultVal int) int {
	n := getEnvAsIntOrDefault(key, defaultVal)
	if n <= 0 {
		return defaultVal
	}
	return n
}
