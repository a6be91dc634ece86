package config

import (
	"os"
	"strconv"
	"time"

	"predman/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PredictionURL string

	// API limits
	APIRateLimit   int
	APIRateWindow  int
	AuthRateLimit  int
	AuthRateWindow int

	BoardCacheTTL    time.Duration
	StatsRefreshHour int

	LogLevel string
	LogJSON  bool
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8090"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	refreshHour := intEnv("STATS_REFRESH_HOUR", 3)
	if refreshHour > 23 {
		logger.Warn("STATS_REFRESH_HOUR out of range, using 3", "value", refreshHour)
		refreshHour = 3
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		JWTSecret:        jwtSecret,
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          intEnv("REDIS_DB", 0),
		PredictionURL:    os.Getenv("PREDICTION_URL"),
		APIRateLimit:     intEnv("API_RATE_LIMIT", 300), // запросов за окно
		APIRateWindow:    intEnv("API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:    intEnv("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:   intEnv("AUTH_RATE_WINDOW_SECONDS", 60),
		BoardCacheTTL:    time.Duration(intEnv("BOARD_CACHE_TTL_SECONDS", 300)) * time.Second,
		StatsRefreshHour: refreshHour,
		LogLevel:         logLevel,
		LogJSON:          os.Getenv("LOG_JSON") == "true",
	}
}

// intEnv reads a non-negative integer, falling back to def on absence or garbage.
func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("invalid integer env value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}
