package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	LogLevel string
	LogJSON  bool

	// DatabaseURL is optional. Without it finished games are not archived.
	DatabaseURL string

	// Redis is optional. Without it rate limiting is off.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigin string
	StaticDir     string

	LobbyRoom        string
	GameCleanupAfter time.Duration
	BroadcastLogs    bool

	// Handshakes per IP per window.
	WSRateLimit  int
	WSRateWindow time.Duration
	// Inbound events per connection per window.
	EventRateLimit  int
	EventRateWindow time.Duration
}

// Load reads the configuration from the environment, after loading .env when
// one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:          str("APP_PORT", "8080"),
		LogLevel:         str("LOG_LEVEL", "info"),
		LogJSON:          boolean("LOG_JSON", false),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          positive("REDIS_DB", 0),
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
		StaticDir:        str("STATIC_DIR", "./public"),
		LobbyRoom:        str("LOBBY_ROOM", "Lobby"),
		GameCleanupAfter: duration("GAME_CLEANUP_AFTER", time.Hour),
		BroadcastLogs:    boolean("BROADCAST_LOGS", true),
		WSRateLimit:      positive("WS_RATE_LIMIT", 30),
		WSRateWindow:     time.Duration(positive("WS_RATE_WINDOW_SECONDS", 60)) * time.Second,
		EventRateLimit:   positive("EVENT_RATE_LIMIT", 120),
		EventRateWindow:  time.Duration(positive("EVENT_RATE_WINDOW_SECONDS", 10)) * time.Second,
	}
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolean(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func positive(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
