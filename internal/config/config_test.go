package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"APP_PORT", "LOG_LEVEL", "LOG_JSON", "DATABASE_URL", "REDIS_ADDR", "REDIS_DB",
		"STATIC_DIR", "LOBBY_ROOM", "GAME_CLEANUP_AFTER", "BROADCAST_LOGS",
		"WS_RATE_LIMIT", "WS_RATE_WINDOW_SECONDS", "EVENT_RATE_LIMIT", "EVENT_RATE_WINDOW_SECONDS",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "./public", cfg.StaticDir)
	assert.Equal(t, "Lobby", cfg.LobbyRoom)
	assert.Equal(t, time.Hour, cfg.GameCleanupAfter)
	assert.True(t, cfg.BroadcastLogs)
	assert.Equal(t, 60*time.Second, cfg.WSRateWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("LOBBY_ROOM", "Hall")
	t.Setenv("GAME_CLEANUP_AFTER", "90s")
	t.Setenv("BROADCAST_LOGS", "false")
	t.Setenv("EVENT_RATE_LIMIT", "5")
	t.Setenv("EVENT_RATE_WINDOW_SECONDS", "2")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9000", cfg.AppPort)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "Hall", cfg.LobbyRoom)
	assert.Equal(t, 90*time.Second, cfg.GameCleanupAfter)
	assert.False(t, cfg.BroadcastLogs)
	assert.Equal(t, 5, cfg.EventRateLimit)
	assert.Equal(t, 2*time.Second, cfg.EventRateWindow)
	assert.Equal(t, 0, cfg.RedisDB)
}
