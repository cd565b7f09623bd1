package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"othello_server/internal/config"
	"othello_server/internal/db"
	"othello_server/internal/game"
	httpServer "othello_server/internal/http"
	"othello_server/internal/http/handlers"
	"othello_server/internal/logger"
	"othello_server/internal/ratelimit"
	"othello_server/internal/repository"
	"othello_server/internal/service"
	"othello_server/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()
	checks := map[string]handlers.Check{}

	var (
		recorder service.GameRecorder
		games    handlers.FinishedGameLister
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connect failed", "error", err)
		}
		defer pool.Close()

		repo := repository.NewFinishedGameRepository(pool)
		recorder, games = repo, repo
		checks["database"] = pool.Ping
	} else {
		logger.Info("DATABASE_URL not set, finished games will not be archived")
	}

	var wsLimiter, eventLimiter *ratelimit.Limiter
	if rdb := ratelimit.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		wsLimiter = ratelimit.New(rdb, "rl:ws", cfg.WSRateLimit, cfg.WSRateWindow)
		eventLimiter = ratelimit.New(rdb, "rl:event", cfg.EventRateLimit, cfg.EventRateWindow)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info("redis rate limiting enabled", "addr", cfg.RedisAddr)
	} else if cfg.RedisAddr != "" {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", cfg.RedisAddr)
	}

	hub := ws.NewHub()
	registry := service.NewRegistry()
	table := game.NewTable()

	coord := service.NewCoordinator(hub, registry, table, service.CoordinatorConfig{
		CleanupAfter: cfg.GameCleanupAfter,
		Recorder:     recorder,
	})
	commandsCfg := service.CommandsConfig{
		Lobby:         cfg.LobbyRoom,
		BroadcastLogs: cfg.BroadcastLogs,
	}
	if eventLimiter != nil {
		commandsCfg.Limiter = eventLimiter
	}
	commands := service.NewCommands(hub, registry, table, coord, commandsCfg)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for a client served from another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Hub:           hub,
		Dispatcher:    commands,
		AllowedOrigin: cfg.AllowedOrigin,
		WSLimiter:     wsLimiter,
		Checks:        checks,
		Stats: func() map[string]int {
			return map[string]int{
				"connections": hub.ClientCount(),
				"players":     registry.Len(),
				"games":       table.Len(),
			}
		},
		Games:     games,
		StaticDir: cfg.StaticDir,
		Version:   version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	hub.Close()
	table.Close()

	logger.Info("server exited")
}
