package http

import (
	"os"
	"path/filepath"

	"othello_server/internal/http/handlers"
	"othello_server/internal/http/middleware"
	"othello_server/internal/logger"
	"othello_server/internal/ratelimit"
	"othello_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP surface needs. Checks, Games and StaticDir are
// optional.
type Deps struct {
	Hub           *ws.Hub
	Dispatcher    ws.Dispatcher
	AllowedOrigin string
	WSLimiter     *ratelimit.Limiter
	Checks        map[string]handlers.Check
	Stats         func() map[string]int
	Games         handlers.FinishedGameLister
	StaticDir     string
	Version       string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(logger.With("component", "http")))

	healthHandler := handlers.NewHealthHandler(d.Checks, d.Stats, d.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws", middleware.RedisRateLimit(d.WSLimiter), ws.HandleWS(d.Hub, d.Dispatcher, d.AllowedOrigin))

	if d.Games != nil {
		v1 := r.Group("/api/v1")
		gamesHandler := handlers.NewGamesHandler(d.Games)
		v1.GET("/games/recent", gamesHandler.Recent)
	}

	registerStatic(r, d.StaticDir)
}

// registerStatic serves the browser client from dir, with index.html as the
// fallback for unknown paths.
func registerStatic(r *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		logger.Warn("static directory not found, not serving client", "dir", dir)
		return
	}

	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		path := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(index)
	})
}
