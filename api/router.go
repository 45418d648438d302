package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/setlist/api/handler"
	"github.com/use-agent/setlist/api/middleware"
	"github.com/use-agent/setlist/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:   Recovery → Logger
//	API:      Auth (if enabled) → RateLimit
//	Playlist: single in-flight Guard
//
// Health is outside auth so monitoring probes always work.
func NewRouter(p handler.PlaylistParser, guard *middleware.Guard, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(guard, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/playlist", guard.Handler(), handler.Parse(p))

	return r
}
