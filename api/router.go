package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/serpscout/api/handler"
	"github.com/use-agent/serpscout/api/middleware"
	"github.com/use-agent/serpscout/cache"
	"github.com/use-agent/serpscout/config"
)

// Service is what the routes need from the scraper.
type Service interface {
	handler.Searcher
	handler.StatsReporter
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(svc Service, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(svc, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/search", handler.Search(svc, cc, cfg.Server.MaxTimeout))

	return r
}
