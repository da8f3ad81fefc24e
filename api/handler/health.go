package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/serpscout/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// StatsReporter exposes session usage.
type StatsReporter interface {
	Stats() models.PoolStats
}

// Health returns a handler for GET /api/v1/health.
//
// The status degrades once every session slot is busy.
func Health(sr StatsReporter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sr.Stats()

		status := "healthy"
		if stats.MaxSessions > 0 && stats.ActiveSessions >= stats.MaxSessions {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   Version,
		})
	}
}
