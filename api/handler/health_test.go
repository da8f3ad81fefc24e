package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/serpscout/models"
)

type fixedStats models.PoolStats

func (f fixedStats) Stats() models.PoolStats { return models.PoolStats(f) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		stats  models.PoolStats
		status string
	}{
		{"idle", models.PoolStats{MaxSessions: 2}, "healthy"},
		{"partly busy", models.PoolStats{MaxSessions: 2, ActiveSessions: 1}, "healthy"},
		{"saturated", models.PoolStats{MaxSessions: 2, ActiveSessions: 2}, "degraded"},
	}
	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Health(fixedStats(tt.stats), time.Now().Add(-time.Minute)))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			var resp models.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.status {
				t.Errorf("status = %q, want %q", resp.Status, tt.status)
			}
			if resp.PoolStats != tt.stats || resp.Version != Version {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}
