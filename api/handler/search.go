package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/serpscout/cache"
	"github.com/use-agent/serpscout/models"
	"github.com/use-agent/serpscout/scraper"
	"github.com/use-agent/serpscout/webhook"
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, runID, query string) (*scraper.Harvest, error)
}

// Search returns a handler for POST /api/v1/search.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when max_age is set.
//  3. Searcher.Search under the request timeout.
//  4. Cache store, webhook, respond.
func Search(sc Searcher, cc *cache.Cache, maxTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()
		runID := uuid.NewString()

		// ── 2. Cache lookup ─────────────────────────────────────────
		cacheKey := cache.Key(req.Query)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.SearchResponse{
					Success:     true,
					RunID:       runID,
					Result:      cached,
					CacheStatus: "hit",
					Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
				})
				return
			}
		}

		// ── 3. Search ───────────────────────────────────────────────
		timeout := time.Duration(req.Timeout) * time.Second
		if maxTimeout > 0 && timeout > maxTimeout {
			timeout = maxTimeout
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		h, err := sc.Search(ctx, runID, req.Query)
		if err != nil {
			detail := respondError(c, runID, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			notify(req, webhook.NewEvent(webhook.EventSearchFailed, runID, detail))
			return
		}

		// ── 4. Cache store + respond ────────────────────────────────
		resp := models.SearchResponse{
			Success: true,
			RunID:   runID,
			Result:  h.Result,
			Timing:  h.Timing,
		}
		resp.Timing.TotalMs = time.Since(totalStart).Milliseconds()
		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, h.Result)
			resp.CacheStatus = "miss"
		}

		notify(req, webhook.NewEvent(webhook.EventSearchCompleted, runID, h.Result))
		c.JSON(http.StatusOK, resp)
	}
}

func notify(req models.SearchRequest, ev *webhook.Event) {
	if req.WebhookURL == "" {
		return
	}
	slog.Debug("webhook scheduled", "run_id", ev.RunID, "event", ev.Type)
	webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, ev)
}
