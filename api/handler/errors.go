package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/serpscout/models"
)

// respondError maps a ScrapeError to the correct HTTP status code, writes
// a structured JSON error response and returns the detail it sent.
func respondError(c *gin.Context, runID string, err error, timing models.TimingInfo) *models.ErrorDetail {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	detail := scrapeErr.ToDetail()
	c.JSON(mapErrorToStatus(scrapeErr), models.SearchResponse{
		Success: false,
		RunID:   runID,
		Error:   detail,
		Timing:  timing,
	})
	return detail
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeNotFound, models.ErrCodeExtraction:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
