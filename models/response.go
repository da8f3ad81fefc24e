package models

// SearchResponse is the response for POST /api/v1/search.
type SearchResponse struct {
	// Success indicates whether the run completed without a hard failure.
	Success bool `json:"success"`

	// RunID identifies the run in logs and webhook events.
	RunID string `json:"run_id,omitempty"`

	// Result is the produced ResultSet. Nil on failure.
	Result *ResultSet `json:"result,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the run.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// SearchMs covers search-engine navigation, typing and result click.
	SearchMs int64 `json:"search_ms"`

	// ExtractMs covers the incremental scan of the landing page.
	ExtractMs int64 `json:"extract_ms"`

	// BackoffMs is the time spent waiting out challenge pages.
	BackoffMs int64 `json:"backoff_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser session pool.
type PoolStats struct {
	MaxSessions    int `json:"max_sessions"`
	ActiveSessions int `json:"active_sessions"`
}
