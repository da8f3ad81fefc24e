package models

// SearchRequest is the payload for POST /api/v1/search.
type SearchRequest struct {
	// Query is the free-text search string. Required.
	Query string `json:"query" binding:"required"`

	// Timeout is the maximum duration in seconds for the whole run
	// (search, navigation, extraction). Default: 120. Max: 300.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=10,max=300"`

	// MaxAge is the maximum acceptable age of a cached result, in
	// milliseconds. Zero disables the cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL, when set, receives a search.completed or search.failed
	// event once the run finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 120
	}
}
