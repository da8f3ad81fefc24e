package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/serpscout/cache"
	"github.com/use-agent/serpscout/models"
	"github.com/use-agent/serpscout/scraper"
)

type fakeSearcher struct {
	calls    int
	lastRun  string
	lastText string
	deadline time.Duration
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, runID, query string) (*scraper.Harvest, error) {
	f.calls++
	f.lastRun, f.lastText = runID, query
	if dl, ok := ctx.Deadline(); ok {
		f.deadline = time.Until(dl)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &scraper.Harvest{
		RunID: runID,
		Result: models.NewResultSet(query, "https://listings.test/", []models.ExtractedItem{
			{Title: "Villa 1", Price: "₹ 1 Cr", Link: "https://listings.test/1"},
		}),
		Timing: models.TimingInfo{SearchMs: 10, ExtractMs: 20},
	}, nil
}

func newTestRouter(sc Searcher, cc *cache.Cache, maxTimeout time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/search", Search(sc, cc, maxTimeout))
	return r
}

func post(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, models.SearchResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp models.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return w, resp
}

func TestSearch_Success(t *testing.T) {
	fs := &fakeSearcher{}
	w, resp := post(t, newTestRouter(fs, nil, 0), `{"query":"villa goa"}`)

	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, resp = %+v", w.Code, resp)
	}
	if resp.Result == nil || resp.Result.TotalItems != 1 || resp.Result.SearchText != "villa goa" {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.RunID == "" || resp.RunID != fs.lastRun {
		t.Errorf("run id %q not passed through (searcher saw %q)", resp.RunID, fs.lastRun)
	}
	if resp.CacheStatus != "" {
		t.Errorf("cache status = %q without max_age", resp.CacheStatus)
	}
	if resp.Timing.ExtractMs != 20 {
		t.Errorf("timing = %+v", resp.Timing)
	}
}

func TestSearch_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{}`},
		{"malformed json", `{"query":`},
		{"timeout too small", `{"query":"x","timeout":1}`},
		{"bad webhook url", `{"query":"x","webhook_url":"not a url"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSearcher{}
			w, resp := post(t, newTestRouter(fs, nil, 0), tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
				t.Errorf("error = %+v", resp.Error)
			}
			if fs.calls != 0 {
				t.Error("searcher called for an invalid request")
			}
		})
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{models.NewScrapeError(models.ErrCodeTimeout, "slow", context.DeadlineExceeded), http.StatusGatewayTimeout, models.ErrCodeTimeout},
		{models.NewScrapeError(models.ErrCodeNotFound, "no box", nil), http.StatusBadGateway, models.ErrCodeNotFound},
		{models.NewScrapeError(models.ErrCodeBrowserCrash, "gone", nil), http.StatusServiceUnavailable, models.ErrCodeBrowserCrash},
		{context.Canceled, http.StatusInternalServerError, models.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w, resp := post(t, newTestRouter(&fakeSearcher{err: tt.err}, nil, 0), `{"query":"x"}`)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("resp = %+v", resp)
			}
			if resp.Result != nil {
				t.Error("failed run returned a result")
			}
		})
	}
}

func TestSearch_Cache(t *testing.T) {
	fs := &fakeSearcher{}
	cc := cache.New(10)
	defer cc.Close()
	r := newTestRouter(fs, cc, 0)

	_, first := post(t, r, `{"query":"Villa Goa","max_age":60000}`)
	_, second := post(t, r, `{"query":"villa  goa","max_age":60000}`)
	_, third := post(t, r, `{"query":"villa goa"}`)

	if first.CacheStatus != "miss" || second.CacheStatus != "hit" {
		t.Errorf("cache status = %q then %q", first.CacheStatus, second.CacheStatus)
	}
	if third.CacheStatus != "" {
		t.Errorf("lookup without max_age reported %q", third.CacheStatus)
	}
	if fs.calls != 2 {
		t.Errorf("searcher calls = %d, want 2", fs.calls)
	}
	if second.Result == nil || second.Result.SearchText != "Villa Goa" {
		t.Errorf("cached result = %+v", second.Result)
	}
}

func TestSearch_TimeoutCapped(t *testing.T) {
	fs := &fakeSearcher{}
	post(t, newTestRouter(fs, nil, 30*time.Second), `{"query":"x","timeout":300}`)
	if fs.deadline <= 0 || fs.deadline > 30*time.Second {
		t.Errorf("deadline = %v, want capped at 30s", fs.deadline)
	}
}
