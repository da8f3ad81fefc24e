package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/use-agent/serpscout/models"
)

func TestFormatResult(t *testing.T) {
	resp := models.SearchResponse{
		Success:     true,
		CacheStatus: "hit",
		Result: models.NewResultSet("villa goa", "https://listings.test/goa", []models.ExtractedItem{
			{Title: "Sea view villa", Price: "₹ 4 Cr", Link: "https://listings.test/v/1"},
			{Title: "Plot", Price: "₹ 90 Lakh", Link: "https://listings.test/p/2"},
		}),
	}
	got := formatResult(resp)

	for _, want := range []string{"Search: villa goa", "Items: 2 (cached)", "1. Sea view villa", "₹ 90 Lakh", "https://listings.test/p/2"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatResult_Empty(t *testing.T) {
	got := formatResult(models.SearchResponse{Success: true, Result: models.NewResultSet("q", "", nil)})
	if !strings.Contains(got, "No listings") {
		t.Errorf("empty result not explained:\n%s", got)
	}
}

func callSearch(t *testing.T, apiURL string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = "search_listings"
	req.Params.Arguments = args
	res, err := handleSearch(apiURL, "k")(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func TestHandleSearch(t *testing.T) {
	var got map[string]any
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(models.SearchResponse{
			Success: true,
			Result:  models.NewResultSet("villa", "https://listings.test/", nil),
		})
	}))
	defer srv.Close()

	res := callSearch(t, srv.URL, map[string]any{"query": "villa", "max_age": 60000})
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if key != "k" || got["query"] != "villa" || got["max_age"] != float64(60000) {
		t.Errorf("request = %v (key %q)", got, key)
	}
}

func TestHandleSearch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		json.NewEncoder(w).Encode(models.SearchResponse{
			Error: &models.ErrorDetail{Code: models.ErrCodeTimeout, Message: "slow"},
		})
	}))
	defer srv.Close()

	if res := callSearch(t, srv.URL, map[string]any{}); !res.IsError {
		t.Error("missing query accepted")
	}
	if res := callSearch(t, srv.URL, map[string]any{"query": "villa"}); !res.IsError {
		t.Error("failed search reported as success")
	}
}
