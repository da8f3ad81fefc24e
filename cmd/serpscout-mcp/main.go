package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/serpscout/models"
)

func main() {
	apiURL := os.Getenv("SERPSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SERPSCOUT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SERPSCOUT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"serpscout",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_listings",
		mcp.WithDescription("Search the web for property listings, open the first organic result and return up to 5 listings (title, price, link) found on that page. A run takes 30-90 seconds."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text search, e.g. 'independent house bangalore'"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Accept a cached result up to this many milliseconds old (0 = always run a fresh search)"),
		),
	)
	s.AddTool(searchTool, handleSearch(apiURL, apiKey))

	healthTool := mcp.NewTool("service_health",
		mcp.WithDescription("Report whether the search service is up and how many browser sessions are busy."),
	)
	s.AddTool(healthTool, handleHealth(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func handleSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 320 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		payload := map[string]any{"query": query}
		if maxAge, ok := request.GetArguments()["max_age"]; ok {
			payload["max_age"] = maxAge
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/search", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search request failed: %v", err)), nil
		}

		var resp models.SearchResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse search response: %v", err)), nil
		}
		if !resp.Success || resp.Result == nil {
			errMsg := "search failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatResult(resp)), nil
	}
}

func handleHealth(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/health", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create request: %v", err)), nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("health request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		var health models.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse health response: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s (version %s, up %s): %d/%d sessions busy",
			health.Status, health.Version, health.Uptime,
			health.PoolStats.ActiveSessions, health.PoolStats.MaxSessions,
		)), nil
	}
}

// formatResult renders a successful search as plain text.
func formatResult(resp models.SearchResponse) string {
	rs := resp.Result

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search: %s\nSource: %s\nItems: %d", rs.SearchText, rs.SourcePage, rs.TotalItems)
	if resp.CacheStatus == "hit" {
		sb.WriteString(" (cached)")
	}
	sb.WriteString("\n\n")

	if rs.TotalItems == 0 {
		sb.WriteString("No listings with a title, price and link were found on the page.\n")
	}
	for i, it := range rs.Items {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n", i+1, it.Title, it.Price, it.Link)
	}
	return sb.String()
}

func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
