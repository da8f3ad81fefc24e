package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPEngine_Fetch(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/listing", http.StatusFound)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title> Villas in Goa </title></head><body>ok</body></html>`))
	}))
	defer srv.Close()

	e := NewHTTPEngine("")
	res, err := e.Fetch(context.Background(), &FetchRequest{
		URL: srv.URL + "/old",
		Headers: map[string]string{
			"User-Agent":      "test-agent",
			"Accept-Language": "en-IN,en;q=0.9",
		},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Title != "Villas in Goa" {
		t.Errorf("Title = %q", res.Title)
	}
	if !strings.HasSuffix(res.FinalURL, "/listing") {
		t.Errorf("FinalURL = %q, want redirect target", res.FinalURL)
	}
	if res.EngineName != "http" || res.StatusCode != http.StatusOK {
		t.Errorf("result = %+v", res)
	}
	if gotUA != "test-agent" || gotLang != "en-IN,en;q=0.9" {
		t.Errorf("headers = %q / %q, want request overrides", gotUA, gotLang)
	}
}

func TestHTTPEngine_DefaultHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<p>x</p>`))
	}))
	defer srv.Close()

	if _, err := NewHTTPEngine("").Fetch(context.Background(), &FetchRequest{
		URL:     srv.URL,
		Headers: map[string]string{"User-Agent": ""},
	}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotUA != defaultUA {
		t.Errorf("User-Agent = %q, want default", gotUA)
	}
}

func TestHTTPEngine_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ct     string
	}{
		{"server error", http.StatusInternalServerError, "text/html"},
		{"forbidden", http.StatusForbidden, "text/html"},
		{"json body", http.StatusOK, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ct)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			if _, err := NewHTTPEngine("").Fetch(context.Background(), &FetchRequest{URL: srv.URL}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<title>Plots</title>`, "Plots"},
		{`<html><head></head><body>no title</body></html>`, ""},
		{`<title></title><p>x</p>`, ""},
	}
	for _, tt := range tests {
		if got := extractTitle(tt.in); got != tt.want {
			t.Errorf("extractTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
