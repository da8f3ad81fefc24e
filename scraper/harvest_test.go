package scraper

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/serpscout/clock"
	"github.com/use-agent/serpscout/config"
	"github.com/use-agent/serpscout/engine"
	"github.com/use-agent/serpscout/extractor"
	"github.com/use-agent/serpscout/models"
)

type stubEngine struct {
	res *engine.FetchResult
	err error
	req *engine.FetchRequest
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	e.req = req
	return e.res, e.err
}

func newFallbackScraper(fetcher engine.Engine) *Scraper {
	cfg := &config.Config{}
	cfg.Search.EngineURL = "https://www.google.com"
	cfg.Extract.HTTPTimeout = time.Second
	return &Scraper{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor.New(extractor.DefaultOptions(), clock.Real),
	}
}

func TestStaticScan(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><head><title>Villas in Goa</title></head><body><ul>")
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		b.WriteString(`<li><a href="/v/` + id + `"><h3>Villa ` + id + `</h3></a><span>₹ 2 Cr</span></li>`)
	}
	b.WriteString("</ul></body></html>")

	eng := &stubEngine{res: &engine.FetchResult{
		HTML:       b.String(),
		Title:      "Villas in Goa",
		StatusCode: 200,
		FinalURL:   "https://listings.test/goa",
		EngineName: "http",
	}}
	s := newFallbackScraper(eng)

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	prof := models.SessionProfile{UserAgent: "UA/1", Locale: "en-IN"}

	items := s.staticScan(context.Background(), "https://listings.test/goa", prof, log)

	if len(items) != 5 {
		t.Fatalf("got %d items, want the 5-item cap", len(items))
	}
	if items[0].Link != "https://listings.test/v/1" {
		t.Errorf("first item = %+v", items[0])
	}
	if eng.req.Headers["User-Agent"] != "UA/1" || eng.req.Headers["Accept-Language"] != prof.AcceptLanguage() {
		t.Errorf("fetch headers = %v", eng.req.Headers)
	}
	if got := logs.String(); !strings.Contains(got, `title="Villas in Goa"`) || !strings.Contains(got, "status=200") {
		t.Errorf("fallback log lacks page details: %s", got)
	}
}

func TestStaticScan_FetchError(t *testing.T) {
	s := newFallbackScraper(&stubEngine{err: errors.New("connection reset")})
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if items := s.staticScan(context.Background(), "https://listings.test/goa", models.SessionProfile{}, log); len(items) != 0 {
		t.Errorf("fetch failure yielded %+v", items)
	}
}
