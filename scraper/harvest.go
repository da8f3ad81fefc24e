package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/use-agent/serpscout/challenge"
	"github.com/use-agent/serpscout/engine"
	"github.com/use-agent/serpscout/extractor"
	"github.com/use-agent/serpscout/models"
)

// Search runs one search end to end and returns the harvested items.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Acquire slot          – bounds concurrent runs
//  2. Sample profile        – one identity for the whole run
//  3. Incognito context     – isolated cookies and storage, closed on return
//  4. Identity + stealth    – profile overrides, evasion scripts, storage clear
//  5. Hijack mount          – tracker and media blocking
//  6. Search page           – navigate, consent, challenge check
//  7. Query                 – click, type, pause, Enter, settle, challenge check
//  8. First result          – wait, open, challenge check
//  9. Extract               – live incremental scan, static fallback when empty
//
// Steps 4-5 MUST happen before step 6: overrides and new-document scripts
// only apply to navigations that start after they are installed.
//
// runID labels every log line of the run; a new one is generated when
// empty. On a hard failure no Harvest is returned.
func (s *Scraper) Search(ctx context.Context, runID, query string) (*Harvest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "search text is empty", nil)
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	log := slog.With("run_id", runID)
	start := time.Now()

	// ── 1. Acquire slot ───────────────────────────────────────────────
	sl, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(sl)

	// ── 2. Sample profile ─────────────────────────────────────────────
	prof := s.randomizer.Select()
	h := &Harvest{RunID: runID, Profile: prof}
	log.Info("run started",
		"slot", sl.id,
		"userAgent", prof.UserAgent,
		"viewport", fmt.Sprintf("%dx%d", prof.Viewport.Width, prof.Viewport.Height),
		"locale", prof.Locale,
		"timezone", prof.TimezoneID,
	)

	// ── 3. Incognito context ──────────────────────────────────────────
	incognito, err := s.browser.Incognito()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create incognito context", err)
	}
	defer func() {
		if err := incognito.Close(); err != nil {
			log.Debug("incognito close failed", "error", err)
		}
	}()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create page", err)
	}

	// ── 4. Identity + stealth ─────────────────────────────────────────
	if err := applyProfile(page, prof); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to apply session profile", err)
	}
	if err := installStealth(page); err != nil {
		log.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}
	if !clearStorage(page, s.cfg.Search.EngineURL) {
		log.Debug("storage clear skipped")
	}

	// ── 5. Hijack mount ───────────────────────────────────────────────
	if router := setupHijack(page, s.cfg.Hijack); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)
	r := &run{
		s:        s,
		p:        p,
		live:     &livePage{page: p},
		detector: challenge.NewDetector(s.cfg.Challenge.Wait, s.cfg.Challenge.Phrases, s.clock, s.signal),
		h:        h,
		log:      log,
	}

	// ── 6-8. Search ───────────────────────────────────────────────────
	searchStart := time.Now()
	if err := r.search(ctx, query); err != nil {
		log.Warn("run failed", "stage", r.stage, "error", err)
		return nil, err
	}
	h.Timing.SearchMs = time.Since(searchStart).Milliseconds()

	// ── 9. Extract ────────────────────────────────────────────────────
	extractStart := time.Now()
	items, err := s.extractor.Run(ctx, r.live)
	if err != nil {
		log.Warn("run failed", "stage", "extract", "error", err)
		return nil, extractError(err)
	}
	source := currentURL(p)
	if len(items) == 0 && s.cfg.Extract.StaticFallback && source != "" {
		if fb := s.staticScan(ctx, source, prof, log); len(fb) > 0 {
			items = fb
			h.Fallback = true
		}
	}
	h.Timing.ExtractMs = time.Since(extractStart).Milliseconds()

	h.Result = models.NewResultSet(query, source, items)
	h.Timing.TotalMs = time.Since(start).Milliseconds()
	log.Info("run finished",
		"url", source,
		"items", h.Result.TotalItems,
		"fallback", h.Fallback,
		"challenges", h.Challenges,
		"total_ms", h.Timing.TotalMs,
	)
	return h, nil
}

// run carries the per-run page handles through the search steps.
type run struct {
	s        *Scraper
	p        *rod.Page
	live     *livePage
	detector *challenge.Detector
	h        *Harvest
	log      *slog.Logger
	stage    string
}

func (r *run) search(ctx context.Context, query string) error {
	cfg := r.s.cfg.Search

	// ── 6. Search page ────────────────────────────────────────────────
	r.stage = "search-page"
	if err := navigate(r.p, cfg.EngineURL, cfg.NavigationTimeout); err != nil {
		return err
	}
	if dismissConsent(r.p, cfg.ConsentSelectors) {
		r.log.Debug("consent dialog dismissed")
	}
	if err := r.checkChallenge(ctx); err != nil {
		return err
	}

	// ── 7. Query ──────────────────────────────────────────────────────
	r.stage = "query"
	box, err := waitElement(r.p, cfg.SearchBoxSelector, cfg.ElementTimeout)
	if err != nil {
		return err
	}
	if err := box.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return inputError(err, "failed to focus search box")
	}
	report, err := r.s.typist.Type(ctx, &inputField{page: r.p, el: box}, query)
	if err != nil {
		return inputError(err, "failed to type search text")
	}
	if report.Corrected {
		r.log.Info("typed value corrected", "matched", report.Matched)
	}
	if err := r.s.clock.Sleep(ctx, cfg.PreSubmitPause); err != nil {
		return categorizeError(err, "run ended before submit")
	}
	if err := r.p.Keyboard.Press(input.Enter); err != nil {
		return inputError(err, "failed to submit search")
	}
	if err := r.s.clock.Sleep(ctx, cfg.PostSubmitSettle); err != nil {
		return categorizeError(err, "run ended after submit")
	}

	r.stage = "results"
	if err := r.checkChallenge(ctx); err != nil {
		return err
	}

	// ── 8. First result ───────────────────────────────────────────────
	first, err := waitElement(r.p, cfg.ResultSelector, cfg.ElementTimeout)
	if err != nil {
		return err
	}
	if err := openResult(r.p, first, cfg.NavigationTimeout); err != nil {
		return err
	}

	r.stage = "landing"
	r.log.Info("landing page opened", "url", currentURL(r.p))
	return r.checkChallenge(ctx)
}

// checkChallenge runs the detector at the current stage. A challenge is
// waited out, never returned as an error.
func (r *run) checkChallenge(ctx context.Context) error {
	out, err := r.detector.Check(ctx, r.live, r.stage)
	if err != nil {
		return categorizeError(err, "challenge check failed at "+r.stage)
	}
	if out.State == challenge.StateDetected {
		r.h.Challenges++
		r.h.Timing.BackoffMs += out.Waited.Milliseconds()
		r.log.Warn("challenge page",
			"stage", r.stage,
			"trigger", out.Trigger,
			"waited", out.Waited,
			"resolution", out.Resolution,
		)
	}
	return nil
}

// staticScan re-fetches pageURL over HTTP with the run's identity and
// scans it once. Any failure yields no items.
func (s *Scraper) staticScan(ctx context.Context, pageURL string, prof models.SessionProfile, log *slog.Logger) []models.ExtractedItem {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.Extract.HTTPTimeout)
	defer cancel()

	res, err := s.fetcher.Fetch(fctx, &engine.FetchRequest{
		URL: pageURL,
		Headers: map[string]string{
			"User-Agent":      prof.UserAgent,
			"Accept-Language": prof.AcceptLanguage(),
			"Referer":         s.cfg.Search.EngineURL + "/",
		},
	})
	if err != nil {
		log.Debug("static fallback fetch failed", "url", pageURL, "error", err)
		return nil
	}
	found, err := extractor.ScanHTML(res.HTML, res.FinalURL)
	if err != nil {
		log.Debug("static fallback parse failed", "url", pageURL, "error", err)
		return nil
	}
	set := extractor.NewItemSet(s.extractor.Options().Target)
	set.Merge(found)
	log.Debug("static fallback scanned",
		"url", res.FinalURL,
		"title", res.Title,
		"status", res.StatusCode,
		"engine", res.EngineName,
		"items", set.Len(),
	)
	return set.Items()
}

func (s *Scraper) acquire(ctx context.Context) (*slot, error) {
	var sl *slot
	select {
	case sl = <-s.slots:
	case <-ctx.Done():
		return nil, categorizeError(ctx.Err(), "no free session before deadline")
	}
	if sl == nil {
		sl = &slot{id: s.nextSlot.Add(1)}
	}
	sl.runs++
	s.active.Add(1)
	return sl, nil
}

func (s *Scraper) release(sl *slot) {
	s.active.Add(-1)
	s.slots.Put(sl)
}

// inputError classifies a keystroke failure. A run that ended mid-typing
// is a timeout, not an input fault.
func inputError(err error, msg string) *models.ScrapeError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return categorizeError(err, msg)
	}
	return models.NewScrapeError(models.ErrCodeInput, msg, err)
}

func extractError(err error) *models.ScrapeError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return categorizeError(err, "extraction interrupted")
	}
	return models.NewScrapeError(models.ErrCodeExtraction, "failed to read landing page", err)
}
