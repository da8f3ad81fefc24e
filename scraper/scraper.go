package scraper

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/serpscout/challenge"
	"github.com/use-agent/serpscout/clock"
	"github.com/use-agent/serpscout/config"
	"github.com/use-agent/serpscout/engine"
	"github.com/use-agent/serpscout/extractor"
	"github.com/use-agent/serpscout/fingerprint"
	"github.com/use-agent/serpscout/human"
	"github.com/use-agent/serpscout/models"
)

// slot is one run permit. Every run holding a slot gets its own incognito
// context, so concurrent runs never share cookies, storage or a profile.
type slot struct {
	id   int32
	runs int
}

// Scraper owns the browser process and bounds how many search runs use
// it at once. It is safe for concurrent use.
type Scraper struct {
	browser    *rod.Browser
	slots      rod.Pool[slot]
	cfg        *config.Config
	randomizer *fingerprint.Randomizer
	fetcher    engine.Engine
	clock      clock.Clock
	signal     challenge.Signal
	typist     *human.Typist
	extractor  *extractor.Extractor

	nextSlot  atomic.Int32
	active    atomic.Int32
	startTime time.Time
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithChallengeSignal lets an operator end a challenge backoff early.
func WithChallengeSignal(sig challenge.Signal) Option {
	return func(s *Scraper) { s.signal = sig }
}

// WithClock replaces the wall clock used for pauses and budgets.
func WithClock(c clock.Clock) Option {
	return func(s *Scraper) { s.clock = c }
}

// WithRandomizer replaces the default fingerprint pools.
func WithRandomizer(r *fingerprint.Randomizer) Option {
	return func(s *Scraper) { s.randomizer = r }
}

// New launches the browser and prepares the session slots.
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	s := &Scraper{
		cfg:       cfg,
		slots:     rod.NewPool[slot](max(cfg.Browser.MaxSessions, 1)),
		fetcher:   engine.NewHTTPEngine(cfg.Browser.DefaultProxy),
		clock:     clock.Real,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.randomizer == nil {
		r, err := fingerprint.NewRandomizer(fingerprint.DefaultPools(), nil)
		if err != nil {
			return nil, err
		}
		s.randomizer = r
	}
	s.typist = human.NewTypist(cfg.Typing.Delay, s.clock)
	s.extractor = extractor.New(extractor.Options{
		Budget:      cfg.Extract.Budget,
		Target:      cfg.Extract.Target,
		ScrollDelta: cfg.Extract.ScrollDelta,
		Settle:      cfg.Extract.Settle,
		StallLimit:  cfg.Extract.StallLimit,
	}, s.clock)

	browser, err := launch(cfg.Browser)
	if err != nil {
		return nil, err
	}
	s.browser = browser
	slog.Info("session slots ready", "maxSessions", cap(s.slots))
	return s, nil
}

func launch(cfg config.BrowserConfig) (*rod.Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "TranslateUI")
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("no-default-browser-check"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", cfg.Headless)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}
	return browser, nil
}

// Stats returns a snapshot of session usage.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxSessions:    cap(s.slots),
		ActiveSessions: int(s.active.Load()),
	}
}

// Uptime reports how long the browser has been running.
func (s *Scraper) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Close releases the slots and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: releasing session slots")
	s.slots.Cleanup(func(sl *slot) {
		slog.Debug("session slot released", "slot", sl.id, "runs", sl.runs)
	})
	slog.Info("scraper shutting down: closing browser")
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	slog.Info("scraper shutdown complete")
}
