package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Search    SearchConfig
	Typing    TypingConfig
	Challenge ChallengeConfig
	Extract   ExtractConfig
	Hijack    HijackConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Output    OutputConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MaxTimeout caps the per-request run timeout a client may ask for.
	MaxTimeout time.Duration // default: 300s
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	// default: true for the server, false for the CLI.
	Headless bool

	// MaxSessions bounds the number of concurrent runs, each with its own
	// incognito context.
	MaxSessions int // default: 2

	// DefaultProxy is the proxy URL passed to the launcher.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// SearchConfig describes the search engine page and the waits around it.
type SearchConfig struct {
	EngineURL         string // default: "https://www.google.com"
	SearchBoxSelector string // default: `textarea[name="q"]`
	ResultSelector    string // default: "a h3"

	// ConsentSelectors are tried in order to dismiss a consent dialog.
	ConsentSelectors []string

	// ElementTimeout bounds the wait for the search box and the first result.
	ElementTimeout time.Duration // default: 15s

	// NavigationTimeout bounds each document navigation.
	NavigationTimeout time.Duration // default: 30s

	// PreSubmitPause is the idle time between the last keystroke and Enter.
	PreSubmitPause time.Duration // default: 4s

	// PostSubmitSettle is the idle time after Enter before the results
	// page is inspected.
	PostSubmitSettle time.Duration // default: 5s
}

// TypingConfig controls keystroke emulation.
type TypingConfig struct {
	Delay time.Duration // default: 120ms
}

// ChallengeConfig controls challenge detection and backoff.
type ChallengeConfig struct {
	Wait    time.Duration // default: 25s
	Phrases []string      // default: unusual traffic, verify you are human, captcha
}

// ExtractConfig bounds the incremental scan of the landing page.
type ExtractConfig struct {
	Budget      time.Duration // default: 12s
	Target      int           // default: 5
	ScrollDelta float64       // default: 800
	Settle      time.Duration // default: 800ms
	StallLimit  int           // default: 3

	// StaticFallback re-fetches the landing page over HTTP and scans it
	// once when the live scan found nothing.
	StaticFallback bool          // default: true
	HTTPTimeout    time.Duration // default: 10s
}

// HijackConfig controls request interception on search sessions.
type HijackConfig struct {
	// BlockedResourceTypes lists resource types to block.
	// default: ["Media", "Font"]
	BlockedResourceTypes []string

	// BlockAds blocks well-known ad and tracking hosts.
	BlockAds bool // default: true
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 0.5

	// Burst is the maximum burst size per API key.
	Burst int // default: 2
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached result sets.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json" (server), "text" (CLI)
}

// OutputConfig controls where the CLI writes its result.
type OutputConfig struct {
	Path string // default: "results.json"
}

// defaults differ between the long-running server and the interactive CLI.
type defaults struct {
	headless  bool
	logFormat string
}

// Load reads server configuration from environment variables with sane
// defaults.
func Load() *Config {
	return load(defaults{headless: true, logFormat: "json"})
}

// LoadCLI is Load with the interactive defaults: a visible browser window
// and text logs.
func LoadCLI() *Config {
	return load(defaults{headless: false, logFormat: "text"})
}

func load(d defaults) *Config {
	return &Config{
		Server: ServerConfig{
			Host:       envOr("SERPSCOUT_HOST", "0.0.0.0"),
			Port:       envIntOr("SERPSCOUT_PORT", 8080),
			Mode:       envOr("SERPSCOUT_MODE", "release"),
			MaxTimeout: envDurationOr("SERPSCOUT_MAX_TIMEOUT", 300*time.Second),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SERPSCOUT_HEADLESS", d.headless),
			MaxSessions:  envIntOr("SERPSCOUT_MAX_SESSIONS", 2),
			DefaultProxy: os.Getenv("SERPSCOUT_PROXY"),
			NoSandbox:    envBoolOr("SERPSCOUT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SERPSCOUT_BROWSER_BIN"),
		},
		Search: SearchConfig{
			EngineURL:         envOr("SERPSCOUT_ENGINE_URL", "https://www.google.com"),
			SearchBoxSelector: envOr("SERPSCOUT_SEARCH_BOX", `textarea[name="q"]`),
			ResultSelector:    envOr("SERPSCOUT_RESULT_SELECTOR", "a h3"),
			ConsentSelectors: envSliceOr("SERPSCOUT_CONSENT_SELECTORS", []string{
				"#L2AGLb",
				`button[aria-label="Accept all"]`,
				`form[action*="consent"] button`,
			}),
			ElementTimeout:    envDurationOr("SERPSCOUT_ELEMENT_TIMEOUT", 15*time.Second),
			NavigationTimeout: envDurationOr("SERPSCOUT_NAV_TIMEOUT", 30*time.Second),
			PreSubmitPause:    envDurationOr("SERPSCOUT_PRE_SUBMIT_PAUSE", 4*time.Second),
			PostSubmitSettle:  envDurationOr("SERPSCOUT_POST_SUBMIT_SETTLE", 5*time.Second),
		},
		Typing: TypingConfig{
			Delay: envDurationOr("SERPSCOUT_TYPING_DELAY", 120*time.Millisecond),
		},
		Challenge: ChallengeConfig{
			Wait: envDurationOr("SERPSCOUT_CHALLENGE_WAIT", 25*time.Second),
			Phrases: envSliceOr("SERPSCOUT_CHALLENGE_PHRASES", []string{
				"unusual traffic", "verify you are human", "captcha",
			}),
		},
		Extract: ExtractConfig{
			Budget:         envDurationOr("SERPSCOUT_EXTRACT_BUDGET", 12*time.Second),
			Target:         envIntOr("SERPSCOUT_EXTRACT_TARGET", 5),
			ScrollDelta:    envFloatOr("SERPSCOUT_SCROLL_DELTA", 800),
			Settle:         envDurationOr("SERPSCOUT_SCROLL_SETTLE", 800*time.Millisecond),
			StallLimit:     envIntOr("SERPSCOUT_STALL_LIMIT", 3),
			StaticFallback: envBoolOr("SERPSCOUT_STATIC_FALLBACK", true),
			HTTPTimeout:    envDurationOr("SERPSCOUT_HTTP_TIMEOUT", 10*time.Second),
		},
		Hijack: HijackConfig{
			BlockedResourceTypes: envSliceOr("SERPSCOUT_BLOCKED_RESOURCES", []string{"Media", "Font"}),
			BlockAds:             envBoolOr("SERPSCOUT_BLOCK_ADS", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SERPSCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SERPSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SERPSCOUT_RATE_RPS", 0.5),
			Burst:             envIntOr("SERPSCOUT_RATE_BURST", 2),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SERPSCOUT_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("SERPSCOUT_LOG_LEVEL", "info"),
			Format: envOr("SERPSCOUT_LOG_FORMAT", d.logFormat),
		},
		Output: OutputConfig{
			Path: envOr("SERPSCOUT_OUTPUT", "results.json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
