// Package fingerprint picks the browsing identity presented by a session.
package fingerprint

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/use-agent/serpscout/models"
)

// Pools holds the candidate values for each identity dimension.
type Pools struct {
	UserAgents []string
	Viewports  []models.Viewport
	Locales    []string
	Timezones  []string
}

// DefaultPools returns the built-in candidate pools.
func DefaultPools() Pools {
	return Pools{
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
		},
		Viewports: []models.Viewport{
			{Width: 1280, Height: 800},
			{Width: 1366, Height: 768},
			{Width: 1536, Height: 864},
		},
		Locales:   []string{"en-IN", "en-US", "en-GB"},
		Timezones: []string{"Asia/Kolkata", "America/New_York", "Europe/London"},
	}
}

// ErrEmptyPool is returned when any candidate pool has no entries.
var ErrEmptyPool = errors.New("fingerprint: every pool needs at least one candidate")

// Randomizer samples SessionProfiles. Each dimension is drawn uniformly
// and independently, so combinations are not guaranteed to be coherent
// (a timezone may not match the locale).
//
// It is safe for concurrent use.
type Randomizer struct {
	pools Pools

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomizer creates a Randomizer over pools. If src is nil a
// time-seeded PCG source is used.
func NewRandomizer(pools Pools, src rand.Source) (*Randomizer, error) {
	if len(pools.UserAgents) == 0 || len(pools.Viewports) == 0 ||
		len(pools.Locales) == 0 || len(pools.Timezones) == 0 {
		return nil, ErrEmptyPool
	}
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>17|1)
	}
	return &Randomizer{pools: pools, rng: rand.New(src)}, nil
}

// Select returns a freshly sampled profile. Every call returns an
// independent value; callers must not share one profile between
// concurrently active sessions.
func (r *Randomizer) Select() models.SessionProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	return models.SessionProfile{
		UserAgent:  r.pools.UserAgents[r.rng.IntN(len(r.pools.UserAgents))],
		Viewport:   r.pools.Viewports[r.rng.IntN(len(r.pools.Viewports))],
		Locale:     r.pools.Locales[r.rng.IntN(len(r.pools.Locales))],
		TimezoneID: r.pools.Timezones[r.rng.IntN(len(r.pools.Timezones))],
	}
}
