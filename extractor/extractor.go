// Package extractor scans a live page for listing records while scrolling
// it, under a wall-clock budget and an item cap.
//
// The matching rules (rules.go) and the DOM traversal over an HTML
// snapshot (scan.go) are pure; only Extractor.Run touches the page, via
// the Surface interface.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/serpscout/clock"
	"github.com/use-agent/serpscout/models"
)

// Surface is the live page as seen by the extractor.
type Surface interface {
	// Snapshot returns the current document HTML and its URL.
	Snapshot(ctx context.Context) (rawHTML, pageURL string, err error)
	// Scroll moves the viewport down by dy pixels and reports whether
	// the scroll position actually changed.
	Scroll(ctx context.Context, dy float64) (advanced bool, err error)
}

// Options bounds a run.
type Options struct {
	Budget      time.Duration // total wall-clock budget
	Target      int           // item cap
	ScrollDelta float64       // pixels per scroll step
	Settle      time.Duration // pause after each scroll
	// StallLimit stops the scan after this many consecutive iterations
	// that found nothing new and could not scroll further. Zero disables it.
	StallLimit int
}

// DefaultOptions returns the standard budget: 12s, 5 items, 800px steps
// with an 800ms settle.
func DefaultOptions() Options {
	return Options{
		Budget:      12 * time.Second,
		Target:      5,
		ScrollDelta: 800,
		Settle:      800 * time.Millisecond,
		StallLimit:  3,
	}
}

// Extractor runs the incremental scan.
type Extractor struct {
	opts  Options
	clock clock.Clock
}

// New returns an Extractor. Zero-valued options take their defaults.
func New(opts Options, c clock.Clock) *Extractor {
	def := DefaultOptions()
	if opts.Budget <= 0 {
		opts.Budget = def.Budget
	}
	if opts.Target <= 0 {
		opts.Target = def.Target
	}
	if opts.ScrollDelta <= 0 {
		opts.ScrollDelta = def.ScrollDelta
	}
	if opts.Settle <= 0 {
		opts.Settle = def.Settle
	}
	if c == nil {
		c = clock.Real
	}
	return &Extractor{opts: opts, clock: c}
}

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.opts }

// Run scans s until the budget expires, the cap is reached or the page
// stalls. Items come back in first-seen order; fewer than the cap is a
// normal result.
func (e *Extractor) Run(ctx context.Context, s Surface) ([]models.ExtractedItem, error) {
	set := NewItemSet(e.opts.Target)
	start := e.clock.Now()
	stalls := 0

	for iter := 1; ; iter++ {
		if set.Full() {
			slog.Debug("extract: target reached", "iteration", iter, "items", set.Len())
			break
		}
		if e.clock.Now().Sub(start) >= e.opts.Budget {
			slog.Debug("extract: budget exhausted", "iteration", iter, "items", set.Len())
			break
		}

		rawHTML, pageURL, err := s.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("extract: snapshot: %w", err)
		}
		found, err := ScanHTML(rawHTML, pageURL)
		if err != nil {
			return nil, fmt.Errorf("extract: parse snapshot: %w", err)
		}
		added := set.Merge(found)

		slog.Debug("extract: iteration",
			"iteration", iter,
			"candidates", len(found),
			"added", added,
			"items", set.Len(),
		)

		if set.Full() {
			continue
		}

		advanced, err := s.Scroll(ctx, e.opts.ScrollDelta)
		if err != nil {
			return nil, fmt.Errorf("extract: scroll: %w", err)
		}
		if err := e.clock.Sleep(ctx, e.opts.Settle); err != nil {
			return nil, err
		}

		if added == 0 && !advanced {
			stalls++
		} else {
			stalls = 0
		}
		if e.opts.StallLimit > 0 && stalls >= e.opts.StallLimit {
			slog.Debug("extract: page stalled", "iteration", iter, "items", set.Len())
			break
		}
	}

	return set.Items(), nil
}
