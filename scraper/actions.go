package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/serpscout/models"
)

// navigate loads rawURL and waits for DOMContentLoaded, all within timeout.
func navigate(p *rod.Page, rawURL string, timeout time.Duration) error {
	tp := p.Timeout(timeout)
	defer tp.CancelTimeout()

	// The waiter must exist before Navigate or the event can be missed.
	wait := tp.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := tp.Navigate(rawURL); err != nil {
		return categorizeError(err, "navigation to "+rawURL+" failed")
	}
	wait()
	if err := tp.GetContext().Err(); err != nil {
		return categorizeError(err, "navigation to "+rawURL+" did not finish")
	}
	return nil
}

// waitElement waits up to timeout for the first element matching sel.
// The returned element is bound to p's context, not the wait's.
func waitElement(p *rod.Page, sel string, timeout time.Duration) (*rod.Element, error) {
	tp := p.Timeout(timeout)
	defer tp.CancelTimeout()

	el, err := tp.Element(sel)
	if err != nil {
		if ctxErr := p.GetContext().Err(); ctxErr != nil {
			return nil, categorizeError(ctxErr, "run ended while waiting for "+sel)
		}
		return nil, models.NewScrapeError(
			models.ErrCodeNotFound,
			fmt.Sprintf("%q not found within %s", sel, timeout),
			err,
		)
	}
	return el.Context(p.GetContext()), nil
}

// dismissConsent clicks the first visible consent button among selectors.
// It never waits and reports whether a dialog was dismissed; an absent
// dialog is the normal case.
func dismissConsent(p *rod.Page, selectors []string) bool {
	for _, sel := range selectors {
		has, el, err := p.Has(sel)
		if err != nil || !has {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Debug("consent click failed", "selector", sel, "error", err)
			continue
		}
		return true
	}
	return false
}

// openResult clicks el and waits for the resulting navigation. When the
// click cannot land (element covered or detached) the enclosing link's
// href is loaded directly instead.
func openResult(p *rod.Page, el *rod.Element, timeout time.Duration) error {
	tp := p.Timeout(timeout)
	wait := tp.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	clickErr := el.Click(proto.InputMouseButtonLeft, 1)
	if clickErr == nil {
		wait()
		err := tp.GetContext().Err()
		tp.CancelTimeout()
		if err != nil {
			return categorizeError(err, "first result did not load")
		}
		return nil
	}
	tp.CancelTimeout()

	res, err := el.Eval(`function () { const a = this.closest('a'); return a ? a.href : ""; }`)
	if err != nil || res.Value.Str() == "" {
		return models.NewScrapeError(models.ErrCodeInput, "failed to click first result", clickErr)
	}
	slog.Debug("result click failed, following link", "href", res.Value.Str(), "error", clickErr)
	return navigate(p, res.Value.Str(), timeout)
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
