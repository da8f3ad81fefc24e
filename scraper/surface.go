package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// livePage adapts a rod page to the detector and extractor interfaces.
type livePage struct {
	page *rod.Page
}

func (l *livePage) HTML(ctx context.Context) (string, error) {
	return l.page.Context(ctx).HTML()
}

func (l *livePage) VisibleText(ctx context.Context) (string, error) {
	res, err := l.page.Context(ctx).Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (l *livePage) Snapshot(ctx context.Context) (string, string, error) {
	p := l.page.Context(ctx)
	rawHTML, err := p.HTML()
	if err != nil {
		return "", "", err
	}
	return rawHTML, currentURL(p), nil
}

// Scroll wheels the page down by dy and reports whether the viewport
// moved. The position is read again after two animation frames so the
// wheel has been applied.
func (l *livePage) Scroll(ctx context.Context, dy float64) (bool, error) {
	p := l.page.Context(ctx)

	before, err := scrollY(p)
	if err != nil {
		return false, err
	}
	if err := p.Mouse.Scroll(0, dy, 0); err != nil {
		return false, err
	}

	tp := p.Timeout(time.Second)
	res, err := tp.Eval(`() => new Promise(r =>
		requestAnimationFrame(() => requestAnimationFrame(() => r(window.scrollY))))`)
	tp.CancelTimeout()
	var after float64
	if err == nil {
		after = res.Value.Num()
	} else if after, err = scrollY(p); err != nil {
		return false, err
	}
	return after > before+0.5, nil
}

func scrollY(p *rod.Page) (float64, error) {
	res, err := p.Eval(`() => window.scrollY`)
	if err != nil {
		return 0, err
	}
	return res.Value.Num(), nil
}

// currentURL returns the page's location, or "" when it cannot be read.
func currentURL(p *rod.Page) string {
	info, err := p.Info()
	if err != nil {
		return ""
	}
	return info.URL
}
