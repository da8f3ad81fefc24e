// Package challenge recognizes bot-challenge pages and rides them out
// with a single passive backoff.
//
// Two checks feed one policy. The presence test looks for reCAPTCHA
// resources or an "unusual traffic" notice; the phrase scan walks a fixed
// ordered list of challenge phrases and stops at the first hit. Either one
// marks the page as challenged, after which exactly one backoff runs. The
// backoff ends when the wait elapses or when an operator signals that the
// challenge was solved by hand. Nothing is remembered between calls.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/serpscout/clock"
)

// State is the challenge status of a page at the moment it was checked.
type State int

const (
	StateNone State = iota
	StateDetected
)

func (s State) String() string {
	if s == StateDetected {
		return "detected"
	}
	return "none"
}

// DefaultWait is the fixed backoff applied when a challenge is found.
const DefaultWait = 25 * time.Second

// DefaultPhrases is the ordered list scanned in page text.
var DefaultPhrases = []string{"unusual traffic", "verify you are human", "captcha"}

var (
	recaptchaSel   = `[src*="recaptcha"]`
	unusualTraffic = regexp.MustCompile(`(?i)unusual traffic`)
)

// Page exposes the live document to the detector.
type Page interface {
	HTML(ctx context.Context) (string, error)
	VisibleText(ctx context.Context) (string, error)
}

// Signal is an out-of-band "challenge solved, continue" notification.
// Wait returns nil once the operator signals, or ctx's error.
type Signal interface {
	Wait(ctx context.Context) error
}

// Resolution values reported in Outcome.
const (
	ResolvedTimeout  = "timeout"
	ResolvedOperator = "operator"
)

// Outcome reports one Check call.
type Outcome struct {
	State      State
	Trigger    string // "recaptcha", "unusual traffic" or the matched phrase
	Waited     time.Duration
	Resolution string // empty when no backoff ran
}

// Detector applies the backoff policy. It is stateless across calls.
type Detector struct {
	wait    time.Duration
	phrases []string
	clock   clock.Clock
	signal  Signal
}

// NewDetector builds a Detector. A zero wait or empty phrases fall back
// to the defaults; signal may be nil for unattended runs.
func NewDetector(wait time.Duration, phrases []string, c clock.Clock, signal Signal) *Detector {
	if wait <= 0 {
		wait = DefaultWait
	}
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	if c == nil {
		c = clock.Real
	}
	return &Detector{wait: wait, phrases: phrases, clock: c, signal: signal}
}

// Present reports whether the document references reCAPTCHA or shows an
// "unusual traffic" notice. It only reads its inputs.
func Present(rawHTML, visibleText string) (bool, string) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
		if doc.Find(recaptchaSel).Length() > 0 {
			return true, "recaptcha"
		}
	}
	if unusualTraffic.MatchString(visibleText) {
		return true, "unusual traffic"
	}
	return false, ""
}

// MatchPhrase returns the first phrase from phrases that occurs in text,
// compared case-insensitively.
func MatchPhrase(text string, phrases []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}

// Present runs the presence test against the live page.
func (d *Detector) Present(ctx context.Context, p Page) (bool, error) {
	rawHTML, text, err := snapshot(ctx, p)
	if err != nil {
		return false, err
	}
	found, _ := Present(rawHTML, text)
	return found, nil
}

// Check inspects the page and, if it is challenged, performs one backoff.
// stage is only used for logging.
func (d *Detector) Check(ctx context.Context, p Page, stage string) (Outcome, error) {
	rawHTML, text, err := snapshot(ctx, p)
	if err != nil {
		return Outcome{}, err
	}

	trigger := ""
	if found, why := Present(rawHTML, text); found {
		trigger = why
	} else if phrase, ok := MatchPhrase(text, d.phrases); ok {
		trigger = phrase
	}
	if trigger == "" {
		return Outcome{State: StateNone}, nil
	}

	slog.Warn("challenge page detected, backing off",
		"stage", stage,
		"trigger", trigger,
		"wait", d.wait,
		"manual_continue", d.signal != nil,
	)

	waited, resolution, err := d.backoff(ctx)
	if err != nil {
		return Outcome{}, err
	}

	slog.Info("challenge backoff finished",
		"stage", stage,
		"waited", waited.Round(time.Millisecond),
		"resolution", resolution,
	)
	return Outcome{
		State:      StateDetected,
		Trigger:    trigger,
		Waited:     waited,
		Resolution: resolution,
	}, nil
}

// backoff waits d.wait, returning early if the operator signals.
func (d *Detector) backoff(ctx context.Context) (time.Duration, string, error) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolved := make(chan struct{})
	exited := make(chan struct{})
	if d.signal != nil {
		go func() {
			defer close(exited)
			if d.signal.Wait(waitCtx) == nil {
				close(resolved)
				cancel()
			}
		}()
	} else {
		close(exited)
	}

	start := d.clock.Now()
	sleepErr := d.clock.Sleep(waitCtx, d.wait)
	waited := d.clock.Now().Sub(start)

	// The signal listener exits before the backoff returns.
	cancel()
	<-exited

	select {
	case <-resolved:
		return waited, ResolvedOperator, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return waited, "", err
	}
	if sleepErr != nil && !errors.Is(sleepErr, context.Canceled) {
		return waited, "", sleepErr
	}
	return waited, ResolvedTimeout, nil
}

func snapshot(ctx context.Context, p Page) (string, string, error) {
	rawHTML, err := p.HTML(ctx)
	if err != nil {
		return "", "", fmt.Errorf("challenge: read page html: %w", err)
	}
	text, err := p.VisibleText(ctx)
	if err != nil {
		return "", "", fmt.Errorf("challenge: read page text: %w", err)
	}
	return rawHTML, text, nil
}
