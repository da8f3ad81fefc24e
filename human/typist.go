// Package human emulates human text entry into form fields.
package human

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/serpscout/clock"
)

// DefaultDelay is the pause after each keystroke.
const DefaultDelay = 120 * time.Millisecond

// Field is a focused text input that accepts synthetic keystrokes.
type Field interface {
	// TypeRune dispatches one keystroke for r.
	TypeRune(ctx context.Context, r rune) error
	// Value reads the field's current value.
	Value(ctx context.Context) (string, error)
	// Clear selects the entire content and deletes it.
	Clear(ctx context.Context) error
}

// Report describes what happened while typing.
type Report struct {
	// Corrected is true when the corrective retype pass ran.
	Corrected bool
	// Matched is true when the final value equals the requested text.
	Matched bool
	// Final is the last value read back from the field.
	Final string
}

// Typist types text at a fixed cadence.
type Typist struct {
	delay time.Duration
	clock clock.Clock
}

// NewTypist returns a Typist pausing delay after every keystroke.
// A non-positive delay falls back to DefaultDelay; a nil clock uses the
// wall clock.
func NewTypist(delay time.Duration, c clock.Clock) *Typist {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if c == nil {
		c = clock.Real
	}
	return &Typist{delay: delay, clock: c}
}

// Type enters text into f one rune at a time, then reads the value back.
// On mismatch it clears the field and retypes the text once. A mismatch
// that survives the correction is reported, not returned as an error;
// only failures to drive the field are errors.
func (t *Typist) Type(ctx context.Context, f Field, text string) (Report, error) {
	if err := t.typeAll(ctx, f, text); err != nil {
		return Report{}, err
	}

	got, err := f.Value(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read back field value: %w", err)
	}
	if got == text {
		return Report{Matched: true, Final: got}, nil
	}

	slog.Debug("typed value mismatch, retyping once",
		"want_len", len(text),
		"got_len", len(got),
	)

	if err := f.Clear(ctx); err != nil {
		return Report{}, fmt.Errorf("clear field: %w", err)
	}
	if err := t.typeAll(ctx, f, text); err != nil {
		return Report{}, err
	}

	got, err = f.Value(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read back field value: %w", err)
	}
	if got != text {
		slog.Warn("typed value still differs after correction", "got", got)
	}
	return Report{Corrected: true, Matched: got == text, Final: got}, nil
}

func (t *Typist) typeAll(ctx context.Context, f Field, text string) error {
	for _, r := range text {
		if err := f.TypeRune(ctx, r); err != nil {
			return fmt.Errorf("type %q: %w", r, err)
		}
		if err := t.clock.Sleep(ctx, t.delay); err != nil {
			return err
		}
	}
	return nil
}
