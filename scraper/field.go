package scraper

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// inputField drives a focused text input through the page keyboard.
type inputField struct {
	page *rod.Page
	el   *rod.Element
}

// TypeRune sends printable ASCII as real key events. Anything else
// (rupee sign, Devanagari) has no key on the emulated US layout and is
// committed through IME text insertion instead.
func (f *inputField) TypeRune(ctx context.Context, r rune) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r >= 0x20 && r <= 0x7e {
		return f.page.Keyboard.Type(input.Key(r))
	}
	return proto.InputInsertText{Text: string(r)}.Call(f.page.Context(ctx))
}

func (f *inputField) Value(ctx context.Context) (string, error) {
	v, err := f.el.Context(ctx).Property("value")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (f *inputField) Clear(ctx context.Context) error {
	if err := f.el.Context(ctx).SelectAllText(); err != nil {
		return err
	}
	return f.page.Keyboard.Press(input.Backspace)
}
