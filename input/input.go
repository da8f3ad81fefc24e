// Package input supplies the search text and the operator's continue
// signal during a challenge backoff.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrNoQuery is returned when the input ends before a search text is read.
var ErrNoQuery = errors.New("input: no search text provided")

// Provider yields the search text for a run.
type Provider interface {
	Query(ctx context.Context) (string, error)
}

// Fixed is a Provider returning a constant search text.
type Fixed string

func (f Fixed) Query(context.Context) (string, error) {
	q := strings.TrimSpace(string(f))
	if q == "" {
		return "", ErrNoQuery
	}
	return q, nil
}

// Console prompts on out and reads lines from in. One goroutine owns the
// reader, so Query and Wait can share the same stream safely.
type Console struct {
	out   io.Writer
	lines chan line
}

// line is one input line stamped with the time it was read.
type line struct {
	text string
	at   time.Time
}

// NewConsole starts reading from in.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out, lines: make(chan line, 16)}
	go c.readLoop(in)
	return c
}

func (c *Console) readLoop(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		c.lines <- line{text: sc.Text(), at: time.Now()}
	}
	close(c.lines)
}

func (c *Console) next(ctx context.Context) (line, bool, error) {
	select {
	case l, ok := <-c.lines:
		return l, ok, nil
	case <-ctx.Done():
		return line{}, false, ctx.Err()
	}
}

// Query prompts until a non-blank line is entered.
func (c *Console) Query(ctx context.Context) (string, error) {
	for {
		fmt.Fprint(c.out, "What do you want to search? ")
		l, ok, err := c.next(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrNoQuery
		}
		if q := strings.TrimSpace(l.text); q != "" {
			return q, nil
		}
	}
}

// Wait tells the operator a challenge is showing and returns once they
// press Enter. Lines typed before the prompt are discarded. With the input
// closed it can only end through ctx.
func (c *Console) Wait(ctx context.Context) error {
	start := time.Now()
	fmt.Fprintln(c.out, "\nChallenge page detected. Solve it in the browser window, then press ENTER to continue.")
	for {
		l, ok, err := c.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			<-ctx.Done()
			return ctx.Err()
		}
		if !l.at.Before(start) {
			return nil
		}
	}
}
