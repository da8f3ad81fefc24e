package input

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	q, err := Fixed("  villa in goa ").Query(context.Background())
	if err != nil || q != "villa in goa" {
		t.Errorf("Query() = %q, %v", q, err)
	}
	if _, err := Fixed("   ").Query(context.Background()); !errors.Is(err, ErrNoQuery) {
		t.Errorf("blank Fixed: err = %v, want ErrNoQuery", err)
	}
}

func TestConsole_QuerySkipsBlankLines(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("\n   \nindependent house bangalore\n"), &out)

	q, err := c.Query(context.Background())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if q != "independent house bangalore" {
		t.Errorf("Query() = %q", q)
	}
	if n := strings.Count(out.String(), "What do you want to search?"); n != 3 {
		t.Errorf("prompted %d times, want 3", n)
	}
}

func TestConsole_QueryEOF(t *testing.T) {
	c := NewConsole(strings.NewReader(""), io.Discard)
	if _, err := c.Query(context.Background()); !errors.Is(err, ErrNoQuery) {
		t.Errorf("err = %v, want ErrNoQuery", err)
	}
}

func TestConsole_WaitContinuesOnEnter(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewConsole(pr, io.Discard)

	done := make(chan error, 1)
	go func() { done <- c.Wait(context.Background()) }()

	// Give Wait time to print its prompt before Enter arrives.
	time.Sleep(20 * time.Millisecond)
	if _, err := io.WriteString(pw, "\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Enter")
	}
}

func TestConsole_WaitIgnoresEarlierLines(t *testing.T) {
	c := NewConsole(strings.NewReader("villa goa\n\n\n"), io.Discard)
	ctx := context.Background()
	if _, err := c.Query(ctx); err != nil {
		t.Fatalf("Query: %v", err)
	}
	// Both stray Enters are read before Wait starts.
	deadline := time.Now().Add(2 * time.Second)
	for len(c.lines) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(2 * time.Millisecond)

	wctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := c.Wait(wctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded: stale Enter ended the wait", err)
	}
}

func TestConsole_WaitHonorsContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewConsole(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestConsole_WaitClosedInput(t *testing.T) {
	c := NewConsole(strings.NewReader(""), io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
