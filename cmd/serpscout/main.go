// Command serpscout runs one interactive search and writes the harvested
// listings to a JSON file.
//
// The search text comes from the command line or, when none is given,
// from a prompt. During a challenge backoff, pressing Enter resumes the
// run early once the challenge has been solved in the browser window.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/use-agent/serpscout/config"
	"github.com/use-agent/serpscout/input"
	"github.com/use-agent/serpscout/output"
	"github.com/use-agent/serpscout/scraper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── 1. Load configuration + logging ─────────────────────────────
	cfg := config.LoadCLI()
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 2. Search text ──────────────────────────────────────────────
	console := input.NewConsole(os.Stdin, os.Stdout)
	var provider input.Provider = console
	if len(os.Args) > 1 {
		provider = input.Fixed(strings.Join(os.Args[1:], " "))
	}
	query, err := provider.Query(ctx)
	if err != nil {
		slog.Error("no search text", "error", err)
		return 1
	}

	// ── 3. Launch browser ───────────────────────────────────────────
	sc, err := scraper.New(cfg, scraper.WithChallengeSignal(console))
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		return 1
	}
	defer sc.Close()

	// ── 4. Search ───────────────────────────────────────────────────
	h, err := sc.Search(ctx, "", query)
	if err != nil {
		slog.Error("search failed, nothing written", "error", err)
		return 1
	}

	// ── 5. Persist ──────────────────────────────────────────────────
	if err := output.WriteJSON(cfg.Output.Path, h.Result); err != nil {
		slog.Error("failed to write results", "path", cfg.Output.Path, "error", err)
		return 1
	}
	fmt.Printf("\nSaved %d items from %s to %s\n", h.Result.TotalItems, h.Result.SourcePage, cfg.Output.Path)
	return 0
}
