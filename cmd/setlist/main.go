package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/setlist/api"
	"github.com/use-agent/setlist/api/middleware"
	"github.com/use-agent/setlist/config"
	"github.com/use-agent/setlist/extractor"
	"github.com/use-agent/setlist/render"
	"github.com/use-agent/setlist/scraper"
)

const usage = `usage:
  setlist                              serve the HTTP API
  setlist <url> [markdown|text|json]   extract one playlist and print it
`

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	args := os.Args[1:]
	oneShot := len(args) > 0

	// ── 2. Initialise structured logging ────────────────────────────
	// One-shot mode keeps stdout for the rendered playlist.
	logOut := io.Writer(os.Stdout)
	if oneShot {
		logOut = os.Stderr
	}
	initLogger(cfg.Log, logOut)

	// ── 3. Build the extraction pipeline ────────────────────────────
	ex, err := extractor.New(
		extractor.SelectorsFromConfig(cfg.Selectors),
		extractor.OptionsFromConfig(cfg.Scraper),
	)
	if err != nil {
		slog.Error("invalid extractor configuration", "error", err)
		os.Exit(1)
	}
	sc := scraper.NewScraper(cfg.Browser, cfg.Scraper, ex)

	if oneShot {
		os.Exit(runOnce(sc, args))
	}
	serve(sc, cfg)
}

// runOnce extracts a single playlist and prints it. The exit code is 1 when
// the result is the fallback playlist.
func runOnce(sc *scraper.Scraper, args []string) int {
	if args[0] == "-h" || args[0] == "--help" || len(args) > 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	format := render.FormatText
	if len(args) == 2 {
		f, err := render.ParseFormat(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		format = f
	}

	url := args[0]
	p := sc.Parse(context.Background(), url)
	if err := render.Write(os.Stdout, p, format, url); err != nil {
		slog.Error("failed to write result", "error", err)
		return 1
	}
	if p.IsFallback() {
		return 1
	}
	return 0
}

func serve(sc *scraper.Scraper, cfg *config.Config) {
	slog.Info("setlist starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"headless", cfg.Browser.Headless,
		"stealth", cfg.Browser.Stealth,
	)

	// ── 4. Setup router ─────────────────────────────────────────────
	guard := middleware.NewGuard()
	router := api.NewRouter(sc, guard, cfg, time.Now())

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// An in-flight extraction is bounded by its own timeouts; allow for
	// navigation plus readiness.
	grace := cfg.Scraper.NavigationTimeout + cfg.Scraper.ReadyTimeout + 5*time.Second
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	st := sc.Stats()
	slog.Info("setlist stopped", "totalRuns", st.TotalRuns, "activeRuns", st.ActiveRuns)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
