package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/use-agent/setlist/config"
	"github.com/use-agent/setlist/extractor"
	"github.com/use-agent/setlist/models"
)

// session is one browser process with one isolated browsing context.
type session interface {
	// Navigate loads url and waits for the load event. The returned
	// Document stays usable after ctx ends.
	Navigate(ctx context.Context, url string) (extractor.Document, error)

	// Close releases the context and the browser process.
	Close()
}

// opener starts a fresh session.
type opener func(ctx context.Context) (session, error)

// Scraper runs single-page playlist extractions. Every call to Parse gets
// its own browser, so nothing leaks between runs.
// It is safe for concurrent use.
type Scraper struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	extractor  *extractor.Extractor
	open       opener
	activeRuns atomic.Int32
	totalRuns  atomic.Int64
}

// NewScraper returns a Scraper that launches Chromium through go-rod.
// No browser is started until Parse is called.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, ex *extractor.Extractor) *Scraper {
	s := &Scraper{
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		extractor:  ex,
	}
	s.open = s.openRod
	return s
}

// Stats is a snapshot of the scraper's run counters.
type Stats struct {
	ActiveRuns int
	TotalRuns  int64
}

// Stats returns the current run counters.
func (s *Scraper) Stats() Stats {
	return Stats{
		ActiveRuns: int(s.activeRuns.Load()),
		TotalRuns:  s.totalRuns.Load(),
	}
}

// Parse extracts the playlist at url. It always returns a value: any
// failure, including a panic, comes back as the fallback playlist carrying
// the error message.
//
// Cancellation of ctx is ignored; a run ends only through its own
// timeouts or completion. ctx values are kept for logging.
func (s *Scraper) Parse(ctx context.Context, url string) (result *models.Playlist) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	s.activeRuns.Add(1)
	s.totalRuns.Add(1)
	defer s.activeRuns.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			err := models.NewScrapeError(
				models.ErrCodeInternal,
				"",
				fmt.Sprintf("unexpected panic: %v", r),
				nil,
			)
			slog.Error("playlist extraction panicked",
				"url", url,
				"panic", r,
			)
			result = models.NewFallbackPlaylist(url, err)
		}
	}()

	playlist, err := s.run(ctx, url)
	if err != nil {
		slog.Warn("playlist extraction failed",
			"url", url,
			"error", err,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return models.NewFallbackPlaylist(url, err)
	}

	slog.Info("playlist extracted",
		"url", url,
		"name", playlist.Name,
		"tracks", len(playlist.Tracks),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return playlist
}

// run is one attempt: launch, navigate, extract. The deferred Close runs
// on every exit path, panics included.
func (s *Scraper) run(ctx context.Context, url string) (*models.Playlist, error) {
	// ── 1. Launch ─────────────────────────────────────────────────────
	slog.Debug("extract stage", "stage", models.StageLaunching, "url", url)
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	// ── 2. Navigate (bounded up to the load event) ────────────────────
	slog.Debug("extract stage", "stage", models.StageNavigating, "url", url)
	navCtx, cancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
	doc, err := sess.Navigate(navCtx, url)
	cancel()
	if err != nil {
		return nil, err
	}

	// ── 3. Extract ────────────────────────────────────────────────────
	return s.extractor.Extract(ctx, doc)
}
