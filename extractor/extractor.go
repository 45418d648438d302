package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/setlist/config"
	"github.com/use-agent/setlist/models"
)

// Options bounds each wait point of an extraction.
type Options struct {
	ReadyTimeout  time.Duration
	SettleDelay   time.Duration
	HeaderTimeout time.Duration
	FieldTimeout  time.Duration
}

// OptionsFromConfig copies the extraction timeouts out of the scraper config.
func OptionsFromConfig(cfg config.ScraperConfig) Options {
	return Options{
		ReadyTimeout:  cfg.ReadyTimeout,
		SettleDelay:   cfg.SettleDelay,
		HeaderTimeout: cfg.HeaderTimeout,
		FieldTimeout:  cfg.FieldTimeout,
	}
}

// Extractor reads a playlist out of a rendered page. It holds no per-run
// state and is safe for concurrent use.
type Extractor struct {
	sel  Selectors
	opts Options
}

// New validates the selectors and returns an Extractor.
func New(sel Selectors, opts Options) (*Extractor, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{sel: sel, opts: opts}, nil
}

// header holds the attributes read off the playlist header element.
type header struct {
	name        string
	coverURL    string
	description string
	attribution string
}

// Extract waits for the page to finish rendering and reads the playlist.
//
// Steps (numbered to match the inline comments):
//
//  1. Readiness  – wait for the first row carrying the loaded marker
//  2. Settle     – fixed pause so the remaining rows can render
//  3. Header     – name, cover, description, primary attribution
//  4. Rows       – every row in document order; none is a structural error
//  5. Per row    – title (required), artist, album, duration; each read is
//     bounded on its own and a miss never aborts the row or the run
//
// Any returned error is a *models.ScrapeError.
func (e *Extractor) Extract(ctx context.Context, doc Document) (*models.Playlist, error) {
	// ── 1. Readiness ──────────────────────────────────────────────────
	slog.Debug("extract stage", "stage", models.StageWaitingForReady)
	readyCtx, cancel := context.WithTimeout(ctx, e.opts.ReadyTimeout)
	err := doc.WaitElement(readyCtx, e.sel.Ready)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewScrapeError(
				models.ErrCodeReadyTimeout,
				models.StageWaitingForReady,
				fmt.Sprintf("timed out after %s waiting for loaded song rows (selector %q)", e.opts.ReadyTimeout, e.sel.Ready),
				err,
			)
		}
		return nil, models.NewScrapeError(
			models.ErrCodeInternal,
			models.StageWaitingForReady,
			"waiting for loaded song rows failed",
			err,
		)
	}

	// ── 2. Settle ─────────────────────────────────────────────────────
	if err := sleep(ctx, e.opts.SettleDelay); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeInternal,
			models.StageWaitingForReady,
			"interrupted while waiting for rows to settle",
			err,
		)
	}

	// ── 3. Header ─────────────────────────────────────────────────────
	slog.Debug("extract stage", "stage", models.StageReadingHeader)
	h, err := e.readHeader(ctx, doc)
	if err != nil {
		return nil, err
	}

	// ── 4. Rows ───────────────────────────────────────────────────────
	slog.Debug("extract stage", "stage", models.StageEnumeratingRows)
	rows, err := doc.Elements(ctx, e.sel.Rows)
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeStructure,
			models.StageEnumeratingRows,
			"failed to enumerate song rows",
			err,
		)
	}
	if len(rows) == 0 {
		return nil, models.NewScrapeError(
			models.ErrCodeStructure,
			models.StageEnumeratingRows,
			"found the playlist header but no song rows",
			nil,
		)
	}

	// ── 5. Per row ────────────────────────────────────────────────────
	tracks := make([]models.Track, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		slog.Debug("extract stage", "stage", models.StageReadingRow, "row", i)
		track, ok := e.readRow(ctx, row, h)
		if !ok {
			slog.Debug("row skipped: no title", "row", i)
			skipped++
			continue
		}
		tracks = append(tracks, track)
	}

	slog.Debug("extract stage", "stage", models.StageDone,
		"rows", len(rows),
		"tracks", len(tracks),
		"skipped", skipped,
	)

	return &models.Playlist{
		Name:        h.name,
		Description: h.description,
		CoverURL:    h.coverURL,
		Tracks:      tracks,
	}, nil
}

// readHeader locates the header element within HeaderTimeout and reads its
// attributes. Absent attributes read as empty strings.
func (e *Extractor) readHeader(ctx context.Context, doc Document) (header, error) {
	hctx, cancel := context.WithTimeout(ctx, e.opts.HeaderTimeout)
	defer cancel()

	el, err := doc.Element(hctx, e.sel.Header)
	if err != nil {
		return header{}, models.NewScrapeError(
			models.ErrCodeStructure,
			models.StageReadingHeader,
			fmt.Sprintf("playlist header %q not found", e.sel.Header),
			err,
		)
	}

	attrs := make(map[string]string, 5)
	for _, name := range []string{"headline", "image-src", "secondary-text", "tertiary-text", "primary-text"} {
		v, _, err := el.Attribute(hctx, name)
		if err != nil {
			return header{}, models.NewScrapeError(
				models.ErrCodeStructure,
				models.StageReadingHeader,
				fmt.Sprintf("failed to read header attribute %q", name),
				err,
			)
		}
		attrs[name] = v
	}

	return header{
		name:        attrs["headline"],
		coverURL:    attrs["image-src"],
		description: composeDescription(attrs["secondary-text"], attrs["tertiary-text"]),
		attribution: attrs["primary-text"],
	}, nil
}

// readRow reads one track. It reports false when the row has no title.
func (e *Extractor) readRow(ctx context.Context, row Node, h header) (models.Track, bool) {
	title, ok := e.readField(ctx, row, e.sel.Title)
	if !ok {
		return models.Track{}, false
	}

	artist, ok := e.readField(ctx, row, e.sel.Artist)
	if !ok {
		artist = h.attribution
	}
	album, ok := e.readField(ctx, row, e.sel.Album)
	if !ok {
		album = h.name
	}
	duration, _ := e.readField(ctx, row, e.sel.Duration)

	return models.Track{
		Title:    title,
		Artist:   artist,
		Album:    album,
		Duration: duration,
	}, true
}

// readField reads the text under selector within FieldTimeout. Errors and
// empty text both count as a miss.
func (e *Extractor) readField(ctx context.Context, row Node, selector string) (string, bool) {
	fctx, cancel := context.WithTimeout(ctx, e.opts.FieldTimeout)
	defer cancel()

	text, err := row.Text(fctx, selector)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// composeDescription appends the tertiary text in parentheses when present.
func composeDescription(secondary, tertiary string) string {
	if tertiary == "" {
		return secondary
	}
	return secondary + " (" + tertiary + ")"
}

// sleep pauses for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
