package extractor

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/setlist/config"
)

// Selectors are the CSS selectors the extractor reads the page with. Title,
// Artist, Album and Duration are relative to a row.
type Selectors struct {
	Ready    string
	Header   string
	Rows     string
	Title    string
	Artist   string
	Album    string
	Duration string
}

// DefaultSelectors matches the music web player's custom elements.
func DefaultSelectors() Selectors {
	return Selectors{
		Ready:    "music-image-row[primary-text], music-text-row[primary-text]",
		Header:   "music-detail-header[headline]",
		Rows:     "music-image-row, music-text-row",
		Title:    "div.col1 music-link a",
		Artist:   "div.col2 music-link:nth-of-type(1) a",
		Album:    "div.col2 music-link:nth-of-type(2) a",
		Duration: "div.col4 music-link span",
	}
}

// SelectorsFromConfig returns the defaults with any non-empty override
// from cfg applied.
func SelectorsFromConfig(cfg config.SelectorConfig) Selectors {
	s := DefaultSelectors()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&s.Ready, cfg.Ready)
	override(&s.Header, cfg.Header)
	override(&s.Rows, cfg.Rows)
	override(&s.Title, cfg.Title)
	override(&s.Artist, cfg.Artist)
	override(&s.Album, cfg.Album)
	override(&s.Duration, cfg.Duration)
	return s
}

// Validate parses every selector so that a bad override fails at startup
// instead of on every run.
func (s Selectors) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"ready", s.Ready},
		{"header", s.Header},
		{"rows", s.Rows},
		{"title", s.Title},
		{"artist", s.Artist},
		{"album", s.Album},
		{"duration", s.Duration},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("selector %s: empty", f.name)
		}
		if _, err := cascadia.ParseGroup(f.value); err != nil {
			return fmt.Errorf("selector %s %q: %w", f.name, f.value, err)
		}
	}
	return nil
}
