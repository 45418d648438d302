// Package render turns a playlist into something a person can read: JSON
// for tools, plain text for terminals, Markdown for chat clients.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/use-agent/setlist/models"
)

// Format selects an output representation.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a user-supplied name to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatJSON, FormatText, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, text or markdown)", s)
	}
}

// Write renders p to w in the given format.
func Write(w io.Writer, p *models.Playlist, format Format, sourceURL string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatMarkdown:
		md, err := Markdown(p, sourceURL)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = io.WriteString(w, md+"\n")
		return err
	default:
		_, err := io.WriteString(w, Text(p))
		return err
	}
}

// Text renders p as plain text, one numbered line per track.
func Text(p *models.Playlist) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte('\n')
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteByte('\n')
	}
	if p.IsFallback() {
		return b.String()
	}
	if p.CoverURL != "" {
		fmt.Fprintf(&b, "Cover: %s\n", p.CoverURL)
	}
	fmt.Fprintf(&b, "\n%d tracks\n", len(p.Tracks))
	for i, t := range p.Tracks {
		fmt.Fprintf(&b, "%3d. %s", i+1, t.Title)
		var details []string
		for _, d := range []string{t.Artist, t.Album, t.Duration} {
			if d != "" {
				details = append(details, d)
			}
		}
		if len(details) > 0 {
			b.WriteString(" - ")
			b.WriteString(strings.Join(details, " | "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
