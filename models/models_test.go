package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFallbackPlaylist(t *testing.T) {
	err := errors.New("navigation exploded")
	p := NewFallbackPlaylist("https://example.com/playlists/1", err)

	if p.Name != FallbackName {
		t.Errorf("Name = %q, want %q", p.Name, FallbackName)
	}
	if !strings.Contains(p.Description, "navigation exploded") {
		t.Errorf("Description %q does not carry the error message", p.Description)
	}
	if p.CoverURL != "https://example.com/playlists/1" {
		t.Errorf("CoverURL = %q, want the requested URL", p.CoverURL)
	}
	if p.Tracks == nil || len(p.Tracks) != 0 {
		t.Errorf("Tracks = %#v, want empty non-nil slice", p.Tracks)
	}
	if !p.IsFallback() {
		t.Error("IsFallback() = false for fallback playlist")
	}
}

func TestNewFallbackPlaylist_NilError(t *testing.T) {
	p := NewFallbackPlaylist("u", nil)
	if !strings.HasSuffix(p.Description, "unknown error") {
		t.Errorf("Description = %q", p.Description)
	}
}

func TestIsFallback_Success(t *testing.T) {
	p := &Playlist{Name: "My Mix", Tracks: []Track{{Title: "Song A"}}}
	if p.IsFallback() {
		t.Error("success playlist reported as fallback")
	}
	var nilPlaylist *Playlist
	if nilPlaylist.IsFallback() {
		t.Error("nil playlist reported as fallback")
	}
}

func TestIsFallback_PageNamedLikeSentinel(t *testing.T) {
	p := &Playlist{Name: FallbackName, Tracks: []Track{}}
	if p.IsFallback() {
		t.Error("extracted playlist named like the sentinel reported as fallback")
	}
}

func TestScrapeError(t *testing.T) {
	tests := []struct {
		name string
		err  *ScrapeError
		want string
	}{
		{
			name: "with stage and cause",
			err:  NewScrapeError(ErrCodeReadyTimeout, StageWaitingForReady, "no rows", context.DeadlineExceeded),
			want: "READY_TIMEOUT (waiting_for_ready): no rows: context deadline exceeded",
		},
		{
			name: "no stage no cause",
			err:  NewScrapeError(ErrCodeInternal, "", "boom", nil),
			want: "INTERNAL_ERROR: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScrapeError_Unwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w",
		NewScrapeError(ErrCodeNavigationTimeout, StageNavigating, "slow", context.DeadlineExceeded))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is did not reach the wrapped cause")
	}
	var se *ScrapeError
	if !errors.As(err, &se) || se.Code != ErrCodeNavigationTimeout {
		t.Fatalf("errors.As did not find a NAVIGATION_TIMEOUT ScrapeError: %v", err)
	}
	if d := se.ToDetail(); d.Code != ErrCodeNavigationTimeout || d.Message != "slow" {
		t.Errorf("ToDetail() = %+v", d)
	}
}
