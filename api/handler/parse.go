package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/setlist/models"
)

// PlaylistParser is the extraction core as seen by the HTTP layer.
type PlaylistParser interface {
	Parse(ctx context.Context, url string) *models.Playlist
}

// Parse returns a handler for POST /api/v1/playlist.
//
// The core never fails outright: a broken page comes back as the fallback
// playlist with success=false and HTTP 200, so the client can show the
// reason. Only malformed requests are rejected before parsing.
func Parse(p PlaylistParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ParseResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		playlist := p.Parse(c.Request.Context(), req.URL)
		if playlist == nil {
			slog.Error("parser returned no playlist", "url", req.URL)
			playlist = models.NewFallbackPlaylist(req.URL, nil)
		}

		c.JSON(http.StatusOK, models.ParseResponse{
			Success:  !playlist.IsFallback(),
			Playlist: playlist,
			Timing: models.TimingInfo{
				TotalMs: time.Since(start).Milliseconds(),
			},
		})
	}
}
