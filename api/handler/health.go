package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/setlist/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// BusyReporter tells whether an extraction is running.
type BusyReporter interface {
	Busy() bool
}

// Health returns a handler for GET /api/v1/health.
func Health(b BusyReporter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "idle"
		if b.Busy() {
			status = "busy"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
