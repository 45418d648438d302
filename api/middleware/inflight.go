package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/setlist/models"
)

// Guard admits one extraction at a time. A request that arrives while
// another is running is refused, not queued.
type Guard struct {
	busy atomic.Bool
}

// NewGuard returns an idle Guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Busy reports whether an extraction is in flight.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}

// Handler returns the middleware. Wrap only the routes that start an
// extraction.
func (g *Guard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.busy.CompareAndSwap(false, true) {
			abort(c, http.StatusConflict, models.ErrCodeBusy,
				"an extraction is already running, try again when it finishes")
			return
		}
		defer g.busy.Store(false)

		c.Next()
	}
}
