package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/setlist/config"
	"github.com/use-agent/setlist/models"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = time.Hour
	limiterSweepEvery = 5 * time.Minute
)

// limiters holds one token bucket per caller.
type limiters struct {
	mu      sync.Mutex
	cfg     config.RateLimitConfig
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (l *limiters) allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.buckets[identity] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (l *limiters) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}

// RateLimit throttles callers with a token bucket each. A caller is its API
// key when Auth accepted one, its client IP otherwise. Buckets idle for an
// hour are dropped.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	l := &limiters{cfg: cfg, buckets: make(map[string]*bucket)}

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for now := range ticker.C {
			l.sweep(now.Add(-limiterIdleTTL))
		}
	}()

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key := c.GetString(identityKey); key != "" {
			identity = key
		}

		if !l.allow(identity) {
			abort(c, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"too many playlist requests, retry later")
			return
		}
		c.Next()
	}
}
