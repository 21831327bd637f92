package ratelimit

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"golang.org/x/time/rate"
)

// Limiter enforces a per-key request rate. Keys are typically user ids; each
// gets its own token bucket, lazily created and dropped again after a period
// of inactivity.
type Limiter struct {
	enabled bool
	limit   rate.Limit
	burst   int
	logger  arbor.ILogger

	mu       sync.Mutex
	limiters map[string]*entry
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// staleAfter is how long an idle key keeps its bucket before cleanup
const staleAfter = 10 * time.Minute

// NewLimiter creates a per-key rate limiter from configuration
func NewLimiter(config *common.RateLimitConfig, logger arbor.ILogger) *Limiter {
	return &Limiter{
		enabled:  config.Enabled,
		limit:    rate.Limit(config.RequestsPerMinute / 60.0),
		burst:    config.Burst,
		logger:   logger,
		limiters: make(map[string]*entry),
	}
}

// Allow reports whether the key may proceed. Always true when disabled.
func (l *Limiter) Allow(key string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = time.Now()
	l.mu.Unlock()

	allowed := e.limiter.Allow()
	if !allowed {
		l.logger.Warn().Str("key", key).Msg("Request rate limited")
	}
	return allowed
}

// Cleanup drops buckets for keys idle longer than staleAfter
func (l *Limiter) Cleanup() {
	cutoff := time.Now().Add(-staleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}
