// Package ratelimit implements a per-client token bucket limiter for lead submissions.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxKeys = 10000
	idleAfter      = 10 * time.Minute
)

// Config holds rate limiter configuration.
type Config struct {
	DefaultRPS   float64
	DefaultBurst int
	// MaxKeys bounds the number of tracked clients. At capacity idle keys are
	// dropped first, then the least recently seen one.
	MaxKeys int
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages per-key rate limits, keyed by client IP.
type Limiter struct {
	mu           sync.Mutex
	limiters     map[string]*entry
	defaultRate  rate.Limit
	defaultBurst int
	maxKeys      int
	now          func() time.Time
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.DefaultRPS)
	if cfg.DefaultRPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.DefaultBurst
	if burst <= 0 {
		burst = 1
	}
	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	return &Limiter{
		limiters:     make(map[string]*entry),
		defaultRate:  r,
		defaultBurst: burst,
		maxKeys:      maxKeys,
		now:          time.Now,
	}
}

// Allow reports whether one more request from key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	e, exists := l.limiters[key]
	if !exists {
		if len(l.limiters) >= l.maxKeys {
			l.evictIdle(now)
		}
		if len(l.limiters) >= l.maxKeys {
			l.evictOldest()
		}
		e = &entry{limiter: rate.NewLimiter(l.defaultRate, l.defaultBurst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// evictIdle drops keys not seen recently. Callers hold mu.
func (l *Limiter) evictIdle(now time.Time) {
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > idleAfter {
			delete(l.limiters, key)
		}
	}
}

// evictOldest drops the least recently seen key. Callers hold mu.
func (l *Limiter) evictOldest() {
	var (
		oldestKey  string
		oldestSeen time.Time
		found      bool
	)
	for key, e := range l.limiters {
		if !found || e.lastSeen.Before(oldestSeen) {
			oldestKey, oldestSeen, found = key, e.lastSeen, true
		}
	}
	if found {
		delete(l.limiters, oldestKey)
	}
}

// Middleware rejects requests over the limit by serving reject instead of next.
// key extracts the client identity from a request.
func (l *Limiter) Middleware(key func(*http.Request) string, reject http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(key(r)) {
				reject.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
