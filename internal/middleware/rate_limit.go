package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultLoginRateLimit is the default login attempts per minute
	DefaultLoginRateLimit = 30
	// DefaultLoginBurst is the default burst size
	DefaultLoginBurst = 5
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// LoginRateLimiter throttles login attempts per client address. It guards
// the one unauthenticated endpoint against credential stuffing.
type LoginRateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	rateLimit float64
	burstSize int
	stopCh    chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginRateLimiter creates a LoginRateLimiter
func NewLoginRateLimiter(attemptsPerMinute, burstSize int) *LoginRateLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = DefaultLoginRateLimit
	}
	if burstSize <= 0 {
		burstSize = DefaultLoginBurst
	}

	rl := &LoginRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		rateLimit: float64(attemptsPerMinute) / 60.0,
		burstSize: burstSize,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if an attempt from the given address is allowed
func (r *LoginRateLimiter) Allow(addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.limiters[addr]
	if !exists {
		entry = &limiterEntry{
			limiter:  rate.NewLimiter(rate.Limit(r.rateLimit), r.burstSize),
			lastSeen: time.Now(),
		}
		r.limiters[addr] = entry
	} else {
		entry.lastSeen = time.Now()
	}

	return entry.limiter.Allow()
}

// cleanup periodically removes stale limiters to prevent memory leaks
func (r *LoginRateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := time.Now()
			for addr, entry := range r.limiters {
				if now.Sub(entry.lastSeen) > LimiterTTL {
					delete(r.limiters, addr)
				}
			}
			r.mu.Unlock()
		case <-r.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (r *LoginRateLimiter) Stop() {
	close(r.stopCh)
}

// Middleware returns an Echo middleware that throttles requests by
// client address
func (r *LoginRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			addr := c.RealIP()
			if !r.Allow(addr) {
				log.Warn().Str("addr", addr).Msg("Login rate limit exceeded")
				return c.JSON(http.StatusTooManyRequests, problemDetails{
					Type:     errorTypeRateLimit,
					Title:    "Rate Limit Exceeded",
					Status:   http.StatusTooManyRequests,
					Detail:   "Too many login attempts. Please retry later.",
					Instance: c.Request().URL.Path,
				})
			}
			return next(c)
		}
	}
}
