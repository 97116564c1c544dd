package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter budgets requests per client IP over a fixed window: each
// client gets maxRate requests per window, counted from its first request
// in the current window. Windows reset lazily on access; stale clients are
// swept in the background.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	maxRate int
	window  time.Duration
}

type clientWindow struct {
	count   int
	started time.Time
}

// NewRateLimiter allows maxRate requests per window per client.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		maxRate: maxRate,
		window:  window,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the client is within its budget and counts the
// request if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw := rl.clients[ip]
	if cw == nil || now.Sub(cw.started) >= rl.window {
		rl.clients[ip] = &clientWindow{count: 1, started: now}
		return true
	}
	if cw.count >= rl.maxRate {
		return false
	}
	cw.count++
	return true
}

// RetryAfter returns whole seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw := rl.clients[ip]
	if cw == nil {
		return 0
	}
	remaining := rl.window - time.Since(cw.started)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// sweep drops clients whose window expired long ago so the map does not
// grow with every IP ever seen.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.window)
		for ip, cw := range rl.clients {
			if cw.started.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects clients over budget with 429 and a Retry-After header.
// Simulation runs are CPU-bound, so the compute endpoints carry this.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(g *gin.Context) {
		ip := g.ClientIP()
		if !rl.Allow(ip) {
			g.Header("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			g.AbortWithStatusJSON(429, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "rate limit exceeded",
				},
			})
			return
		}
		g.Next()
	}
}
