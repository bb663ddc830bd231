package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientState tracks one client's token bucket and activity
type clientState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client token bucket. Searches drive a real
// browser against a government portal, so the limit is deliberately low and
// applies per source IP.
type RateLimiter struct {
	config  config.RateLimitConfig
	clients map[string]*clientState
	mu      sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientState),
	}
	go rl.evictIdleClients()
	return rl
}

// Middleware returns the rate limiting middleware. Health probes are exempt
// so orchestration never gets throttled away from the service.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/health") {
			c.Next()
			return
		}

		limiter := rl.limiterFor(c.ClientIP())
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.config.RequestsPerMinute))

		if !limiter.Allow() {
			retryAfter := rl.tokenInterval()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Try again in %v", retryAfter),
				"retry_after": retryAfter.Seconds(),
				"timestamp":   time.Now(),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.Tokens())))
		c.Next()
	}
}

// limiterFor returns the client's bucket, creating it on first sight
func (rl *RateLimiter) limiterFor(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if state, exists := rl.clients[clientID]; exists {
		state.lastSeen = time.Now()
		return state.limiter
	}

	rps := rate.Limit(float64(rl.config.RequestsPerMinute) / 60.0)
	state := &clientState{
		limiter:  rate.NewLimiter(rps, rl.config.BurstSize),
		lastSeen: time.Now(),
	}
	rl.clients[clientID] = state
	return state.limiter
}

// tokenInterval is the time for one token to refill, padded by a second
func (rl *RateLimiter) tokenInterval() time.Duration {
	rps := float64(rl.config.RequestsPerMinute) / 60.0
	if rps <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second)/rps) + time.Second
}

// evictIdleClients drops buckets that have been idle for two cleanup cycles
func (rl *RateLimiter) evictIdleClients() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)

		rl.mu.Lock()
		for clientID, state := range rl.clients {
			if state.lastSeen.Before(cutoff) {
				delete(rl.clients, clientID)
			}
		}
		rl.mu.Unlock()
	}
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"active_clients":      len(rl.clients),
		"requests_per_minute": rl.config.RequestsPerMinute,
		"burst_size":          rl.config.BurstSize,
		"cleanup_interval":    rl.config.CleanupInterval,
	}
}
