// ratelimit.go implements per-client-IP rate limiting using a token bucket.
//
// How token bucket works:
// - Each client IP gets a "bucket" holding up to `burst` tokens
// - Each request consumes 1 token
// - One token is added back every `every` interval
// - If the bucket is empty, the request is rejected with 429 Too Many Requests
//
// The bucket itself is golang.org/x/time/rate's Limiter; this file only keeps
// one limiter per IP and forgets idle ones.
package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// idleLimiterTTL is how long an IP's limiter survives without traffic.
const idleLimiterTTL = time.Hour

// RateLimiter tracks request rates per client IP.
type RateLimiter struct {
	every time.Duration
	burst int

	// Go Pattern: sync.Mutex guards the map. Each rate.Limiter is itself
	// safe for concurrent use, so the lock is only held for the lookup.
	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stop chan struct{}
	once sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter that allows one request per `every` per IP,
// with bursts of up to `burst` requests. Call Stop to end its cleanup goroutine.
func NewRateLimiter(every time.Duration, burst int) *RateLimiter {
	if every <= 0 {
		every = 600 * time.Millisecond // ~100/min
	}
	if burst <= 0 {
		burst = 20
	}
	rl := &RateLimiter{
		every:    every,
		burst:    burst,
		limiters: make(map[string]*ipLimiter),
		stop:     make(chan struct{}),
	}

	// Start background cleanup goroutine
	go rl.cleanup(10 * time.Minute)

	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// RateLimit returns Gin middleware that enforces the per-IP limit.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.get(c.ClientIP())

		if !limiter.Allow() {
			// Add headers even for rejected requests so clients know their limits
			c.Header("X-RateLimit-Limit", fmt.Sprint(rl.burst))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%.0f", rl.every.Seconds()+0.5))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprint(rl.burst))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%.0f", max(limiter.Tokens(), 0)))

		c.Next()
	}
}

// get returns the limiter for ip, creating it on first use.
func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Every(rl.every), rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = time.Now()
	return l.limiter
}

// cleanup periodically removes idle limiters to prevent memory leaks.
func (rl *RateLimiter) cleanup(interval time.Duration) {
	// Go Pattern: time.Ticker sends values at regular intervals.
	// Always defer ticker.Stop() to release resources.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, l := range rl.limiters {
		if now.Sub(l.lastSeen) > idleLimiterTTL {
			delete(rl.limiters, ip)
		}
	}
}
