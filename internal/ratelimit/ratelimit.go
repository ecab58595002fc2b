// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	Rate          rate.Limit    // Sustained requests per second
	Burst         int           // Requests allowed back to back
	CleanupPeriod time.Duration // How often to clean up idle entries
	IdleTTL       time.Duration // Entries unused this long are dropped
}

// PerMinute allows n requests per minute per identifier.
func PerMinute(n int) *Config {
	return &Config{
		Rate:          rate.Limit(float64(n) / time.Minute.Seconds()),
		Burst:         n,
		CleanupPeriod: 5 * time.Minute,
		IdleTTL:       10 * time.Minute,
	}
}

// PerHour allows n requests per hour per identifier.
func PerHour(n int) *Config {
	return &Config{
		Rate:          rate.Limit(float64(n) / time.Hour.Seconds()),
		Burst:         n,
		CleanupPeriod: 30 * time.Minute,
		IdleTTL:       2 * time.Hour,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter keeps one token bucket per identifier in memory.
type MemoryRateLimiter struct {
	config  *Config
	entries map[string]*entry
	mu      sync.Mutex
	stopCh  chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:  config,
		entries: make(map[string]*entry),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	if config.CleanupPeriod > 0 {
		go limiter.cleanupLoop()
	}

	return limiter
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Allow consumes one token for identifier if one is available.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[identifier]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst)}
		rl.entries[identifier] = e
	}
	e.lastSeen = now

	info := &RateLimitInfo{Limit: rl.config.Burst}

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, info
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		info.RetryAfter = delay
		return false, info
	}

	info.Allowed = true
	if tokens := e.limiter.TokensAt(now); tokens > 0 {
		info.Remaining = int(tokens)
	}
	return true, info
}

// Len reports how many identifiers are tracked.
func (rl *MemoryRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

// cleanupLoop periodically removes idle records
func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, e := range rl.entries {
		if now.Sub(e.lastSeen) > rl.config.IdleTTL {
			delete(rl.entries, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
