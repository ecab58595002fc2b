// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/iyunix/go-llamachat/internal/ratelimit"
	"github.com/iyunix/go-llamachat/internal/services"
)

// RateLimitMiddleware keys requests by authenticated user when present,
// otherwise by client IP.
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter, name string, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := rateLimitKey(r)

			allowed, info := limiter.Allow(identifier)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

			if !allowed {
				logger.Warn("rate limited", "limiter", name, "key", identifier, "retry_after", info.RetryAfter)
				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(info.RetryAfter.Seconds()))))
				}
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded", "rate_limited")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	return "ip:" + ratelimit.GetClientIP(r)
}
