// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/ratelimit"
)

// RateLimitMiddleware throttles requests per client IP.
func RateLimitMiddleware(store *ratelimit.Store, name string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)
			info := store.Allow(name + ":" + clientIP)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))

			if !info.Allowed {
				logger.Warn("rate limited", zap.String("group", name), zap.String("client_ip", clientIP))
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(info.RetryAfter.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
