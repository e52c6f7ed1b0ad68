package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/JonMunkholm/listimport/internal/ratelimit"
)

// KeyFunc picks the rate limit bucket for a request.
type KeyFunc func(*http.Request) string

// ByIP buckets requests by client address.
func ByIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// ByUser buckets by the caller set by RequireUser, falling back to the
// client address.
func ByUser(r *http.Request) string {
	if id, ok := UserID(r.Context()); ok {
		return "user:" + id.String()
	}
	return ByIP(r)
}

// RateLimit rejects requests once their bucket is empty. A nil limiter
// disables the check.
func RateLimit(limiter *ratelimit.KeyedRateLimiter, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		retryAfter := strconv.Itoa(int(max(limiter.RetryAfter(), time.Second) / time.Second))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !limiter.Allow(k) {
				logging.FromContext(r.Context()).Warn("rate limit exceeded", "key", k, "path", r.URL.Path)
				w.Header().Set("Retry-After", retryAfter)
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded", "RATE001")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
