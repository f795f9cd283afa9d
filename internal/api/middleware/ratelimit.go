package middleware

import (
	"encoding/json"
	"net/http"
)

// Limiter is satisfied by *ratelimiter.TriggerLimiter.
type Limiter interface {
	Allow() bool
}

// RateLimit rejects requests with 429 when the limiter has no token left.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many manual runs, try again later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
