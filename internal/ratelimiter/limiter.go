package ratelimiter

import (
	"time"

	"golang.org/x/time/rate"
)

// TriggerLimiter is a token bucket guarding the manual run endpoint.
// It protects this service from repeated triggers; it does not model the
// quotas of the generation or publishing APIs.
type TriggerLimiter struct {
	limiter *rate.Limiter
}

// New allows perMinute triggers per minute with a burst of one, so two
// triggers are always at least 60s/perMinute apart. perMinute <= 0 disables
// the limit.
func New(perMinute int) *TriggerLimiter {
	if perMinute <= 0 {
		return &TriggerLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	every := time.Minute / time.Duration(perMinute)
	return &TriggerLimiter{limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// Allow reports whether a trigger may proceed now, consuming a token if so.
func (tl *TriggerLimiter) Allow() bool {
	return tl.limiter.Allow()
}
