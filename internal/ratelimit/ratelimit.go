// Package ratelimit throttles the endpoints that reach paid or rate-limited
// upstreams: the Profile API proxy, exports and Twilio notifications.
package ratelimit

import (
	"context"
	"time"
)

// Class names one throttled endpoint family.
type Class struct {
	Name     string
	Requests int
	Window   time.Duration
}

// Enabled reports whether the class limits anything.
func (c Class) Enabled() bool {
	return c.Requests > 0 && c.Window > 0
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole seconds until a slot frees up, at least 1.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Round(time.Second) / time.Second)
	return max(1, secs)
}

// Store counts requests in a sliding window per key.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
