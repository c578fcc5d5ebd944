// Package requestcontext carries request-scoped values (operator, request id,
// client metadata, request time) so services can read them without net/http.
// The HTTP middleware sets them; tests inject them directly.
package requestcontext

import (
	"context"
	"time"
)

type (
	operatorKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func stringValue[K any](ctx context.Context, key K) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// Operator is the authenticated token subject, or "" when auth is off.
func Operator(ctx context.Context) string {
	return stringValue(ctx, operatorKey{})
}

func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

func ClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey{})
}

func UserAgent(ctx context.Context) string {
	return stringValue(ctx, userAgentKey{})
}

// WithClientMetadata sets the client IP and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now is the time the request arrived. Outside a request (CLI, watcher
// callbacks) it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
