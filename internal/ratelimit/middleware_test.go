package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idres/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (Result, error) {
	return Result{}, errors.New("redis down")
}

var notify = Class{Name: "notify", Requests: 2, Window: time.Minute}

func newHandler(store Store, m *Metrics, class Class) http.Handler {
	limiter := NewLimiter(store, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	return limiter.Middleware(class)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func requestAs(t *testing.T, operator, ip string) *http.Request {
	req := testutil.WithClientIP(testutil.NewRequest(t, http.MethodPost, "/api/notify/call"), ip)
	if operator != "" {
		req = testutil.WithOperator(req, operator)
	}
	return req
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	m := NewMetricsWithRegisterer(prometheus.NewRegistry())
	h := newHandler(NewInMemory(), m, notify)

	for i := range 2 {
		rr := testutil.DoRequest(h, requestAs(t, "ops@example.com", "10.0.0.1"))
		require.Equal(t, http.StatusNoContent, rr.Code, "request %d", i)
	}
	rr := testutil.DoRequest(h, requestAs(t, "ops@example.com", "10.0.0.1"))

	testutil.AssertStatus(t, rr, http.StatusTooManyRequests)
	testutil.AssertJSONContains(t, rr, "error", "rate_limit_exceeded")
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Rejected.WithLabelValues("notify")))
}

func TestMiddleware_KeysByOperatorThenIP(t *testing.T) {
	h := newHandler(NewInMemory(), nil, Class{Name: "notify", Requests: 1, Window: time.Minute})

	assert.Equal(t, http.StatusNoContent, testutil.DoRequest(h, requestAs(t, "a", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusNoContent, testutil.DoRequest(h, requestAs(t, "b", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusNoContent, testutil.DoRequest(h, requestAs(t, "", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusNoContent, testutil.DoRequest(h, requestAs(t, "", "10.0.0.2")).Code)
	assert.Equal(t, http.StatusTooManyRequests, testutil.DoRequest(h, requestAs(t, "", "10.0.0.1")).Code)
}

func TestMiddleware_FailsOpen(t *testing.T) {
	m := NewMetricsWithRegisterer(prometheus.NewRegistry())
	h := newHandler(failingStore{}, m, notify)

	rr := testutil.DoRequest(h, requestAs(t, "a", "10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.StoreErrs.WithLabelValues("notify")))
}

func TestMiddleware_DisabledClassPassesThrough(t *testing.T) {
	h := newHandler(failingStore{}, nil, Class{Name: "notify"})
	rr := testutil.DoRequest(h, requestAs(t, "a", "10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}
