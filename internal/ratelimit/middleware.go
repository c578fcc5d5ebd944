package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"idres/pkg/platform/httputil"
	"idres/pkg/requestcontext"
)

type Metrics struct {
	Rejected  *prometheus.CounterVec
	StoreErrs *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idres_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter, by class",
		}, []string{"class"}),
		StoreErrs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idres_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed open because the store errored",
		}, []string{"class"}),
	}
}

type Limiter struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

func NewLimiter(store Store, logger *slog.Logger, metrics *Metrics) *Limiter {
	return &Limiter{store: store, logger: logger, metrics: metrics}
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware limits requests of class per operator, or per client IP when
// the request is unauthenticated. Store failures let the request through.
func (l *Limiter) Middleware(class Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !class.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			subject := requestcontext.Operator(ctx)
			if subject == "" {
				subject = "ip:" + requestcontext.ClientIP(ctx)
			}

			result, err := l.store.Allow(ctx, class.Name+":"+subject, class.Requests, class.Window)
			if err != nil {
				l.logger.ErrorContext(ctx, "rate limit check failed",
					"class", class.Name,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				if l.metrics != nil {
					l.metrics.StoreErrs.WithLabelValues(class.Name).Inc()
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				if l.metrics != nil {
					l.metrics.Rejected.WithLabelValues(class.Name).Inc()
				}
				retry := result.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httputil.WriteJSON(w, http.StatusTooManyRequests, RateLimitExceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many " + class.Name + " requests. Please try again later.",
					RetryAfter: retry,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
