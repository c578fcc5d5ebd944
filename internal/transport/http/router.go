// Package httptransport assembles the chi router: shared middleware, health
// and metrics endpoints, and the /api routes of every module.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"idres/internal/platform/metrics"
	"idres/internal/platform/middleware"
	"idres/pkg/platform/httputil"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Check tests one dependency for /readyz.
type Check func(ctx context.Context) error

type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// MetricsHandler defaults to the Prometheus default registry.
	MetricsHandler http.Handler
	// Auth guards /api when set.
	Auth   middleware.JWTValidator
	Checks map[string]Check
	APIs   []Registrar
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Instrument)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	r.Get("/readyz", readiness(d.Checks))

	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = metrics.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(api chi.Router) {
		if d.Auth != nil {
			api.Use(middleware.RequireAuth(d.Auth, logger))
		}
		for _, reg := range d.APIs {
			reg.Register(api)
		}
	})
	return r
}

// Limited mounts reg behind mw.
func Limited(reg Registrar, mw func(http.Handler) http.Handler) Registrar {
	return limited{reg: reg, mw: mw}
}

type limited struct {
	reg Registrar
	mw  func(http.Handler) http.Handler
}

func (l limited) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(l.mw)
		l.reg.Register(r)
	})
}

func readiness(checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
