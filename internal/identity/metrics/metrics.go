package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the identity configuration metrics.
type Metrics struct {
	Operations   *prometheus.CounterVec
	SaveFailures prometheus.Counter
	SaveDuration prometheus.Histogram
	Fields       prometheus.Gauge
	Deleted      prometheus.Gauge
	Repairs      *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idres_identity_operations_total",
			Help: "Identity configuration operations by name and outcome",
		}, []string{"operation", "outcome"}),
		SaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "idres_identity_save_failures_total",
			Help: "Persistence writes that failed; the in-memory change was kept",
		}),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idres_identity_save_duration_seconds",
			Help:    "Latency of persistence writes",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .5},
		}),
		Fields: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idres_identity_fields",
			Help: "Identifiers currently configured",
		}),
		Deleted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idres_identity_deleted_fields",
			Help: "Identifiers waiting in the restore ledger",
		}),
		Repairs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idres_identity_load_repairs_total",
			Help: "Persisted records repaired on load, by action",
		}, []string{"action"}),
	}
}

// ObserveOperation counts one operation. Nil-safe.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

// ObserveSave records a persistence write. Nil-safe.
func (m *Metrics) ObserveSave(start time.Time, err error) {
	if m == nil {
		return
	}
	m.SaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.SaveFailures.Inc()
	}
}

// SetSizes publishes the list sizes. Nil-safe.
func (m *Metrics) SetSizes(fields, deleted int) {
	if m == nil {
		return
	}
	m.Fields.Set(float64(fields))
	m.Deleted.Set(float64(deleted))
}

// ObserveRepairs counts records fixed up during load. Nil-safe.
func (m *Metrics) ObserveRepairs(replaced, dropped int) {
	if m == nil {
		return
	}
	m.Repairs.WithLabelValues("replaced").Add(float64(replaced))
	m.Repairs.WithLabelValues("dropped").Add(float64(dropped))
}
