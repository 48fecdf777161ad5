package prometheus

import (
	"time"

	"github.com/marmos91/binlayout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics is the Prometheus implementation of metrics.StoreMetrics.
type storeMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	layouts    *prometheus.GaugeVec
}

// NewStoreMetrics creates Prometheus-backed registry store metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() metrics.StoreMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "binlayout_registry_operations_total",
				Help: "Total number of layout registry operations by store, operation and status",
			},
			[]string{"store", "op", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "binlayout_registry_duration_milliseconds",
				Help:    "Duration of layout registry operations in milliseconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
			},
			[]string{"store", "op"},
		),
		layouts: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "binlayout_registry_layouts",
				Help: "Number of layouts held by the registry store",
			},
			[]string{"store"},
		),
	}
}

func (m *storeMetrics) ObserveStoreOp(store, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(store, op, status(err)).Inc()
	m.duration.WithLabelValues(store, op).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *storeMetrics) RecordLayoutCount(store string, n int) {
	if m == nil {
		return
	}
	m.layouts.WithLabelValues(store).Set(float64(n))
}
