// Package prometheus implements the hooks of pkg/metrics on top of the
// registry created by metrics.InitRegistry.
package prometheus

import (
	"time"

	"github.com/marmos91/binlayout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// codecMetrics is the Prometheus implementation of metrics.CodecMetrics.
type codecMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	size       *prometheus.HistogramVec
}

// NewCodecMetrics creates Prometheus-backed codec metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which the
// codec treats as "no metrics".
func NewCodecMetrics() metrics.CodecMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &codecMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "binlayout_codec_operations_total",
				Help: "Total number of codec operations by operation, layout and status",
			},
			[]string{"op", "layout", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "binlayout_codec_duration_milliseconds",
				Help:    "Duration of codec operations in milliseconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
			},
			[]string{"op", "layout"},
		),
		size: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "binlayout_codec_bytes",
				Help:    "Size of buffers produced or consumed by codec operations",
				Buckets: prometheus.ExponentialBuckets(8, 4, 10), // 8B .. 2MiB
			},
			[]string{"op", "layout"},
		),
	}
}

func (m *codecMetrics) ObserveEncode(layout string, bytes int, d time.Duration, err error) {
	m.observe("encode", layout, bytes, d, err)
}

func (m *codecMetrics) ObserveDecode(layout string, bytes int, d time.Duration, err error) {
	m.observe("decode", layout, bytes, d, err)
}

func (m *codecMetrics) observe(op, layout string, bytes int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, layout, status(err)).Inc()
	m.duration.WithLabelValues(op, layout).Observe(float64(d.Microseconds()) / 1000.0)
	if err == nil {
		m.size.WithLabelValues(op, layout).Observe(float64(bytes))
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
