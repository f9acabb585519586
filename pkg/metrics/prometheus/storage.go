// Package prometheus contains the Prometheus implementations of the
// metric recorder interfaces. Importing it (typically blank) registers the
// constructors with the metrics package.
package prometheus

import (
	"time"

	"github.com/jababox/jababox/pkg/metrics"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterStorageMetricsConstructor(newStorageMetrics)
}

// storageMetrics is the Prometheus implementation of storage.Metrics.
type storageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
}

// newStorageMetrics creates a Prometheus-backed storage.Metrics instance
// registered against the global registry.
func newStorageMetrics() storage.Metrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	return &storageMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jababox_storage_operations_total",
				Help: "Total number of storage operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "jababox_storage_operation_duration_milliseconds",
				Help: "Duration of storage operations in milliseconds",
				Buckets: []float64{
					1,    // 1ms - metadata-only operations
					10,   // 10ms
					50,   // 50ms - small payloads
					100,  // 100ms
					500,  // 500ms
					1000, // 1s - large payloads
					5000, // 5s
				},
			},
			[]string{"operation"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jababox_storage_bytes_total",
				Help: "Total payload bytes moved through the byte store",
			},
			[]string{"direction"},
		),
	}
}

func (m *storageMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

func (m *storageMetrics) RecordBytes(direction string, bytes int64) {
	m.bytesTotal.WithLabelValues(direction).Add(float64(bytes))
}
