package metrics

import (
	"github.com/jababox/jababox/pkg/storage"
)

// NewStorageMetrics creates a new Prometheus-backed storage.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called). A nil
// recorder passed to the coordinator results in zero overhead.
//
// Example usage:
//
//	metrics.InitRegistry()
//	coordinator.SetMetrics(metrics.NewStorageMetrics())
func NewStorageMetrics() storage.Metrics {
	if !IsEnabled() || newPrometheusStorageMetrics == nil {
		return nil
	}
	return newPrometheusStorageMetrics()
}

// newPrometheusStorageMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusStorageMetrics func() storage.Metrics

// RegisterStorageMetricsConstructor registers the Prometheus storage
// metrics constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterStorageMetricsConstructor(constructor func() storage.Metrics) {
	newPrometheusStorageMetrics = constructor
}
