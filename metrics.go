package samlgate

import (
	"github.com/philiph/samlgate/internal/adapters/driven/metrics"
	"github.com/philiph/samlgate/internal/core/ports"
)

// Re-export MetricsRecorder interface from ports
type MetricsRecorder = ports.MetricsRecorder

// Re-export metrics adapters
type (
	PrometheusMetricsRecorder = metrics.PrometheusMetricsRecorder
	NoopMetricsRecorder       = metrics.NoopMetricsRecorder
)

var (
	NewPrometheusMetricsRecorder             = metrics.NewPrometheusMetricsRecorder
	NewPrometheusMetricsRecorderWithRegistry = metrics.NewPrometheusMetricsRecorderWithRegistry
	NewNoopMetricsRecorder                   = metrics.NewNoopMetricsRecorder
)
