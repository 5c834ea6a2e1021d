package metrics

import (
	"github.com/philiph/samlgate/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordValidation is a no-op.
func (n *NoopMetricsRecorder) RecordValidation(outcome string) {}

// RecordAssertionDecryption is a no-op.
func (n *NoopMetricsRecorder) RecordAssertionDecryption(success bool) {}

// RecordAttributeDecryption is a no-op.
func (n *NoopMetricsRecorder) RecordAttributeDecryption(success bool) {}

// Ensure NoopMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
