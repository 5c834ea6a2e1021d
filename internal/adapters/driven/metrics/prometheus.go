package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/philiph/samlgate/internal/core/ports"
)

// PrometheusMetricsRecorder records validation metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	validationsTotal          *prometheus.CounterVec
	assertionDecryptionsTotal *prometheus.CounterVec
	attributeDecryptionsTotal *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates a new Prometheus metrics recorder
// using the default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a new Prometheus metrics
// recorder with a custom registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	validationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "samlgate_validations_total",
		Help: "Total SAML response validations by outcome",
	}, []string{"outcome"})

	assertionDecryptionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "samlgate_assertion_decryptions_total",
		Help: "Total assertion decryption attempts",
	}, []string{"result"})

	attributeDecryptionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "samlgate_attribute_decryptions_total",
		Help: "Total attribute decryption attempts",
	}, []string{"result"})

	reg.MustRegister(
		validationsTotal,
		assertionDecryptionsTotal,
		attributeDecryptionsTotal,
	)

	return &PrometheusMetricsRecorder{
		validationsTotal:          validationsTotal,
		assertionDecryptionsTotal: assertionDecryptionsTotal,
		attributeDecryptionsTotal: attributeDecryptionsTotal,
	}
}

// RecordValidation records the outcome of one response validation.
func (p *PrometheusMetricsRecorder) RecordValidation(outcome string) {
	p.validationsTotal.WithLabelValues(outcome).Inc()
}

// RecordAssertionDecryption records an assertion decryption attempt.
func (p *PrometheusMetricsRecorder) RecordAssertionDecryption(success bool) {
	p.assertionDecryptionsTotal.WithLabelValues(result(success)).Inc()
}

// RecordAttributeDecryption records an attribute decryption attempt.
func (p *PrometheusMetricsRecorder) RecordAttributeDecryption(success bool) {
	p.attributeDecryptionsTotal.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Ensure PrometheusMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
