//go:build unit

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, labelName, labelValue string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorderWithRegistry(reg)

	rec.RecordValidation("success")
	rec.RecordValidation("success")
	rec.RecordValidation("status_failure")
	rec.RecordAssertionDecryption(true)
	rec.RecordAssertionDecryption(false)
	rec.RecordAttributeDecryption(false)

	testCases := []struct {
		metric     string
		label      string
		labelValue string
		want       float64
	}{
		{"samlgate_validations_total", "outcome", "success", 2},
		{"samlgate_validations_total", "outcome", "status_failure", 1},
		{"samlgate_assertion_decryptions_total", "result", "success", 1},
		{"samlgate_assertion_decryptions_total", "result", "failure", 1},
		{"samlgate_attribute_decryptions_total", "result", "failure", 1},
	}
	for _, tc := range testCases {
		if got := counterValue(t, reg, tc.metric, tc.label, tc.labelValue); got != tc.want {
			t.Errorf("%s{%s=%q} = %v, want %v", tc.metric, tc.label, tc.labelValue, got, tc.want)
		}
	}
}

func TestPrometheusMetricsRecorder_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetricsRecorderWithRegistry(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected MustRegister to panic on duplicate registration")
		}
	}()
	NewPrometheusMetricsRecorderWithRegistry(reg)
}

func TestNoopMetricsRecorder(t *testing.T) {
	rec := NewNoopMetricsRecorder()
	rec.RecordValidation("success")
	rec.RecordAssertionDecryption(true)
	rec.RecordAttributeDecryption(false)
}
