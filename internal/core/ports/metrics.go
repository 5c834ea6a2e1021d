package ports

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordValidation records the outcome of one response validation.
	// outcome is "success" or the rejection's error code.
	RecordValidation(outcome string)

	// RecordAssertionDecryption records an assertion decryption attempt.
	RecordAssertionDecryption(success bool)

	// RecordAttributeDecryption records an attribute decryption attempt.
	RecordAttributeDecryption(success bool)
}
