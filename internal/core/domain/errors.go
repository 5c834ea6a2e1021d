package domain

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies why a SAML response was rejected.
// These codes are stable and can be used for programmatic error handling;
// callers typically log the code server-side and show the end user a
// generic authentication failure.
type ErrorCode string

const (
	ErrCodeMalformed           ErrorCode = "malformed"
	ErrCodeSignatureInvalid    ErrorCode = "signature_invalid"
	ErrCodeSignatureMissing    ErrorCode = "signature_missing"
	ErrCodeUnsolicited         ErrorCode = "unsolicited"
	ErrCodeStatusFailure       ErrorCode = "status_failure"
	ErrCodeIssuerMismatch      ErrorCode = "issuer_mismatch"
	ErrCodeDestinationMismatch ErrorCode = "destination_mismatch"
	ErrCodeMultipleAssertions  ErrorCode = "multiple_assertions"
	ErrCodeNoAssertions        ErrorCode = "no_assertions"
	ErrCodeDecryptionFailed    ErrorCode = "decryption_failed"
	ErrCodeAudienceMismatch    ErrorCode = "audience_mismatch"
	ErrCodeExpired             ErrorCode = "expired_or_not_yet_valid"
	ErrCodeSubjectInvalid      ErrorCode = "subject_invalid"
	ErrCodeEmptyResult         ErrorCode = "empty_result"
	ErrCodeServiceError        ErrorCode = "service_error"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// SecurityError is a structured validation rejection with a classified
// code, a human-readable message, and an optional cause.
type SecurityError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SecurityError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *SecurityError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code a transport layer should use
// when surfacing this rejection.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeMalformed:
		return http.StatusBadRequest
	case ErrCodeServiceError:
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}

// Rejection creates a SecurityError with the given code and formatted message.
func Rejection(code ErrorCode, format string, args ...any) *SecurityError {
	return &SecurityError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RejectionCause creates a SecurityError wrapping an underlying cause.
func RejectionCause(code ErrorCode, cause error, format string, args ...any) *SecurityError {
	return &SecurityError{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the ErrorCode from err, or ErrCodeServiceError if err is
// not a SecurityError.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*SecurityError); ok {
		return se.Code
	}
	return ErrCodeServiceError
}
