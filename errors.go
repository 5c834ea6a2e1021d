package samlgate

import (
	"github.com/philiph/samlgate/internal/core/domain"
)

// Re-export error types from the domain package so callers can classify
// rejections without importing internal packages.
type ErrorCode = domain.ErrorCode
type SecurityError = domain.SecurityError

// Re-export error code constants
const (
	ErrCodeMalformed           = domain.ErrCodeMalformed
	ErrCodeSignatureInvalid    = domain.ErrCodeSignatureInvalid
	ErrCodeSignatureMissing    = domain.ErrCodeSignatureMissing
	ErrCodeUnsolicited         = domain.ErrCodeUnsolicited
	ErrCodeStatusFailure       = domain.ErrCodeStatusFailure
	ErrCodeIssuerMismatch      = domain.ErrCodeIssuerMismatch
	ErrCodeDestinationMismatch = domain.ErrCodeDestinationMismatch
	ErrCodeMultipleAssertions  = domain.ErrCodeMultipleAssertions
	ErrCodeNoAssertions        = domain.ErrCodeNoAssertions
	ErrCodeDecryptionFailed    = domain.ErrCodeDecryptionFailed
	ErrCodeAudienceMismatch    = domain.ErrCodeAudienceMismatch
	ErrCodeExpired             = domain.ErrCodeExpired
	ErrCodeSubjectInvalid      = domain.ErrCodeSubjectInvalid
	ErrCodeEmptyResult         = domain.ErrCodeEmptyResult
	ErrCodeServiceError        = domain.ErrCodeServiceError
)

// CodeOf extracts the ErrorCode from a validation error.
var CodeOf = domain.CodeOf

// Re-export the validation result types.
type ValidatedAttributes = domain.ValidatedAttributes
type ValidatedAttribute = domain.ValidatedAttribute
type NameID = domain.NameID
