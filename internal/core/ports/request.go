package ports

import "time"

// RequestStore tracks outstanding SAML AuthnRequest IDs so that only
// responses correlated to a request this SP actually issued are accepted.
// Implementations must be safe for concurrent use.
type RequestStore interface {
	// Store saves a request ID with its expiry time.
	Store(requestID string, expiry time.Time) error

	// Valid checks if a request ID exists and is not expired.
	// Returns true only once per ID (single-use).
	Valid(requestID string) bool

	// GetAll returns all non-expired request IDs. This is the allowed
	// in-response-to set handed to the response validator.
	GetAll() []string
}
