package signature

import (
	"github.com/beevik/etree"

	"github.com/philiph/samlgate/internal/core/ports"
)

// NoopVerifier is a pass-through verifier for development/testing.
// It returns the input unchanged without verification. Never use it against
// a real identity provider.
type NoopVerifier struct{}

// NewNoopVerifier creates a new NoopVerifier.
func NewNoopVerifier() *NoopVerifier {
	return &NoopVerifier{}
}

// Verify returns the input unchanged without verification.
func (v *NoopVerifier) Verify(el *etree.Element) (*etree.Element, error) {
	return el, nil
}

// Ensure implementation satisfies the port
var _ ports.SignatureVerifier = (*NoopVerifier)(nil)
