package samlgate

import (
	"github.com/philiph/samlgate/internal/adapters/driven/signature"
	"github.com/philiph/samlgate/internal/core/ports"
)

// Re-export SignatureVerifier interface from ports
type SignatureVerifier = ports.SignatureVerifier

// Re-export signature adapters
type (
	XMLDsigVerifier = signature.XMLDsigVerifier
	NoopVerifier    = signature.NoopVerifier
)

var (
	NewXMLDsigVerifier          = signature.NewXMLDsigVerifier
	NewXMLDsigVerifierWithCerts = signature.NewXMLDsigVerifierWithCerts
	NewNoopVerifier             = signature.NewNoopVerifier
	LoadSigningCertificates     = signature.LoadSigningCertificates
	LoadPrivateKey              = signature.LoadPrivateKey
)
