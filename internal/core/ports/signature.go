package ports

import "github.com/beevik/etree"

// SignatureVerifier verifies the XML signature on one element of a SAML
// message against the configured trust anchors.
// This is a port interface - implementations are adapters.
//
// The interface returns the validated element (not just an error) following
// goxmldsig best practices to prevent signature wrapping attacks. The
// returned element should be used for all further processing.
type SignatureVerifier interface {
	// Verify validates the enveloped XML signature on el and returns the
	// validated element. Returns an error if the signature is invalid or
	// missing.
	Verify(el *etree.Element) (*etree.Element, error)
}
