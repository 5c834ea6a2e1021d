package signature

import (
	"crypto/x509"
	"time"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
	"go.uber.org/zap"

	"github.com/philiph/samlgate/internal/core/domain"
	"github.com/philiph/samlgate/internal/core/ports"
)

// VerificationDetails contains metadata about a successful signature verification.
type VerificationDetails struct {
	Algorithm   string    // Signature algorithm (e.g., "RSA-SHA256")
	CertSubject string    // Certificate subject (e.g., "CN=IdP Signer")
	CertExpiry  time.Time // Certificate expiry time
}

// algorithmURIToName maps XML DSig algorithm URIs to human-readable names.
var algorithmURIToName = map[string]string{
	"http://www.w3.org/2000/09/xmldsig#rsa-sha1":          "RSA-SHA1",
	"http://www.w3.org/2001/04/xmldsig-more#rsa-sha256":   "RSA-SHA256",
	"http://www.w3.org/2001/04/xmldsig-more#rsa-sha384":   "RSA-SHA384",
	"http://www.w3.org/2001/04/xmldsig-more#rsa-sha512":   "RSA-SHA512",
	"http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256": "ECDSA-SHA256",
	"http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha384": "ECDSA-SHA384",
	"http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha512": "ECDSA-SHA512",
}

// algorithmName converts an XML DSig algorithm URI to a human-readable name.
// Returns the URI unchanged if not recognized.
func algorithmName(uri string) string {
	if name, ok := algorithmURIToName[uri]; ok {
		return name
	}
	return uri
}

// XMLDsigVerifier verifies XML signatures on SAML response and assertion
// elements using goxmldsig. It validates enveloped signatures against the
// IdP's trusted signing certificates.
type XMLDsigVerifier struct {
	certStore dsig.X509CertificateStore
	certs     []*x509.Certificate // kept for logging cert details on success
	clock     *dsig.Clock
	logger    *zap.Logger
}

// NewXMLDsigVerifier creates a verifier with a single trust anchor certificate.
func NewXMLDsigVerifier(cert *x509.Certificate) *XMLDsigVerifier {
	return NewXMLDsigVerifierWithCerts([]*x509.Certificate{cert})
}

// NewXMLDsigVerifierWithCerts creates a verifier with multiple trust anchor certificates.
// This supports IdP certificate rollover scenarios.
func NewXMLDsigVerifierWithCerts(certs []*x509.Certificate) *XMLDsigVerifier {
	return &XMLDsigVerifier{
		certStore: &dsig.MemoryX509CertificateStore{
			Roots: certs,
		},
		certs: certs,
	}
}

// WithClock sets the clock used for certificate validity checks during
// verification. Used by tests with a frozen clock.
func (v *XMLDsigVerifier) WithClock(clock *dsig.Clock) *XMLDsigVerifier {
	v.clock = clock
	return v
}

// WithLogger sets a logger for verification events. On successful
// verification, logs algorithm, cert subject, and cert expiry.
func (v *XMLDsigVerifier) WithLogger(logger *zap.Logger) *XMLDsigVerifier {
	v.logger = logger
	return v
}

// Verify validates the enveloped XML signature on el and returns the
// validated element. Returns an error if the signature is invalid, missing,
// or cannot be verified against the trust anchors.
func (v *XMLDsigVerifier) Verify(el *etree.Element) (*etree.Element, error) {
	if el == nil {
		return nil, &domain.SecurityError{
			Code:    domain.ErrCodeSignatureInvalid,
			Message: "no element to verify",
		}
	}

	// Extract algorithm before validation for logging
	algorithm := extractSignatureAlgorithm(el)

	ctx := dsig.NewDefaultValidationContext(v.certStore)
	if v.clock != nil {
		ctx.Clock = v.clock
	}

	validated, err := ctx.Validate(el)
	if err != nil {
		return nil, &domain.SecurityError{
			Code:    domain.ErrCodeSignatureInvalid,
			Message: "signature verification failed on " + el.Tag,
			Cause:   err,
		}
	}

	if v.logger != nil && len(v.certs) > 0 {
		cert := v.certs[0]
		v.logger.Debug("signature verified",
			zap.String("element", el.Tag),
			zap.String("algorithm", algorithmName(algorithm)),
			zap.String("cert_subject", cert.Subject.String()),
			zap.Time("cert_expiry", cert.NotAfter),
		)
	}

	// goxmldsig returns only the signed subtree; everything outside it is
	// discarded, which is what defeats signature wrapping.
	return validated, nil
}

// extractSignatureAlgorithm extracts the SignatureMethod Algorithm from an
// element carrying an enveloped signature. Returns "" if not found.
func extractSignatureAlgorithm(el *etree.Element) string {
	sig := findChild(el, domain.SignatureNamespace, "Signature")
	if sig == nil {
		return ""
	}
	signedInfo := findChild(sig, domain.SignatureNamespace, "SignedInfo")
	if signedInfo == nil {
		return ""
	}
	sigMethod := findChild(signedInfo, domain.SignatureNamespace, "SignatureMethod")
	if sigMethod == nil {
		return ""
	}
	return sigMethod.SelectAttrValue("Algorithm", "")
}

// findChild returns the first direct child with the given namespace URI and
// local tag, independent of the prefix the document happens to use.
func findChild(el *etree.Element, ns, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag && child.NamespaceURI() == ns {
			return child
		}
	}
	return nil
}

// Ensure implementation satisfies the port
var _ ports.SignatureVerifier = (*XMLDsigVerifier)(nil)
