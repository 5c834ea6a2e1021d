// Package idp fabricates SAML responses the way an identity provider would,
// for validator tests. Responses are built directly as XML documents so
// tests can produce every shape the validator must handle, valid or not.
package idp

import (
	"crypto/rsa"
	"crypto/x509"
	"testing"
	"time"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
)

const (
	protocolNS  = "urn:oasis:names:tc:SAML:2.0:protocol"
	assertionNS = "urn:oasis:names:tc:SAML:2.0:assertion"
	xmlencNS    = "http://www.w3.org/2001/04/xmlenc#"

	// StatusSuccess is the protocol success status code.
	StatusSuccess = "urn:oasis:names:tc:SAML:2.0:status:Success"
	// MethodBearer is the bearer subject confirmation method.
	MethodBearer = "urn:oasis:names:tc:SAML:2.0:cm:bearer"
)

// TestIdP holds the signing identity of a fabricated identity provider.
type TestIdP struct {
	t        testing.TB
	EntityID string

	key      *rsa.PrivateKey
	cert     *x509.Certificate
	keyStore dsig.X509KeyStore
}

// New creates a test IdP with a freshly generated signing key pair.
func New(t testing.TB, entityID string) *TestIdP {
	t.Helper()

	keyStore := dsig.RandomKeyStoreForTest()
	key, certDER, err := keyStore.GetKeyPair()
	if err != nil {
		t.Fatalf("failed to generate IdP key pair: %v", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("failed to parse IdP certificate: %v", err)
	}

	return &TestIdP{
		t:        t,
		EntityID: entityID,
		key:      key,
		cert:     cert,
		keyStore: keyStore,
	}
}

// Certificate returns the IdP's signing certificate, the validator's trust
// anchor in tests.
func (i *TestIdP) Certificate() *x509.Certificate {
	return i.cert
}

// Attribute is one attribute to embed in a fabricated assertion.
type Attribute struct {
	Name   string
	Values []string
}

// Confirmation is one SubjectConfirmation to embed.
type Confirmation struct {
	Method       string // defaults to MethodBearer
	Recipient    string
	NotOnOrAfter time.Time // zero omits the attribute
	InResponseTo string
	OmitData     bool // emit the confirmation without SubjectConfirmationData
}

// ResponseSpec describes the response to fabricate. Zero values omit the
// corresponding attribute or element.
type ResponseSpec struct {
	Destination  string
	InResponseTo string
	StatusCode   string // defaults to StatusSuccess
	Issuer       string // defaults to the IdP entity ID
	OmitIssuer   bool

	SignResponse  bool
	SignAssertion bool

	// OmitAssertion emits a response with no assertion at all;
	// ExtraAssertion adds a second copy for cardinality tests.
	OmitAssertion  bool
	ExtraAssertion bool
	// EncryptedAssertionStub replaces the plaintext assertion with an
	// EncryptedAssertion/EncryptedData placeholder. Tests pair it with a
	// fake decryptor; real ciphertext is not needed to exercise the
	// validator's dispatch and failure policy.
	EncryptedAssertionStub bool

	Assertion AssertionSpec
}

// AssertionSpec describes the assertion to fabricate.
type AssertionSpec struct {
	Issuer     string // defaults to the response issuer
	OmitIssuer bool

	OmitSubject   bool
	NameID        string
	Confirmations []Confirmation

	OmitConditions       bool
	NotBefore            time.Time
	NotOnOrAfter         time.Time
	AudienceRestrictions [][]string // each inner slice is one restriction's audience URIs

	SessionIndex string
	Attributes   []Attribute
	// EncryptedAttributeStubs adds this many EncryptedAttribute placeholders
	// to the attribute statement.
	EncryptedAttributeStubs int
}

// BuildResponse fabricates a complete response document per spec.
func (i *TestIdP) BuildResponse(spec ResponseSpec) []byte {
	i.t.Helper()

	issuer := spec.Issuer
	if issuer == "" {
		issuer = i.EntityID
	}
	status := spec.StatusCode
	if status == "" {
		status = StatusSuccess
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("samlp:Response")
	root.CreateAttr("xmlns:samlp", protocolNS)
	root.CreateAttr("xmlns:saml", assertionNS)
	root.CreateAttr("ID", "id-response-test")
	root.CreateAttr("Version", "2.0")
	root.CreateAttr("IssueInstant", time.Now().UTC().Format(time.RFC3339))
	if spec.Destination != "" {
		root.CreateAttr("Destination", spec.Destination)
	}
	if spec.InResponseTo != "" {
		root.CreateAttr("InResponseTo", spec.InResponseTo)
	}
	if !spec.OmitIssuer {
		issuerEl := root.CreateElement("saml:Issuer")
		issuerEl.SetText(issuer)
	}
	statusEl := root.CreateElement("samlp:Status")
	codeEl := statusEl.CreateElement("samlp:StatusCode")
	codeEl.CreateAttr("Value", status)

	switch {
	case spec.OmitAssertion:
		// nothing to add
	case spec.EncryptedAssertionStub:
		encEl := root.CreateElement("saml:EncryptedAssertion")
		dataEl := encEl.CreateElement("xenc:EncryptedData")
		dataEl.CreateAttr("xmlns:xenc", xmlencNS)
		dataEl.CreateAttr("Type", xmlencNS+"Element")
	default:
		root.AddChild(i.BuildAssertionElement(spec, "id-assertion-test"))
		if spec.ExtraAssertion {
			root.AddChild(i.BuildAssertionElement(spec, "id-assertion-extra"))
		}
	}

	if spec.SignResponse {
		ctx := dsig.NewDefaultSigningContext(i.keyStore)
		ctx.Canonicalizer = dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
		signed, err := ctx.SignEnveloped(root)
		if err != nil {
			i.t.Fatalf("failed to sign response: %v", err)
		}
		doc.SetRoot(signed)
	}

	data, err := doc.WriteToBytes()
	if err != nil {
		i.t.Fatalf("failed to serialize response: %v", err)
	}
	return data
}

// BuildAssertionElement fabricates a standalone assertion element, signed
// when the spec asks for it. The element declares its own namespaces so it
// can be re-rooted or embedded freely.
func (i *TestIdP) BuildAssertionElement(spec ResponseSpec, id string) *etree.Element {
	i.t.Helper()

	issuer := spec.Assertion.Issuer
	if issuer == "" {
		issuer = spec.Issuer
	}
	if issuer == "" {
		issuer = i.EntityID
	}

	a := etree.NewElement("saml:Assertion")
	a.CreateAttr("xmlns:saml", assertionNS)
	a.CreateAttr("ID", id)
	a.CreateAttr("Version", "2.0")
	a.CreateAttr("IssueInstant", time.Now().UTC().Format(time.RFC3339))
	if !spec.Assertion.OmitIssuer {
		issuerEl := a.CreateElement("saml:Issuer")
		issuerEl.SetText(issuer)
	}

	if !spec.Assertion.OmitSubject {
		subjectEl := a.CreateElement("saml:Subject")
		if spec.Assertion.NameID != "" {
			nameEl := subjectEl.CreateElement("saml:NameID")
			nameEl.CreateAttr("Format", "urn:oasis:names:tc:SAML:2.0:nameid-format:persistent")
			nameEl.SetText(spec.Assertion.NameID)
		}
		for _, c := range spec.Assertion.Confirmations {
			scEl := subjectEl.CreateElement("saml:SubjectConfirmation")
			method := c.Method
			if method == "" {
				method = MethodBearer
			}
			scEl.CreateAttr("Method", method)
			if !c.OmitData {
				dataEl := scEl.CreateElement("saml:SubjectConfirmationData")
				if c.Recipient != "" {
					dataEl.CreateAttr("Recipient", c.Recipient)
				}
				if !c.NotOnOrAfter.IsZero() {
					dataEl.CreateAttr("NotOnOrAfter", c.NotOnOrAfter.UTC().Format(time.RFC3339))
				}
				if c.InResponseTo != "" {
					dataEl.CreateAttr("InResponseTo", c.InResponseTo)
				}
			}
		}
	}

	if !spec.Assertion.OmitConditions {
		condEl := a.CreateElement("saml:Conditions")
		if !spec.Assertion.NotBefore.IsZero() {
			condEl.CreateAttr("NotBefore", spec.Assertion.NotBefore.UTC().Format(time.RFC3339))
		}
		if !spec.Assertion.NotOnOrAfter.IsZero() {
			condEl.CreateAttr("NotOnOrAfter", spec.Assertion.NotOnOrAfter.UTC().Format(time.RFC3339))
		}
		for _, audiences := range spec.Assertion.AudienceRestrictions {
			restrictionEl := condEl.CreateElement("saml:AudienceRestriction")
			for _, audience := range audiences {
				audienceEl := restrictionEl.CreateElement("saml:Audience")
				audienceEl.SetText(audience)
			}
		}
	}

	if spec.Assertion.SessionIndex != "" {
		authnEl := a.CreateElement("saml:AuthnStatement")
		authnEl.CreateAttr("AuthnInstant", time.Now().UTC().Format(time.RFC3339))
		authnEl.CreateAttr("SessionIndex", spec.Assertion.SessionIndex)
	}

	if len(spec.Assertion.Attributes) > 0 || spec.Assertion.EncryptedAttributeStubs > 0 {
		stmtEl := a.CreateElement("saml:AttributeStatement")
		for _, attr := range spec.Assertion.Attributes {
			attrEl := stmtEl.CreateElement("saml:Attribute")
			attrEl.CreateAttr("Name", attr.Name)
			for _, value := range attr.Values {
				valueEl := attrEl.CreateElement("saml:AttributeValue")
				valueEl.SetText(value)
			}
		}
		for n := 0; n < spec.Assertion.EncryptedAttributeStubs; n++ {
			encEl := stmtEl.CreateElement("saml:EncryptedAttribute")
			dataEl := encEl.CreateElement("xenc:EncryptedData")
			dataEl.CreateAttr("xmlns:xenc", xmlencNS)
		}
	}

	if spec.SignAssertion {
		ctx := dsig.NewDefaultSigningContext(i.keyStore)
		ctx.Canonicalizer = dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
		signed, err := ctx.SignEnveloped(a)
		if err != nil {
			i.t.Fatalf("failed to sign assertion: %v", err)
		}
		return signed
	}
	return a
}

// PlainAttributeElement fabricates a standalone saml:Attribute element,
// used as fake decryptor output for encrypted-attribute tests.
func PlainAttributeElement(name string, values ...string) *etree.Element {
	attrEl := etree.NewElement("saml:Attribute")
	attrEl.CreateAttr("xmlns:saml", assertionNS)
	attrEl.CreateAttr("Name", name)
	for _, value := range values {
		valueEl := attrEl.CreateElement("saml:AttributeValue")
		valueEl.SetText(value)
	}
	return attrEl
}
