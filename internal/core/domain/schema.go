package domain

import (
	"encoding/xml"
	"time"
)

// XML namespaces used by SAML 2.0 messages.
const (
	ProtocolNamespace   = "urn:oasis:names:tc:SAML:2.0:protocol"
	AssertionNamespace  = "urn:oasis:names:tc:SAML:2.0:assertion"
	SignatureNamespace  = "http://www.w3.org/2000/09/xmldsig#"
	EncryptionNamespace = "http://www.w3.org/2001/04/xmlenc#"
)

// StatusSuccess is the StatusCode value of a successful authentication.
const StatusSuccess = "urn:oasis:names:tc:SAML:2.0:status:Success"

// MethodBearer is the only SubjectConfirmation method this core accepts.
const MethodBearer = "urn:oasis:names:tc:SAML:2.0:cm:bearer"

// Response represents the samlp:Response protocol object.
//
// Assertions and EncryptedAssertions are both slices so that the
// exactly-one-assertion rule can be checked across the two forms; the
// protocol itself allows more, this core deliberately does not.
//
// See http://docs.oasis-open.org/security/saml/v2.0/saml-core-2.0-os.pdf
type Response struct {
	XMLName             xml.Name             `xml:"urn:oasis:names:tc:SAML:2.0:protocol Response"`
	ID                  string               `xml:"ID,attr"`
	InResponseTo        string               `xml:"InResponseTo,attr"`
	Destination         string               `xml:"Destination,attr"`
	Version             string               `xml:"Version,attr"`
	IssueInstant        time.Time            `xml:"IssueInstant,attr"`
	Issuer              *Issuer              `xml:"urn:oasis:names:tc:SAML:2.0:assertion Issuer"`
	Status              *Status              `xml:"urn:oasis:names:tc:SAML:2.0:protocol Status"`
	Assertions          []Assertion          `xml:"urn:oasis:names:tc:SAML:2.0:assertion Assertion"`
	EncryptedAssertions []EncryptedAssertion `xml:"urn:oasis:names:tc:SAML:2.0:assertion EncryptedAssertion"`
}

// Issuer represents the saml:Issuer element.
type Issuer struct {
	Format string `xml:"Format,attr"`
	Value  string `xml:",chardata"`
}

// Status represents the samlp:Status element.
type Status struct {
	StatusCode    *StatusCode    `xml:"urn:oasis:names:tc:SAML:2.0:protocol StatusCode"`
	StatusMessage *StatusMessage `xml:"urn:oasis:names:tc:SAML:2.0:protocol StatusMessage"`
	StatusDetail  *StatusDetail  `xml:"urn:oasis:names:tc:SAML:2.0:protocol StatusDetail"`
}

// StatusCode represents the samlp:StatusCode element.
type StatusCode struct {
	Value string `xml:"Value,attr"`
}

// StatusMessage represents the samlp:StatusMessage element.
type StatusMessage struct {
	Value string `xml:",chardata"`
}

// StatusDetail carries the raw inner XML of the samlp:StatusDetail element
// for diagnostics.
type StatusDetail struct {
	Value string `xml:",innerxml"`
}

// Message returns the status message text, or "" when absent.
func (s *Status) Message() string {
	if s == nil || s.StatusMessage == nil {
		return ""
	}
	return s.StatusMessage.Value
}

// Detail returns the raw status detail XML, or "" when absent.
func (s *Status) Detail() string {
	if s == nil || s.StatusDetail == nil {
		return ""
	}
	return s.StatusDetail.Value
}

// IsSuccess reports whether the status carries the protocol success code.
func (s *Status) IsSuccess() bool {
	return s != nil && s.StatusCode != nil && s.StatusCode.Value == StatusSuccess
}

// EncryptedAssertion carries the raw EncryptedData envelope of an encrypted
// assertion. Decryption happens through the Decryptor port against the
// corresponding etree element, not against this struct.
type EncryptedAssertion struct {
	EncryptedData []byte `xml:",innerxml"`
}

// Assertion represents the saml:Assertion element.
type Assertion struct {
	XMLName             xml.Name             `xml:"urn:oasis:names:tc:SAML:2.0:assertion Assertion"`
	ID                  string               `xml:"ID,attr"`
	Version             string               `xml:"Version,attr"`
	IssueInstant        time.Time            `xml:"IssueInstant,attr"`
	Issuer              *Issuer              `xml:"urn:oasis:names:tc:SAML:2.0:assertion Issuer"`
	Subject             *Subject             `xml:"urn:oasis:names:tc:SAML:2.0:assertion Subject"`
	Conditions          *Conditions          `xml:"urn:oasis:names:tc:SAML:2.0:assertion Conditions"`
	AuthnStatements     []AuthnStatement     `xml:"urn:oasis:names:tc:SAML:2.0:assertion AuthnStatement"`
	AttributeStatements []AttributeStatement `xml:"urn:oasis:names:tc:SAML:2.0:assertion AttributeStatement"`
}

// Subject represents the saml:Subject element.
type Subject struct {
	NameID               *NameID               `xml:"urn:oasis:names:tc:SAML:2.0:assertion NameID"`
	SubjectConfirmations []SubjectConfirmation `xml:"urn:oasis:names:tc:SAML:2.0:assertion SubjectConfirmation"`
}

// NameID represents the saml:NameID element.
type NameID struct {
	Format          string `xml:"Format,attr"`
	NameQualifier   string `xml:"NameQualifier,attr"`
	SPNameQualifier string `xml:"SPNameQualifier,attr"`
	Value           string `xml:",chardata"`
}

// SubjectConfirmation represents the saml:SubjectConfirmation element.
type SubjectConfirmation struct {
	Method                  string                   `xml:"Method,attr"`
	SubjectConfirmationData *SubjectConfirmationData `xml:"urn:oasis:names:tc:SAML:2.0:assertion SubjectConfirmationData"`
}

// SubjectConfirmationData represents the saml:SubjectConfirmationData element.
// A zero NotOnOrAfter means the attribute was absent.
type SubjectConfirmationData struct {
	Recipient    string    `xml:"Recipient,attr"`
	InResponseTo string    `xml:"InResponseTo,attr"`
	NotOnOrAfter time.Time `xml:"NotOnOrAfter,attr"`
	Address      string    `xml:"Address,attr"`
}

// Conditions represents the saml:Conditions element. Zero timestamps mean
// the corresponding attribute was absent.
type Conditions struct {
	NotBefore            time.Time             `xml:"NotBefore,attr"`
	NotOnOrAfter         time.Time             `xml:"NotOnOrAfter,attr"`
	AudienceRestrictions []AudienceRestriction `xml:"urn:oasis:names:tc:SAML:2.0:assertion AudienceRestriction"`
}

// AudienceRestriction represents the saml:AudienceRestriction element.
type AudienceRestriction struct {
	Audiences []Audience `xml:"urn:oasis:names:tc:SAML:2.0:assertion Audience"`
}

// Audience represents the saml:Audience element.
type Audience struct {
	Value string `xml:",chardata"`
}

// Matches reports whether any audience URI in the restriction equals entityID.
func (r AudienceRestriction) Matches(entityID string) bool {
	for _, a := range r.Audiences {
		if a.Value == entityID {
			return true
		}
	}
	return false
}

// AuthnStatement represents the saml:AuthnStatement element.
type AuthnStatement struct {
	AuthnInstant time.Time `xml:"AuthnInstant,attr"`
	SessionIndex string    `xml:"SessionIndex,attr"`
}

// AttributeStatement represents the saml:AttributeStatement element.
// EncryptedAttribute elements are located and decrypted through the etree
// view of the assertion; only their count is visible here.
type AttributeStatement struct {
	Attributes          []Attribute          `xml:"urn:oasis:names:tc:SAML:2.0:assertion Attribute"`
	EncryptedAttributes []EncryptedAttribute `xml:"urn:oasis:names:tc:SAML:2.0:assertion EncryptedAttribute"`
}

// Attribute represents the saml:Attribute element.
type Attribute struct {
	Name         string           `xml:"Name,attr"`
	NameFormat   string           `xml:"NameFormat,attr"`
	FriendlyName string           `xml:"FriendlyName,attr"`
	Values       []AttributeValue `xml:"urn:oasis:names:tc:SAML:2.0:assertion AttributeValue"`
}

// AttributeValue represents the saml:AttributeValue element.
type AttributeValue struct {
	Type  string `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr"`
	Value string `xml:",chardata"`
}

// EncryptedAttribute carries the raw envelope of an encrypted attribute.
type EncryptedAttribute struct {
	EncryptedData []byte `xml:",innerxml"`
}

// SessionIndex returns the first non-empty session index across the
// assertion's authentication statements, or "" if none.
func (a *Assertion) SessionIndex() string {
	for _, st := range a.AuthnStatements {
		if st.SessionIndex != "" {
			return st.SessionIndex
		}
	}
	return ""
}
