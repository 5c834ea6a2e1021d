// Package trust builds IdP trust configuration (issuer entity ID and
// signing certificates) from SAML metadata. Metadata is read from a local
// file or byte slice only; metadata exchange with IdPs is out of scope.
package trust

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/crewjam/saml"
)

// IdentityProvider is the trust anchor for one identity provider: the
// issuer value assertions must carry and the certificates responses or
// assertions must be signed with.
type IdentityProvider struct {
	EntityID     string
	Certificates []*x509.Certificate
}

// FromMetadataFile parses an IdP EntityDescriptor from the given file.
func FromMetadataFile(path string) (*IdentityProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	return FromMetadata(data)
}

// FromMetadata parses an IdP EntityDescriptor from raw metadata XML and
// extracts the entity ID and all signing certificates. Certificates without
// a "use" attribute count as signing certificates, as many IdPs omit it.
func FromMetadata(xmlMetadata []byte) (*IdentityProvider, error) {
	var descriptor saml.EntityDescriptor
	if err := xml.Unmarshal(xmlMetadata, &descriptor); err != nil {
		return nil, fmt.Errorf("parse IdP metadata: %w", err)
	}

	idp := &IdentityProvider{EntityID: descriptor.EntityID}
	for _, sso := range descriptor.IDPSSODescriptors {
		for _, kd := range sso.KeyDescriptors {
			if kd.Use != "" && kd.Use != "signing" {
				continue
			}
			for _, xc := range kd.KeyInfo.X509Data.X509Certificates {
				cert, err := parseCertificate(xc.Data)
				if err != nil {
					return nil, err
				}
				idp.Certificates = append(idp.Certificates, cert)
			}
		}
	}

	if idp.EntityID == "" {
		return nil, fmt.Errorf("IdP metadata has no entityID")
	}
	if len(idp.Certificates) == 0 {
		return nil, fmt.Errorf("IdP metadata for %q contains no signing certificate", idp.EntityID)
	}
	return idp, nil
}

func parseCertificate(data string) (*x509.Certificate, error) {
	// Metadata embeds base64 DER, often with whitespace line wrapping.
	cleaned := strings.Join(strings.Fields(data), "")
	der, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode IdP x509 cert: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse IdP x509 cert: %w", err)
	}
	return cert, nil
}
