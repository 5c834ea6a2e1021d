//go:build unit

package trust

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	dsig "github.com/russellhaering/goxmldsig"
)

func testCertBase64(t *testing.T) string {
	t.Helper()
	keyStore := dsig.RandomKeyStoreForTest()
	_, certDER, err := keyStore.GetKeyPair()
	if err != nil {
		t.Fatalf("failed to get test key pair: %v", err)
	}
	return base64.StdEncoding.EncodeToString(certDER)
}

func metadataXML(entityID, use, cert string) []byte {
	useAttr := ""
	if use != "" {
		useAttr = fmt.Sprintf(` use=%q`, use)
	}
	return []byte(fmt.Sprintf(`<EntityDescriptor xmlns="urn:oasis:names:tc:SAML:2.0:metadata" entityID=%q>
  <IDPSSODescriptor protocolSupportEnumeration="urn:oasis:names:tc:SAML:2.0:protocol">
    <KeyDescriptor%s>
      <KeyInfo xmlns="http://www.w3.org/2000/09/xmldsig#">
        <X509Data><X509Certificate>
          %s
        </X509Certificate></X509Data>
      </KeyInfo>
    </KeyDescriptor>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="https://idp.example.com/sso"/>
  </IDPSSODescriptor>
</EntityDescriptor>`, entityID, useAttr, cert))
}

func TestFromMetadata(t *testing.T) {
	cert := testCertBase64(t)

	t.Run("signing certificate extracted", func(t *testing.T) {
		idp, err := FromMetadata(metadataXML("https://idp.example.com/metadata", "signing", cert))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if idp.EntityID != "https://idp.example.com/metadata" {
			t.Errorf("EntityID = %q", idp.EntityID)
		}
		if len(idp.Certificates) != 1 {
			t.Errorf("got %d certificates, want 1", len(idp.Certificates))
		}
	})

	t.Run("missing use attribute counts as signing", func(t *testing.T) {
		idp, err := FromMetadata(metadataXML("https://idp.example.com/metadata", "", cert))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(idp.Certificates) != 1 {
			t.Errorf("got %d certificates, want 1", len(idp.Certificates))
		}
	})

	t.Run("encryption-only certificate is not a trust anchor", func(t *testing.T) {
		_, err := FromMetadata(metadataXML("https://idp.example.com/metadata", "encryption", cert))
		if err == nil {
			t.Error("expected an error when only an encryption certificate is present")
		}
	})

	t.Run("whitespace-wrapped base64 is accepted", func(t *testing.T) {
		wrapped := cert[:40] + "\n          " + cert[40:]
		if _, err := FromMetadata(metadataXML("https://idp.example.com/metadata", "signing", wrapped)); err != nil {
			t.Errorf("parse failed: %v", err)
		}
	})

	t.Run("missing entity id", func(t *testing.T) {
		if _, err := FromMetadata(metadataXML("", "signing", cert)); err == nil {
			t.Error("expected an error for metadata without an entityID")
		}
	})

	t.Run("garbage certificate", func(t *testing.T) {
		if _, err := FromMetadata(metadataXML("https://idp.example.com/metadata", "signing", "bm90IGEgY2VydA==")); err == nil {
			t.Error("expected an error for an unparsable certificate")
		}
	})

	t.Run("not metadata at all", func(t *testing.T) {
		if _, err := FromMetadata([]byte("<broken")); err == nil {
			t.Error("expected an error for malformed XML")
		}
	})
}

func TestFromMetadataFile(t *testing.T) {
	cert := testCertBase64(t)
	path := filepath.Join(t.TempDir(), "idp-metadata.xml")
	if err := os.WriteFile(path, metadataXML("https://idp.example.com/metadata", "signing", cert), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	idp, err := FromMetadataFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if idp.EntityID != "https://idp.example.com/metadata" {
		t.Errorf("EntityID = %q", idp.EntityID)
	}

	if _, err := FromMetadataFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
