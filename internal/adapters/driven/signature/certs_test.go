//go:build unit

package signature

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	dsig "github.com/russellhaering/goxmldsig"
)

func writePEM(t *testing.T, name, blockType string, der []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		t.Fatalf("failed to encode PEM: %v", err)
	}
	return path
}

func TestLoadSigningCertificates(t *testing.T) {
	keyStore := dsig.RandomKeyStoreForTest()
	_, certDER, err := keyStore.GetKeyPair()
	if err != nil {
		t.Fatalf("failed to get test key pair: %v", err)
	}

	t.Run("single certificate", func(t *testing.T) {
		path := writePEM(t, "idp.crt", "CERTIFICATE", certDER)
		certs, err := LoadSigningCertificates(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(certs) != 1 {
			t.Errorf("got %d certificates, want 1", len(certs))
		}
	})

	t.Run("multiple certificates for rotation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rotation.crt")
		var buf []byte
		for i := 0; i < 2; i++ {
			buf = append(buf, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})...)
		}
		if err := os.WriteFile(path, buf, 0o600); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		certs, err := LoadSigningCertificates(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(certs) != 2 {
			t.Errorf("got %d certificates, want 2", len(certs))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSigningCertificates(filepath.Join(t.TempDir(), "nope.crt")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("no certificate blocks", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.crt")
		if err := os.WriteFile(path, []byte("not pem at all"), 0o600); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if _, err := LoadSigningCertificates(path); err == nil {
			t.Error("expected an error when no certificates are present")
		}
	})
}

func TestLoadPrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	t.Run("pkcs1", func(t *testing.T) {
		path := writePEM(t, "sp.key", "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))
		loaded, err := LoadPrivateKey(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.N.Cmp(key.N) != 0 {
			t.Error("loaded key does not match the generated key")
		}
	})

	t.Run("pkcs8", func(t *testing.T) {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			t.Fatalf("failed to marshal PKCS#8: %v", err)
		}
		path := writePEM(t, "sp8.key", "PRIVATE KEY", der)
		loaded, err := LoadPrivateKey(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.N.Cmp(key.N) != 0 {
			t.Error("loaded key does not match the generated key")
		}
	})

	t.Run("not pem", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.key")
		if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if _, err := LoadPrivateKey(path); err == nil {
			t.Error("expected an error for non-PEM input")
		}
	})
}
