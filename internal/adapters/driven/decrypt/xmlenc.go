// Package decrypt provides Decryptor adapters for encrypted SAML assertions
// and attributes.
package decrypt

import (
	"crypto/rsa"

	"github.com/beevik/etree"
	"github.com/crewjam/saml/xmlenc"
	"go.uber.org/zap"

	"github.com/philiph/samlgate/internal/core/domain"
	"github.com/philiph/samlgate/internal/core/ports"
)

// XMLEncDecryptor decrypts xenc:EncryptedData elements with the service
// provider's RSA decryption keys using crewjam/saml's xmlenc implementation.
// Keys are tried in order; the first one that yields a valid plaintext wins,
// which supports decryption key rollover.
type XMLEncDecryptor struct {
	keys   []*rsa.PrivateKey
	logger *zap.Logger
}

// NewXMLEncDecryptor creates a decryptor with the given keys.
func NewXMLEncDecryptor(keys []*rsa.PrivateKey) *XMLEncDecryptor {
	return &XMLEncDecryptor{keys: keys, logger: zap.NewNop()}
}

// WithLogger sets a logger for decryption diagnostics.
func (d *XMLEncDecryptor) WithLogger(logger *zap.Logger) *XMLEncDecryptor {
	d.logger = logger
	return d
}

// Decrypt decrypts encryptedData and returns the plaintext element,
// re-anchored as the root of a new document so that ID references inside
// the decrypted subtree resolve without the enclosing response document.
func (d *XMLEncDecryptor) Decrypt(encryptedData *etree.Element) (*etree.Element, error) {
	if encryptedData == nil {
		return nil, &domain.SecurityError{
			Code:    domain.ErrCodeDecryptionFailed,
			Message: "no EncryptedData element present",
		}
	}
	if len(d.keys) == 0 {
		return nil, &domain.SecurityError{
			Code:    domain.ErrCodeDecryptionFailed,
			Message: "content is encrypted, but no decryption key is configured",
		}
	}

	var lastErr error
	for i, key := range d.keys {
		plaintext, err := xmlenc.Decrypt(key, encryptedData)
		if err != nil {
			d.logger.Debug("decryption attempt failed",
				zap.Int("key_index", i),
				zap.Error(err))
			lastErr = err
			continue
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(plaintext); err != nil || doc.Root() == nil {
			return nil, &domain.SecurityError{
				Code:    domain.ErrCodeDecryptionFailed,
				Message: "decrypted content is not well-formed XML",
				Cause:   err,
			}
		}
		return doc.Root(), nil
	}

	return nil, &domain.SecurityError{
		Code:    domain.ErrCodeDecryptionFailed,
		Message: "decryption failed with all configured keys",
		Cause:   lastErr,
	}
}

// Ensure implementation satisfies the port
var _ ports.Decryptor = (*XMLEncDecryptor)(nil)
