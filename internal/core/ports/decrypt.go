package ports

import "github.com/beevik/etree"

// Decryptor decrypts one xenc:EncryptedData element of a SAML message with
// the service provider's decryption keys.
// This is a port interface - implementations are adapters.
//
// The returned element is the root of a fresh document so that ID-based
// references inside the decrypted subtree resolve independently of the
// enclosing response document. Callers decide failure policy: assertion
// decryption failure is fatal, attribute decryption failure is not.
type Decryptor interface {
	// Decrypt decrypts encryptedData and returns the plaintext element,
	// re-anchored as the root of a new document. Returns an error when no
	// configured key matches or the ciphertext is invalid.
	Decrypt(encryptedData *etree.Element) (*etree.Element, error)
}
