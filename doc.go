// Package samlgate validates inbound SAML2 authentication responses for a
// service provider. It decides whether an assertion is cryptographically
// trustworthy, freshly issued, addressed to this SP, and not replayed, then
// extracts the authenticated subject identifier and attribute set.
//
// The validator consumes an already-delivered response document; transport
// bindings, request generation, session management, and IdP metadata
// discovery are out of scope. Signature verification and decryption are
// delegated to collaborator interfaces with goxmldsig- and xmlenc-backed
// default implementations.
package samlgate
