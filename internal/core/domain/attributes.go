package domain

import "strings"

// ValidatedAttributes is the output of a successful response validation:
// the authenticated subject's name identifier, the IdP session index, and
// the flattened (decrypted) attribute list. At least one of NameID and
// Attributes is always non-empty; a response asserting neither is rejected
// before this value is constructed.
type ValidatedAttributes struct {
	NameID       *NameID
	SessionIndex string
	Attributes   []ValidatedAttribute
}

// ValidatedAttribute is one decoded SAML attribute. FriendlyName is the
// resolved human-readable name when the wire name is a known OID, otherwise
// it repeats Name.
type ValidatedAttribute struct {
	Name         string
	FriendlyName string
	Values       []string
}

// NewValidatedAttribute builds a ValidatedAttribute from a parsed SAML
// attribute, resolving its friendly name and flattening its values.
func NewValidatedAttribute(attr Attribute) ValidatedAttribute {
	friendly := attr.FriendlyName
	if friendly == "" {
		_, friendly = ResolveAttributeName(attr.Name)
	}
	values := make([]string, 0, len(attr.Values))
	for _, v := range attr.Values {
		values = append(values, v.Value)
	}
	return ValidatedAttribute{
		Name:         attr.Name,
		FriendlyName: friendly,
		Values:       values,
	}
}

// oidRegistry maps OIDs to their friendly names and vice versa.
// This is a pure domain component with no external dependencies.
var oidRegistry = map[string]string{
	// eduPerson attributes
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.6":  "eduPersonPrincipalName",
	"eduPersonPrincipalName":            "urn:oid:1.3.6.1.4.1.5923.1.1.1.6",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.7":  "eduPersonEntitlement",
	"eduPersonEntitlement":              "urn:oid:1.3.6.1.4.1.5923.1.1.1.7",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.9":  "eduPersonScopedAffiliation",
	"eduPersonScopedAffiliation":        "urn:oid:1.3.6.1.4.1.5923.1.1.1.9",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.10": "eduPersonTargetedID",
	"eduPersonTargetedID":               "urn:oid:1.3.6.1.4.1.5923.1.1.1.10",

	// Standard LDAP attributes
	"urn:oid:0.9.2342.19200300.100.1.3": "mail",
	"mail":                              "urn:oid:0.9.2342.19200300.100.1.3",
	"urn:oid:0.9.2342.19200300.100.1.1": "uid",
	"uid":                               "urn:oid:0.9.2342.19200300.100.1.1",
	"urn:oid:2.5.4.42":                  "givenName",
	"givenName":                         "urn:oid:2.5.4.42",
	"urn:oid:2.5.4.4":                   "sn",
	"sn":                                "urn:oid:2.5.4.4",
	"urn:oid:2.16.840.1.113730.3.1.241": "displayName",
	"displayName":                       "urn:oid:2.16.840.1.113730.3.1.241",

	// SCHAC attributes
	"urn:oid:1.3.6.1.4.1.25178.1.2.9": "schacHomeOrganization",
	"schacHomeOrganization":           "urn:oid:1.3.6.1.4.1.25178.1.2.9",
}

// ResolveAttributeName resolves a SAML attribute name to both its OID and friendly name.
// If the input is a known OID, returns the OID and its friendly name.
// If the input is a known friendly name, returns the OID and friendly name.
// If the input is unknown, returns it unchanged for both OID and friendly name.
//
// This is a pure function with no side effects or I/O.
func ResolveAttributeName(name string) (oid, friendlyName string) {
	if name == "" {
		return "", ""
	}

	if resolved, ok := oidRegistry[name]; ok {
		if strings.HasPrefix(name, "urn:oid:") {
			return name, resolved
		}
		return resolved, name
	}

	// Unknown name passes through unchanged
	return name, name
}
