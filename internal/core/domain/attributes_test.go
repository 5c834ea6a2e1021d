//go:build unit

package domain

import "testing"

func TestResolveAttributeName(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		wantOID      string
		wantFriendly string
	}{
		{"known OID resolves to friendly name", "urn:oid:0.9.2342.19200300.100.1.3", "urn:oid:0.9.2342.19200300.100.1.3", "mail"},
		{"known friendly name resolves to OID", "mail", "urn:oid:0.9.2342.19200300.100.1.3", "mail"},
		{"eduPerson OID", "urn:oid:1.3.6.1.4.1.5923.1.1.1.6", "urn:oid:1.3.6.1.4.1.5923.1.1.1.6", "eduPersonPrincipalName"},
		{"eduPerson friendly name", "eduPersonScopedAffiliation", "urn:oid:1.3.6.1.4.1.5923.1.1.1.9", "eduPersonScopedAffiliation"},
		{"schac OID", "urn:oid:1.3.6.1.4.1.25178.1.2.9", "urn:oid:1.3.6.1.4.1.25178.1.2.9", "schacHomeOrganization"},
		{"unknown name passes through", "department", "department", "department"},
		{"unknown OID passes through", "urn:oid:9.9.9.9", "urn:oid:9.9.9.9", "urn:oid:9.9.9.9"},
		{"empty input", "", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oid, friendly := ResolveAttributeName(tc.input)
			if oid != tc.wantOID || friendly != tc.wantFriendly {
				t.Errorf("ResolveAttributeName(%q) = (%q, %q), want (%q, %q)",
					tc.input, oid, friendly, tc.wantOID, tc.wantFriendly)
			}
		})
	}
}

func TestNewValidatedAttribute(t *testing.T) {
	t.Run("explicit friendly name wins", func(t *testing.T) {
		got := NewValidatedAttribute(Attribute{
			Name:         "urn:oid:0.9.2342.19200300.100.1.3",
			FriendlyName: "email",
			Values:       []AttributeValue{{Value: "a@b.com"}},
		})
		if got.FriendlyName != "email" {
			t.Errorf("FriendlyName = %q, want email", got.FriendlyName)
		}
	})

	t.Run("friendly name resolved from OID", func(t *testing.T) {
		got := NewValidatedAttribute(Attribute{
			Name:   "urn:oid:2.5.4.4",
			Values: []AttributeValue{{Value: "Doe"}},
		})
		if got.FriendlyName != "sn" {
			t.Errorf("FriendlyName = %q, want sn", got.FriendlyName)
		}
	})

	t.Run("values flattened in order", func(t *testing.T) {
		got := NewValidatedAttribute(Attribute{
			Name: "memberOf",
			Values: []AttributeValue{
				{Value: "staff", Type: "xs:string"},
				{Value: "admins"},
			},
		})
		if len(got.Values) != 2 || got.Values[0] != "staff" || got.Values[1] != "admins" {
			t.Errorf("Values = %v, want [staff admins]", got.Values)
		}
	})

	t.Run("no values yields empty slice", func(t *testing.T) {
		got := NewValidatedAttribute(Attribute{Name: "empty"})
		if got.Values == nil || len(got.Values) != 0 {
			t.Errorf("Values = %#v, want empty non-nil slice", got.Values)
		}
	})
}
