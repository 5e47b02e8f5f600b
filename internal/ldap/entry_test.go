package ldap

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryAccessors(t *testing.T) {
	e := NewEntry("cn=admin,dc=example,dc=com", map[string][]string{
		"cn":          {"admin"},
		"objectClass": {"top", "person"},
		"mail":        {"a@example.com", "b@example.com"},
	})

	assert.Equal(t, "admin", e.FirstValue("cn"))
	assert.Equal(t, "a@example.com", e.FirstValue("mail"))
	assert.Equal(t, "", e.FirstValue("missing"))
	assert.Equal(t, "cn=admin", e.RDN())
	assert.Equal(t, []string{"top", "person"}, e.ObjectClasses())
	assert.Equal(t, []string{"cn", "mail", "objectClass"}, e.AttributeNames())
}

func TestEntryObjectClassesCaseInsensitive(t *testing.T) {
	e := NewEntry("cn=x", map[string][]string{"objectclass": {"person"}})
	assert.Equal(t, []string{"person"}, e.ObjectClasses())
}

func TestNewEntryNilAttributes(t *testing.T) {
	e := NewEntry("cn=x", nil)
	require.NotNil(t, e.Attributes)
	assert.Equal(t, "", e.FirstValue("cn"))
}

func TestEntryFromSearchResultDecodesBinary(t *testing.T) {
	rawSID := []byte{
		0x01, 0x04,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
		21, 0, 0, 0,
		1, 0, 0, 0,
		2, 0, 0, 0,
		3, 0, 0, 0,
	}
	rawGUID := []byte{
		0x04, 0x03, 0x02, 0x01,
		0x06, 0x05,
		0x08, 0x07,
		0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
	}

	raw := ldap.NewEntry("cn=admin,dc=example,dc=com", map[string][]string{
		"cn":         {"admin"},
		"objectSid":  {string(rawSID)},
		"objectGUID": {string(rawGUID)},
	})

	e := entryFromSearchResult(raw)

	assert.Equal(t, "cn=admin,dc=example,dc=com", e.DN)
	assert.Equal(t, []string{"admin"}, e.Attributes["cn"])
	assert.Equal(t, []string{"S-1-5-21-1-2-3"}, e.Attributes["objectSid"])
	assert.Equal(t, []string{"01020304-0506-0708-090a-0b0c0d0e0f10"}, e.Attributes["objectGUID"])
}

func TestEntryFromSearchResultBinaryFallback(t *testing.T) {
	// A malformed binary value falls back to its raw string form rather
	// than dropping the attribute.
	raw := ldap.NewEntry("cn=x,dc=example,dc=com", map[string][]string{
		"objectGUID": {"short"},
	})

	e := entryFromSearchResult(raw)
	assert.Equal(t, []string{"short"}, e.Attributes["objectGUID"])
}
