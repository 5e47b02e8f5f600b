package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilterAccepts(t *testing.T) {
	filters := []string{
		"(objectClass=*)",
		"(cn=admin)",
		"(cn=*adm*)",
		"(&(objectClass=person)(cn=admin))",
		"(|(cn=a)(cn=b)(cn=c))",
		"(!(objectClass=computer))",
		"(&(|(cn=a)(sn=b))(!(uid=c)))",
		"(createTimestamp>=20240101000000Z)",
		"(uidNumber<=1000)",
		"(cn~=jon)",
		"(userCertificate;binary=*)",
		"(cn=name \\28with parens\\29)",
		"  (cn=admin)  ",
	}
	for _, f := range filters {
		assert.NoError(t, ValidateFilter(f), "filter %q", f)
	}
}

func TestValidateFilterRejects(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"no parens", "cn=admin"},
		{"unclosed", "(cn=admin"},
		{"trailing garbage", "(cn=admin)x"},
		{"second filter", "(cn=a)(cn=b)"},
		{"empty and list", "(&)"},
		{"empty or list", "(|)"},
		{"bare not", "(!)"},
		{"missing attribute", "(=value)"},
		{"missing operator", "(cn)"},
		{"half approx operator", "(cn~value)"},
		{"lone open paren", "("},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidateFilter(tc.filter), "filter %q", tc.filter)
		})
	}
}

func TestValidateFilterErrorPositions(t *testing.T) {
	err := ValidateFilter("(cn=admin)x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position 11")

	err = ValidateFilter("cn=admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '(' at position 1")
}

func TestDetectAttributeContext(t *testing.T) {
	tests := []struct {
		input   string
		partial string
		ok      bool
	}{
		{"(userPr", "userPr", true},
		{"(&(cn=admin)(obj", "obj", true},
		{"(&(", "", true},
		{"(!(mem", "mem", true},
		{"(|obj", "obj", true},
		{"(", "", true},
		{"(cn=adm", "", false},
		{"(cn~", "", false},
		{"(cn>", "", false},
		{"(uidNumber<", "", false},
		{"hello", "", false},
		{"(cn=test)", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			partial, ok := DetectAttributeContext(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.partial, partial)
		})
	}
}
