package ldap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connect error", &ConnectError{Proto: "LDAPS", Err: errors.New("dial tcp: refused")}, true},
		{"timeout error", &TimeoutError{Op: "search"}, true},
		{"bind rejection", &BindError{Code: 49, Diagnostic: "invalid credentials"}, false},
		{"certificate not trusted", &CertificateNotTrustedError{}, false},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"closed", errors.New("use of closed network connection"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"timed out", errors.New("i/o timed out"), true},
		{"generic connection wording", errors.New("connection lost"), true},
		{"ldap network error", ldap.NewError(ldap.ErrorNetwork, errors.New("connection reset")), true},
		{"semantic error", errors.New("invalid filter syntax"), false},
		{"wrapped connect error", fmt.Errorf("search: %w", &ConnectError{Proto: "plain LDAP", Err: errors.New("refused")}), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsConnectionError(tc.err))
		})
	}
}

func TestBindErrorMessage(t *testing.T) {
	err := &BindError{Code: 49, Diagnostic: "80090308: LdapErr: DSID-0C090447"}
	assert.Contains(t, err.Error(), "rc=49")
	assert.Contains(t, err.Error(), "80090308")
}

func TestModifyErrorMessage(t *testing.T) {
	err := &ModifyError{Op: "delete", DN: "cn=x,dc=example", Code: 66, Diagnostic: "subordinate objects must be deleted first"}
	assert.Contains(t, err.Error(), "delete cn=x,dc=example")
	assert.Contains(t, err.Error(), "rc=66")
}

func TestConnectErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &ConnectError{Proto: "LDAPS", Err: cause}
	assert.ErrorIs(t, err, cause)
}
