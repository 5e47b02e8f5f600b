package ldap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/trepidity/loom-ldapbrowser/internal/trust"
)

// ConnectError reports a failed transport negotiation. Proto names the
// attempted path (LDAPS, StartTLS, plain LDAP).
type ConnectError struct {
	Proto string
	Err   error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connection failed: %s: %v", e.Proto, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// BindError reports a bind rejected by the server. Carries the server's
// result code and diagnostic text; never reconnect-worthy.
type BindError struct {
	Code       uint16
	Diagnostic string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind failed: rc=%d: %s", e.Code, e.Diagnostic)
}

// SearchError reports a failed search operation.
type SearchError struct {
	Base string
	Err  error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed: %s: %v", e.Base, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// ModifyError reports a failed modify, add or delete.
type ModifyError struct {
	Op         string // "modify", "add" or "delete"
	DN         string
	Code       uint16
	Diagnostic string
}

func (e *ModifyError) Error() string {
	return fmt.Sprintf("%s %s failed: rc=%d: %s", e.Op, e.DN, e.Code, e.Diagnostic)
}

// SchemaError reports a schema discovery failure. Individual malformed
// definitions are skipped, not reported through this type.
type SchemaError struct {
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema error: %s: %v", e.Message, e.Err)
	}
	return "schema error: " + e.Message
}

func (e *SchemaError) Unwrap() error { return e.Err }

// CertificateNotTrustedError aborts a TLS handshake whose server
// certificate failed both trust-store and chain validation. Info carries
// the details the operator needs for a trust decision.
type CertificateNotTrustedError struct {
	Info trust.CertificateInfo
}

func (e *CertificateNotTrustedError) Error() string {
	return "certificate not trusted: " + e.Info.String()
}

// TimeoutError reports an operation that exceeded the configured timeout.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out", e.Op)
}

// IsConnectionError reports whether an error indicates a lost or failed
// transport that a single reconnect may recover. Bind rejections and other
// protocol-level failures are excluded so a bad password is never retried
// in a loop.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var connErr *ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return false
	}
	var certErr *CertificateNotTrustedError
	if errors.As(err, &certErr) {
		return false
	}

	var ldapErr *ldap.Error
	msg := err.Error()
	if errors.As(err, &ldapErr) {
		msg = ldapErr.Error()
	}

	lower := strings.ToLower(msg)
	for _, pattern := range []string{
		"connection",
		"broken pipe",
		"reset",
		"closed",
		"eof",
		"timed out",
	} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
