package ldap

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// TLSMode selects how the transport to the directory server is secured.
type TLSMode int

const (
	// TLSModeAuto tries LDAPS, then StartTLS, then plaintext.
	TLSModeAuto TLSMode = iota
	// TLSModeLDAPS opens a TLS socket directly on the configured port.
	TLSModeLDAPS
	// TLSModeStartTLS opens plaintext and upgrades in-band before any
	// LDAP operation.
	TLSModeStartTLS
	// TLSModeNone is plaintext only.
	TLSModeNone
)

// Next cycles to the following TLS mode, for UI toggling.
func (m TLSMode) Next() TLSMode {
	switch m {
	case TLSModeAuto:
		return TLSModeLDAPS
	case TLSModeLDAPS:
		return TLSModeStartTLS
	case TLSModeStartTLS:
		return TLSModeNone
	default:
		return TLSModeAuto
	}
}

// Label returns the display name of the mode.
func (m TLSMode) Label() string {
	switch m {
	case TLSModeAuto:
		return "Auto"
	case TLSModeLDAPS:
		return "LDAPS"
	case TLSModeStartTLS:
		return "StartTLS"
	default:
		return "None"
	}
}

func (m TLSMode) String() string { return m.Label() }

// KerberosSettings configures the optional GSSAPI bind path. Credential
// sources are tried in order: credential cache, keytab, password.
type KerberosSettings struct {
	Realm      string
	Username   string
	Password   string
	ConfigPath string // krb5.conf location, /etc/krb5.conf when empty
	CCachePath string
	KeytabPath string
	SPN        string // overrides ldap/<host> when set
}

// ConnectionSettings is the caller-supplied, per-attempt description of a
// connection target. Immutable once handed to Connect.
type ConnectionSettings struct {
	Host     string
	Port     int     `default:"389"`
	TLSMode  TLSMode `default:"0"`
	BindDN   string
	BaseDN   string
	PageSize uint32        `default:"500"`
	Timeout  time.Duration `default:"30s"`

	// RelaxRules sends the Relax Rules control with modify/add/delete
	// operations to bypass schema violations raised by directory overlays.
	RelaxRules bool

	Kerberos *KerberosSettings
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (s *ConnectionSettings) ApplyDefaults() error {
	return defaults.Set(s)
}

// Validate checks the settings are usable for a connection attempt.
func (s *ConnectionSettings) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("host is required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.PageSize == 0 {
		return fmt.Errorf("page size must be greater than zero")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}
	return nil
}
