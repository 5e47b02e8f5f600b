package ldap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"
)

// GSSAPIBind authenticates with Kerberos via SASL/GSSAPI. Credential
// sources are tried in order: explicit credential cache, default cache,
// explicit keytab, default keytab, password. Successful GSSAPI sessions
// are not retained for Reconnect; callers re-run GSSAPIBind after a
// reconnect.
func (c *Connection) GSSAPIBind() error {
	krb := c.Settings.Kerberos
	if krb == nil {
		return &BindError{Diagnostic: "kerberos settings not configured"}
	}

	client, err := newGSSAPIClient(krb)
	if err != nil {
		return &BindError{Diagnostic: fmt.Sprintf("failed to create GSSAPI client: %v", err)}
	}
	defer func() {
		_ = client.DeleteSecContext()
	}()

	spn := krb.SPN
	if spn == "" {
		spn = "ldap/" + c.Settings.Host
	}

	err = c.exec(func(conn *ldap.Conn) error {
		return conn.GSSAPIBind(client, spn, "")
	})
	if err != nil {
		return bindError(err)
	}

	c.log.WithField("spn", spn).Info("bound via GSSAPI")
	return nil
}

func newGSSAPIClient(krb *KerberosSettings) (*gssapi.Client, error) {
	confPath := krb.ConfigPath
	if confPath == "" {
		confPath = "/etc/krb5.conf"
	}
	if !fileExists(confPath) {
		return nil, fmt.Errorf("kerberos configuration file not found at %s", confPath)
	}

	if krb.CCachePath != "" && fileExists(krb.CCachePath) {
		return gssapi.NewClientFromCCache(krb.CCachePath, confPath, krb5client.DisablePAFXFAST(true))
	}
	if ccache := defaultCCachePath(); fileExists(ccache) {
		return gssapi.NewClientFromCCache(ccache, confPath, krb5client.DisablePAFXFAST(true))
	}
	if krb.KeytabPath != "" && fileExists(krb.KeytabPath) {
		return gssapi.NewClientWithKeytab(krb.Username, krb.Realm, krb.KeytabPath, confPath, krb5client.DisablePAFXFAST(true))
	}
	if krb.Username != "" {
		if keytab := defaultKeytabPath(); fileExists(keytab) {
			return gssapi.NewClientWithKeytab(krb.Username, krb.Realm, keytab, confPath, krb5client.DisablePAFXFAST(true))
		}
	}
	if krb.Username != "" && krb.Password != "" {
		return gssapi.NewClientWithPassword(krb.Username, krb.Realm, krb.Password, confPath, krb5client.DisablePAFXFAST(true))
	}

	return nil, fmt.Errorf("no suitable credentials found for kerberos authentication")
}

// defaultCCachePath follows the MIT convention of /tmp/krb5cc_<uid>,
// honoring KRB5CCNAME when set.
func defaultCCachePath() string {
	if env := os.Getenv("KRB5CCNAME"); env != "" {
		if len(env) > 5 && env[:5] == "FILE:" {
			return env[5:]
		}
		return env
	}
	return fmt.Sprintf("/tmp/krb5cc_%d", os.Getuid())
}

func defaultKeytabPath() string {
	if env := os.Getenv("KRB5_KTNAME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".keytab")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
