package ldap

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trepidity/loom-ldapbrowser/internal/trust"
)

// Connection is a live directory session with reconnect support. The mutex
// serializes request/response exchanges on the single underlying stream.
type Connection struct {
	mu   sync.Mutex
	conn *ldap.Conn

	Settings ConnectionSettings
	BaseDN   string

	// Retained after a successful simple bind, for Reconnect. Cleared on
	// Disconnect. Anonymous binds retain nothing.
	bindDN       string
	bindPassword string

	trustStore *trust.Store
	captured   *trust.CaptureSlot

	log *logrus.Entry
}

// Connect resolves a transport per the settings' TLS mode and returns a
// session. The trust store may be nil, in which case TLS verification uses
// the platform defaults and no certificate capture happens.
func Connect(settings ConnectionSettings, store *trust.Store) (*Connection, error) {
	if err := settings.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection settings: %w", err)
	}

	log := logrus.WithFields(logrus.Fields{
		"conn_id": uuid.NewString()[:8],
		"host":    settings.Host,
		"port":    settings.Port,
	})

	captured := &trust.CaptureSlot{}
	conn, err := negotiate(settings, store, captured, log)
	if err != nil {
		return nil, err
	}

	return &Connection{
		conn:       conn,
		Settings:   settings,
		BaseDN:     settings.BaseDN,
		trustStore: store,
		captured:   captured,
		log:        log,
	}, nil
}

// CapturedCertificate returns and clears the certificate captured during
// the last failed handshake, if any.
func (c *Connection) CapturedCertificate() (trust.CertificateInfo, bool) {
	return c.captured.Take()
}

// Reconnect re-runs transport negotiation with the original settings,
// installs the new transport and re-binds with retained credentials, or
// anonymously if none were retained.
func (c *Connection) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Info("attempting reconnect")

	conn, err := negotiate(c.Settings, c.trustStore, c.captured, c.log)
	if err != nil {
		return err
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn

	if err := bindConn(conn, c.bindDN, c.bindPassword); err != nil {
		return err
	}
	c.log.Info("reconnected")
	return nil
}

// Disconnect unbinds, closes the transport and clears retained credentials.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bindDN = ""
	c.bindPassword = ""

	if c.conn == nil {
		return nil
	}
	err := c.conn.Unbind()
	c.conn = nil
	return err
}

// exec runs one request/response exchange while holding the session lock.
func (c *Connection) exec(fn func(conn *ldap.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.conn)
}

// connectAttempt is one step of Auto-mode negotiation.
type connectAttempt struct {
	mode TLSMode
	port int
}

// autoAttempts returns the Auto-mode try order: LDAPS (on 636 when the
// configured port is the default 389), StartTLS, plaintext.
func autoAttempts(settings ConnectionSettings) []connectAttempt {
	ldapsPort := settings.Port
	if ldapsPort == 389 {
		ldapsPort = 636
	}
	return []connectAttempt{
		{mode: TLSModeLDAPS, port: ldapsPort},
		{mode: TLSModeStartTLS, port: settings.Port},
		{mode: TLSModeNone, port: settings.Port},
	}
}

// negotiate resolves a transport for the settings' TLS mode.
func negotiate(settings ConnectionSettings, store *trust.Store, captured *trust.CaptureSlot, log *logrus.Entry) (*ldap.Conn, error) {
	switch settings.TLSMode {
	case TLSModeLDAPS:
		return dialLDAPS(settings, settings.Port, store, captured)
	case TLSModeStartTLS:
		return dialStartTLS(settings, store, captured)
	case TLSModeNone:
		return dialPlain(settings)
	default:
		return autoConnect(settings, store, captured, log)
	}
}

// autoConnect walks the Auto try order. Certificate trust rejections abort
// immediately; they need an operator decision, not another transport. Other
// failures are swallowed and logged, and only total exhaustion is reported.
func autoConnect(settings ConnectionSettings, store *trust.Store, captured *trust.CaptureSlot, log *logrus.Entry) (*ldap.Conn, error) {
	var lastErr error
	for _, attempt := range autoAttempts(settings) {
		var conn *ldap.Conn
		var err error

		switch attempt.mode {
		case TLSModeLDAPS:
			conn, err = dialLDAPS(settings, attempt.port, store, captured)
		case TLSModeStartTLS:
			conn, err = dialStartTLS(settings, store, captured)
		default:
			conn, err = dialPlain(settings)
		}

		if err == nil {
			log.WithFields(logrus.Fields{
				"mode": attempt.mode.Label(),
				"port": attempt.port,
			}).Info("connected")
			return conn, nil
		}

		if certErr, ok := err.(*CertificateNotTrustedError); ok {
			return nil, certErr
		}

		log.WithError(err).WithField("mode", attempt.mode.Label()).Warn("connect attempt failed, trying next mode")
		lastErr = err
	}
	return nil, lastErr
}

func dialLDAPS(settings ConnectionSettings, port int, store *trust.Store, captured *trust.CaptureSlot) (*ldap.Conn, error) {
	url := fmt.Sprintf("ldaps://%s", net.JoinHostPort(settings.Host, fmt.Sprint(port)))
	conn, err := ldap.DialURL(url,
		ldap.DialWithDialer(&net.Dialer{Timeout: settings.Timeout}),
		ldap.DialWithTLSConfig(tlsConfig(settings, port, store, captured)),
	)
	if err != nil {
		return nil, capturedOrConnectError(captured, err, "LDAPS")
	}
	conn.SetTimeout(settings.Timeout)
	return conn, nil
}

func dialStartTLS(settings ConnectionSettings, store *trust.Store, captured *trust.CaptureSlot) (*ldap.Conn, error) {
	conn, err := dialPlainURL(settings, "StartTLS")
	if err != nil {
		return nil, err
	}
	if err := conn.StartTLS(tlsConfig(settings, settings.Port, store, captured)); err != nil {
		_ = conn.Close()
		return nil, capturedOrConnectError(captured, err, "StartTLS")
	}
	return conn, nil
}

func dialPlain(settings ConnectionSettings) (*ldap.Conn, error) {
	return dialPlainURL(settings, "plain LDAP")
}

func dialPlainURL(settings ConnectionSettings, proto string) (*ldap.Conn, error) {
	url := fmt.Sprintf("ldap://%s", net.JoinHostPort(settings.Host, fmt.Sprint(settings.Port)))
	conn, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: settings.Timeout}))
	if err != nil {
		return nil, &ConnectError{Proto: proto, Err: err}
	}
	conn.SetTimeout(settings.Timeout)
	return conn, nil
}

// tlsConfig routes verification through the trust store when one is
// supplied; otherwise standard platform verification applies.
func tlsConfig(settings ConnectionSettings, port int, store *trust.Store, captured *trust.CaptureSlot) *tls.Config {
	if store != nil {
		return trust.ClientConfig(store, captured, settings.Host, port)
	}
	return &tls.Config{
		ServerName: settings.Host,
		MinVersion: tls.VersionTLS12,
	}
}

// capturedOrConnectError prefers the certificate captured during a failed
// handshake over the generic dial error.
func capturedOrConnectError(captured *trust.CaptureSlot, err error, proto string) error {
	if info, ok := captured.Take(); ok {
		return &CertificateNotTrustedError{Info: info}
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &TimeoutError{Op: proto + " connect"}
	}
	return &ConnectError{Proto: proto, Err: err}
}

// bindConn issues the retained-credential bind used by Reconnect.
func bindConn(conn *ldap.Conn, dn, password string) error {
	if dn == "" && password == "" {
		if err := conn.UnauthenticatedBind(""); err != nil {
			return bindError(err)
		}
		return nil
	}
	if err := conn.Bind(dn, password); err != nil {
		return bindError(err)
	}
	return nil
}

// bindError converts a go-ldap bind failure into a BindError carrying the
// server's result code and diagnostic text.
func bindError(err error) error {
	if ldapErr, ok := err.(*ldap.Error); ok {
		return &BindError{Code: ldapErr.ResultCode, Diagnostic: ldapErr.Err.Error()}
	}
	if IsConnectionError(err) {
		return &ConnectError{Proto: "bind", Err: err}
	}
	return &BindError{Diagnostic: err.Error()}
}
