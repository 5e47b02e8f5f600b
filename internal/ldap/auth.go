package ldap

import (
	"github.com/go-ldap/ldap/v3"
)

// SimpleBind authenticates with a DN and password. On success the
// credentials are retained for Reconnect. An empty DN and password pair is
// routed to AnonymousBind instead.
func (c *Connection) SimpleBind(bindDN, password string) error {
	if bindDN == "" && password == "" {
		return c.AnonymousBind()
	}

	err := c.exec(func(conn *ldap.Conn) error {
		return conn.Bind(bindDN, password)
	})
	if err != nil {
		return bindError(err)
	}

	c.mu.Lock()
	c.bindDN = bindDN
	c.bindPassword = password
	c.mu.Unlock()

	c.log.WithField("bind_dn", bindDN).Info("bound")
	return nil
}

// AnonymousBind establishes an unauthenticated session. No credentials are
// retained; a later Reconnect re-binds anonymously.
func (c *Connection) AnonymousBind() error {
	err := c.exec(func(conn *ldap.Conn) error {
		return conn.UnauthenticatedBind("")
	})
	if err != nil {
		return bindError(err)
	}
	c.log.Info("bound anonymously")
	return nil
}
