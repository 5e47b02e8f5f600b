package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/go-ldap/ldap/v3"
)

// ControlTypeRelaxRules is the Relax Rules control OID. Sent with
// criticality true and no value; it asks the server to waive certain
// schema-enforcement checks raised by directory overlays.
const ControlTypeRelaxRules = "1.3.6.1.4.1.4203.666.5.12"

type relaxRulesControl struct{}

var _ ldap.Control = (*relaxRulesControl)(nil)

func (r *relaxRulesControl) GetControlType() string {
	return ControlTypeRelaxRules
}

func (r *relaxRulesControl) Encode() *ber.Packet {
	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Control")
	packet.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString,
		ControlTypeRelaxRules, "Control Type (Relax Rules)"))
	packet.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean,
		true, "Criticality"))
	return packet
}

func (r *relaxRulesControl) String() string {
	return fmt.Sprintf("Relax Rules Control (%s) Criticality: true", ControlTypeRelaxRules)
}

// writeControls returns the controls attached to modify/add/delete
// requests for this session.
func (c *Connection) writeControls() []ldap.Control {
	if c.Settings.RelaxRules {
		return []ldap.Control{&relaxRulesControl{}}
	}
	return nil
}

// Modify applies a prepared modify request body to an entry.
func (c *Connection) Modify(dn string, apply func(req *ldap.ModifyRequest)) error {
	req := ldap.NewModifyRequest(dn, c.writeControls())
	apply(req)

	err := c.exec(func(conn *ldap.Conn) error {
		return conn.Modify(req)
	})
	if err != nil {
		return modifyError("modify", dn, err)
	}
	c.log.WithField("dn", dn).Info("modified entry")
	return nil
}

// ReplaceAttribute replaces all values of an attribute.
func (c *Connection) ReplaceAttribute(dn, attr string, values []string) error {
	return c.Modify(dn, func(req *ldap.ModifyRequest) {
		req.Replace(attr, values)
	})
}

// ReplaceAttributeValue swaps one attribute value for another, leaving
// sibling values untouched.
func (c *Connection) ReplaceAttributeValue(dn, attr, oldValue, newValue string) error {
	return c.Modify(dn, func(req *ldap.ModifyRequest) {
		req.Delete(attr, []string{oldValue})
		req.Add(attr, []string{newValue})
	})
}

// AddAttributeValue adds a value to an attribute.
func (c *Connection) AddAttributeValue(dn, attr, value string) error {
	return c.Modify(dn, func(req *ldap.ModifyRequest) {
		req.Add(attr, []string{value})
	})
}

// DeleteAttributeValue removes one value from an attribute.
func (c *Connection) DeleteAttributeValue(dn, attr, value string) error {
	return c.Modify(dn, func(req *ldap.ModifyRequest) {
		req.Delete(attr, []string{value})
	})
}

// DeleteAttribute removes an attribute and all its values.
func (c *Connection) DeleteAttribute(dn, attr string) error {
	return c.Modify(dn, func(req *ldap.ModifyRequest) {
		req.Delete(attr, nil)
	})
}

// AddEntry creates a new entry with the given attributes.
func (c *Connection) AddEntry(dn string, attributes map[string][]string) error {
	req := ldap.NewAddRequest(dn, c.writeControls())
	for attr, values := range attributes {
		req.Attribute(attr, values)
	}

	err := c.exec(func(conn *ldap.Conn) error {
		return conn.Add(req)
	})
	if err != nil {
		return modifyError("add", dn, err)
	}
	c.log.WithField("dn", dn).Info("added entry")
	return nil
}

// DeleteEntry removes an entry by DN.
func (c *Connection) DeleteEntry(dn string) error {
	req := ldap.NewDelRequest(dn, c.writeControls())

	err := c.exec(func(conn *ldap.Conn) error {
		return conn.Del(req)
	})
	if err != nil {
		return modifyError("delete", dn, err)
	}
	c.log.WithField("dn", dn).Info("deleted entry")
	return nil
}

// modifyError converts a write failure into a ModifyError with the
// server's result code and diagnostic, keeping transport losses
// classifiable for reconnect.
func modifyError(op, dn string, err error) error {
	if IsConnectionError(err) {
		return &ConnectError{Proto: op, Err: err}
	}
	if ldapErr, ok := err.(*ldap.Error); ok {
		return &ModifyError{Op: op, DN: dn, Code: ldapErr.ResultCode, Diagnostic: ldapErr.Err.Error()}
	}
	return &ModifyError{Op: op, DN: dn, Diagnostic: err.Error()}
}
