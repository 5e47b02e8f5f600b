package ldap

import (
	"sort"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Entry is a directory entry: its DN plus attribute values as strings.
// Binary Active Directory attributes (objectSid, objectGUID) are decoded to
// their display forms during conversion.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

// NewEntry creates an entry from a DN and attribute map.
func NewEntry(dn string, attributes map[string][]string) *Entry {
	if attributes == nil {
		attributes = make(map[string][]string)
	}
	return &Entry{DN: dn, Attributes: attributes}
}

// entryFromSearchResult converts a library search entry, decoding known
// binary attributes.
func entryFromSearchResult(raw *ldap.Entry) *Entry {
	attrs := make(map[string][]string, len(raw.Attributes))
	for _, attr := range raw.Attributes {
		switch {
		case strings.EqualFold(attr.Name, "objectSid"):
			attrs[attr.Name] = decodeRawValues(attr, decodeSID)
		case strings.EqualFold(attr.Name, "objectGUID"):
			attrs[attr.Name] = decodeRawValues(attr, decodeGUID)
		default:
			attrs[attr.Name] = append([]string(nil), attr.Values...)
		}
	}
	return &Entry{DN: raw.DN, Attributes: attrs}
}

// decodeRawValues runs a binary decoder over each raw value, falling back
// to the string form when decoding fails.
func decodeRawValues(attr *ldap.EntryAttribute, decode func([]byte) (string, error)) []string {
	out := make([]string, 0, len(attr.ByteValues))
	for i, raw := range attr.ByteValues {
		if s, err := decode(raw); err == nil {
			out = append(out, s)
			continue
		}
		if i < len(attr.Values) {
			out = append(out, attr.Values[i])
		}
	}
	return out
}

// FirstValue returns the first value of an attribute, or "" when absent.
func (e *Entry) FirstValue(attr string) string {
	if vals, ok := e.Attributes[attr]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// RDN returns the first DN component.
func (e *Entry) RDN() string {
	return RDN(e.DN)
}

// ObjectClasses returns the entry's objectClass values.
func (e *Entry) ObjectClasses() []string {
	for name, vals := range e.Attributes {
		if strings.EqualFold(name, "objectClass") {
			return vals
		}
	}
	return nil
}

// AttributeNames returns the entry's attribute names, sorted.
func (e *Entry) AttributeNames() []string {
	names := make([]string, 0, len(e.Attributes))
	for name := range e.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
