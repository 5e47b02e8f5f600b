package ldap

import "strings"

// ParentDN returns everything after the first comma, or "" for a
// single-component DN.
func ParentDN(dn string) string {
	if i := strings.Index(dn, ","); i >= 0 {
		return dn[i+1:]
	}
	return ""
}

// RDN returns the first DN component.
func RDN(dn string) string {
	if i := strings.Index(dn, ","); i >= 0 {
		return dn[:i]
	}
	return dn
}

// Depth counts DN components; the empty DN has depth 0.
func Depth(dn string) int {
	if dn == "" {
		return 0
	}
	return strings.Count(dn, ",") + 1
}

// IsAncestor reports whether ancestor is a strict ancestor of dn,
// comparing case-insensitively. The empty DN is an ancestor of everything.
func IsAncestor(dn, ancestor string) bool {
	if ancestor == "" {
		return true
	}
	dnLower := strings.ToLower(dn)
	ancestorLower := strings.ToLower(ancestor)
	return strings.HasSuffix(dnLower, ancestorLower) && len(dnLower) > len(ancestorLower)
}

// RDNDisplayName returns the value part of the first DN component, e.g.
// "admin" for "cn=admin,dc=example,dc=com".
func RDNDisplayName(dn string) string {
	r := RDN(dn)
	if i := strings.Index(r, "="); i >= 0 {
		return r[i+1:]
	}
	return r
}
