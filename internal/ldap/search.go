package ldap

import (
	"github.com/go-ldap/ldap/v3"
	"github.com/sirupsen/logrus"
)

// Scope selects how much of the tree a search covers.
type Scope int

const (
	ScopeBase Scope = iota
	ScopeOneLevel
	ScopeSubtree
)

func (s Scope) ldapScope() int {
	switch s {
	case ScopeBase:
		return ldap.ScopeBaseObject
	case ScopeOneLevel:
		return ldap.ScopeSingleLevel
	default:
		return ldap.ScopeWholeSubtree
	}
}

// Search runs a paged search (RFC 2696) and returns all matching entries.
// Pages are requested sequentially with the configured page size; a failure
// at any page discards what was accumulated and surfaces the error, since a
// partial directory listing is worse than an explicit failure.
func (c *Connection) Search(base string, scope Scope, filter string, attributes []string) ([]*Entry, error) {
	var all []*Entry
	var cookie []byte

	for {
		page, nextCookie, err := c.searchPage(base, scope, filter, attributes, c.Settings.PageSize, cookie)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		c.log.WithFields(logrus.Fields{
			"page_entries": len(page),
			"total":        len(all),
		}).Debug("paged search progress")

		if len(nextCookie) == 0 {
			return all, nil
		}
		cookie = nextCookie
	}
}

// SearchLimited returns at most limit subtree entries using a single paged
// request with page size = limit. The continuation cookie is discarded;
// suited to bounded previews such as autocomplete pickers. A non-positive
// limit returns no entries.
func (c *Connection) SearchLimited(base, filter string, attributes []string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	entries, _, err := c.searchPage(base, ScopeSubtree, filter, attributes, uint32(limit), nil)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// SearchEntry reads a single entry by exact DN. Only user attributes are
// requested; operational attributes are not for editing. Returns nil when
// the DN does not exist as a search result.
func (c *Connection) SearchEntry(dn string) (*Entry, error) {
	entries, err := c.Search(dn, ScopeBase, "(objectClass=*)", []string{"*"})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// SearchChildren lists the immediate children of a DN.
func (c *Connection) SearchChildren(parentDN string) ([]*Entry, error) {
	return c.Search(parentDN, ScopeOneLevel, "(objectClass=*)", []string{"*"})
}

// SearchSubtree searches a whole subtree with the given filter.
func (c *Connection) SearchSubtree(base, filter string, attributes []string) ([]*Entry, error) {
	return c.Search(base, ScopeSubtree, filter, attributes)
}

// searchPage issues one wire request carrying the paging control and
// returns the page's entries plus the server's continuation cookie.
func (c *Connection) searchPage(base string, scope Scope, filter string, attributes []string, pageSize uint32, cookie []byte) ([]*Entry, []byte, error) {
	req := ldap.NewSearchRequest(
		base,
		scope.ldapScope(),
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		attributes,
		[]ldap.Control{&pagingControl{PageSize: pageSize, Cookie: cookie}},
	)

	var result *ldap.SearchResult
	err := c.exec(func(conn *ldap.Conn) error {
		var searchErr error
		result, searchErr = conn.Search(req)
		return searchErr
	})
	if err != nil {
		return nil, nil, &SearchError{Base: base, Err: err}
	}

	entries := make([]*Entry, 0, len(result.Entries))
	for _, raw := range result.Entries {
		entries = append(entries, entryFromSearchResult(raw))
	}
	return entries, pagingCookieFromControls(result.Controls), nil
}
