// Package schema parses RFC 4512 attribute type and object class
// descriptions and answers attribute-legality questions for entry editing.
//
// Definitions are loaded from a server's subschema subentry (see the ldap
// package's DiscoverSchema) and cached in a Cache keyed by lowercase name.
// An attribute or class registered under several aliases points to one
// OID-identified definition.
package schema

import (
	"sort"
	"strings"
)

// Syntax is the semantic category of an attribute value, mapped from the
// attribute type's syntax OID. SyntaxOther carries the raw OID for syntaxes
// outside the known set.
type Syntax struct {
	Kind SyntaxKind
	OID  string // set only for SyntaxOther
}

type SyntaxKind int

const (
	SyntaxString SyntaxKind = iota
	SyntaxDirectoryString
	SyntaxInteger
	SyntaxBoolean
	SyntaxDN
	SyntaxOctetString
	SyntaxGeneralizedTime
	SyntaxTelephoneNumber
	SyntaxOID
	SyntaxOther
)

func (k SyntaxKind) String() string {
	switch k {
	case SyntaxString:
		return "String"
	case SyntaxDirectoryString:
		return "DirectoryString"
	case SyntaxInteger:
		return "Integer"
	case SyntaxBoolean:
		return "Boolean"
	case SyntaxDN:
		return "DN"
	case SyntaxOctetString:
		return "OctetString"
	case SyntaxGeneralizedTime:
		return "GeneralizedTime"
	case SyntaxTelephoneNumber:
		return "TelephoneNumber"
	case SyntaxOID:
		return "OID"
	default:
		return "Other"
	}
}

// AttributeTypeInfo is a parsed attributeTypes schema definition.
type AttributeTypeInfo struct {
	OID                string
	Names              []string
	Description        string
	Syntax             Syntax
	SingleValue        bool
	NoUserModification bool
}

// ObjectClassKind distinguishes abstract, structural and auxiliary classes.
type ObjectClassKind int

const (
	KindStructural ObjectClassKind = iota
	KindAbstract
	KindAuxiliary
)

func (k ObjectClassKind) String() string {
	switch k {
	case KindAbstract:
		return "ABSTRACT"
	case KindAuxiliary:
		return "AUXILIARY"
	default:
		return "STRUCTURAL"
	}
}

// ObjectClassInfo is a parsed objectClasses schema definition.
type ObjectClassInfo struct {
	OID         string
	Names       []string
	Description string
	Superior    string
	Kind        ObjectClassKind
	Must        []string
	May         []string
}

// Cache is a resolved schema snapshot for one connection. Lookup keys are
// lowercase; every alias of a definition maps to the same info value.
// Rebuilt wholesale on each discovery, never updated incrementally.
type Cache struct {
	AttributeTypes map[string]*AttributeTypeInfo
	ObjectClasses  map[string]*ObjectClassInfo
}

// NewCache creates an empty schema cache.
func NewCache() *Cache {
	return &Cache{
		AttributeTypes: make(map[string]*AttributeTypeInfo),
		ObjectClasses:  make(map[string]*ObjectClassInfo),
	}
}

// AddAttributeType registers a definition under all of its aliases.
func (c *Cache) AddAttributeType(at *AttributeTypeInfo) {
	for _, name := range at.Names {
		c.AttributeTypes[strings.ToLower(name)] = at
	}
}

// AddObjectClass registers a definition under all of its aliases.
func (c *Cache) AddObjectClass(oc *ObjectClassInfo) {
	for _, name := range oc.Names {
		c.ObjectClasses[strings.ToLower(name)] = oc
	}
}

// AttributeType looks up an attribute type by name, case-insensitively.
// Returns nil if the schema does not define it.
func (c *Cache) AttributeType(name string) *AttributeTypeInfo {
	return c.AttributeTypes[strings.ToLower(name)]
}

// ObjectClass looks up an object class by name, case-insensitively.
func (c *Cache) ObjectClass(name string) *ObjectClassInfo {
	return c.ObjectClasses[strings.ToLower(name)]
}

// AttributeSyntaxOf returns the syntax of the named attribute, defaulting to
// a plain string when the attribute is unknown.
func (c *Cache) AttributeSyntaxOf(name string) Syntax {
	if at := c.AttributeType(name); at != nil {
		return at.Syntax
	}
	return Syntax{Kind: SyntaxString}
}

// IsSingleValued reports whether the named attribute admits at most one
// value. Unknown attributes are treated as multi-valued.
func (c *Cache) IsSingleValued(name string) bool {
	at := c.AttributeType(name)
	return at != nil && at.SingleValue
}

// AllowedAttributes returns the attribute names an entry with the given
// object classes may carry: the union of MUST and MAY of every class and of
// its superiors, with attributes marked NO-USER-MODIFICATION removed.
// Results are sorted and deduplicated by name.
func (c *Cache) AllowedAttributes(classNames []string) []string {
	collected := make(map[string]struct{})
	for _, name := range classNames {
		c.collectClassAttrs(strings.ToLower(name), collected)
	}

	out := make([]string, 0, len(collected))
	for name := range collected {
		if at := c.AttributeType(name); at != nil && at.NoUserModification {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// collectClassAttrs unions MUST and MAY of a class and walks its superior
// chain. A class whose superior is unknown terminates the walk.
func (c *Cache) collectClassAttrs(lowerName string, into map[string]struct{}) {
	oc := c.ObjectClasses[lowerName]
	if oc == nil {
		return
	}
	for _, a := range oc.Must {
		into[a] = struct{}{}
	}
	for _, a := range oc.May {
		into[a] = struct{}{}
	}
	if oc.Superior != "" {
		c.collectClassAttrs(strings.ToLower(oc.Superior), into)
	}
}

// AllUserAttributes returns the canonical name of every user-modifiable
// attribute type, deduplicated by OID so multi-aliased attributes appear
// once under their first declared alias. Sorted.
func (c *Cache) AllUserAttributes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, at := range c.AttributeTypes {
		if at.NoUserModification {
			continue
		}
		if _, ok := seen[at.OID]; ok {
			continue
		}
		seen[at.OID] = struct{}{}
		if len(at.Names) > 0 {
			out = append(out, at.Names[0])
		}
	}
	sort.Strings(out)
	return out
}

// AllAttributeNames returns every attribute name in the schema, aliases and
// read-only attributes included. Each OID contributes its aliases once.
// Suited to filter autocomplete, where any attribute may appear. Sorted.
func (c *Cache) AllAttributeNames() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, at := range c.AttributeTypes {
		if _, ok := seen[at.OID]; ok {
			continue
		}
		seen[at.OID] = struct{}{}
		out = append(out, at.Names...)
	}
	sort.Strings(out)
	return out
}
