package ldap

import (
	"strings"
)

// ServerType classifies the directory server product. Advisory only; it
// informs display and feature hints and never gates protocol behavior.
type ServerType int

const (
	ServerTypeUnknown ServerType = iota
	ServerTypeActiveDirectory
	ServerTypeOpenLDAP
	ServerTypeEDirectory
	ServerTypeOpenDS
	ServerTypeRadiantLogic
	ServerType389Directory
)

func (t ServerType) String() string {
	switch t {
	case ServerTypeActiveDirectory:
		return "Active Directory"
	case ServerTypeOpenLDAP:
		return "OpenLDAP"
	case ServerTypeEDirectory:
		return "eDirectory"
	case ServerTypeOpenDS:
		return "OpenDS/OpenDJ"
	case ServerTypeRadiantLogic:
		return "Radiant Logic"
	case ServerType389Directory:
		return "389 Directory"
	default:
		return "Unknown"
	}
}

// RootDSE is the information gathered from the server's root entry.
type RootDSE struct {
	NamingContexts      []string
	SubschemaSubentry   string
	VendorName          string
	VendorVersion       string
	SupportedControls   []string
	SupportedExtensions []string
	ServerType          ServerType
	Raw                 map[string][]string
}

var rootDSEAttributes = []string{
	"*",
	"+",
	"namingContexts",
	"subschemaSubentry",
	"vendorName",
	"vendorVersion",
	"supportedControl",
	"supportedExtension",
	"supportedLDAPVersion",
	"forestFunctionality",
	"domainFunctionality",
	"domainControllerFunctionality",
	"isGlobalCatalogReady",
	"schemaNamingContext",
	"configurationNamingContext",
	"rootDomainNamingContext",
	"objectClass",
}

// ReadRootDSE reads the root entry (base DN "") and classifies the server.
// When the session has no base DN yet, the first naming context becomes it.
func (c *Connection) ReadRootDSE() (*RootDSE, error) {
	entries, err := c.Search("", ScopeBase, "(objectClass=*)", rootDSEAttributes)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &SearchError{Base: "", Err: errNoRootDSE}
	}

	attrs := entries[0].Attributes

	dse := &RootDSE{
		NamingContexts:      attrValues(attrs, "namingContexts"),
		SubschemaSubentry:   attrFirst(attrs, "subschemaSubentry"),
		VendorName:          attrFirst(attrs, "vendorName"),
		VendorVersion:       attrFirst(attrs, "vendorVersion"),
		SupportedControls:   attrValues(attrs, "supportedControl"),
		SupportedExtensions: attrValues(attrs, "supportedExtension"),
		Raw:                 attrs,
	}
	dse.ServerType = detectServerType(attrs, dse.VendorName, dse.SupportedControls)
	c.log.WithField("server_type", dse.ServerType.String()).Debug("root DSE read")

	if c.BaseDN == "" && len(dse.NamingContexts) > 0 {
		c.BaseDN = dse.NamingContexts[0]
		c.log.WithField("base_dn", c.BaseDN).Info("auto-discovered base DN")
	}

	return dse, nil
}

var errNoRootDSE = &SchemaError{Message: "no root DSE entry returned"}

// detectServerType inspects root entry attributes for product markers.
func detectServerType(attrs map[string][]string, vendorName string, supportedControls []string) ServerType {
	if hasAttr(attrs, "forestFunctionality") ||
		hasAttr(attrs, "domainFunctionality") ||
		hasAttr(attrs, "domainControllerFunctionality") ||
		hasAttr(attrs, "isGlobalCatalogReady") {
		return ServerTypeActiveDirectory
	}

	if vendorName != "" {
		vn := strings.ToLower(vendorName)
		switch {
		case strings.Contains(vn, "openldap"):
			return ServerTypeOpenLDAP
		case strings.Contains(vn, "novell"), strings.Contains(vn, "netiq"), strings.Contains(vn, "edirectory"):
			return ServerTypeEDirectory
		case strings.Contains(vn, "sun"), strings.Contains(vn, "oracle"),
			strings.Contains(vn, "opends"), strings.Contains(vn, "opendj"), strings.Contains(vn, "forgerock"):
			return ServerTypeOpenDS
		case strings.Contains(vn, "radiant"):
			return ServerTypeRadiantLogic
		case strings.Contains(vn, "389"), strings.Contains(vn, "red hat"), strings.Contains(vn, "fedora"):
			return ServerType389Directory
		}
	}

	for _, oc := range attrValues(attrs, "objectClass") {
		if strings.Contains(strings.ToLower(oc), "openldaprootdse") {
			return ServerTypeOpenLDAP
		}
	}

	for _, ctrl := range supportedControls {
		if strings.HasPrefix(ctrl, "1.2.840.113556.1.4.") {
			return ServerTypeActiveDirectory
		}
	}

	if hasAttr(attrs, "ds-private-naming-contexts") {
		return ServerTypeOpenDS
	}

	return ServerTypeUnknown
}

// attrValues looks up an attribute's values case-insensitively.
func attrValues(attrs map[string][]string, key string) []string {
	for name, vals := range attrs {
		if strings.EqualFold(name, key) {
			return vals
		}
	}
	return nil
}

func attrFirst(attrs map[string][]string, key string) string {
	if vals := attrValues(attrs, key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func hasAttr(attrs map[string][]string, key string) bool {
	for name := range attrs {
		if strings.EqualFold(name, key) {
			return true
		}
	}
	return false
}
