package schema

import "strings"

// ParseAttributeType parses one RFC 4512 attributeTypes description, e.g.
//
//	( 2.5.4.3 NAME 'cn' DESC 'Common Name' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15{64} )
//
// Returns nil when the definition is not parenthesized or has no leading OID.
func ParseAttributeType(definition string) *AttributeTypeInfo {
	inner, ok := stripParens(definition)
	if !ok {
		return nil
	}

	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return nil
	}

	syntax := Syntax{Kind: SyntaxString}
	if oid, ok := parseUnquotedField(inner, "SYNTAX"); ok {
		syntax = mapSyntaxOID(oid)
	}

	return &AttributeTypeInfo{
		OID:                fields[0],
		Names:              parseNames(inner),
		Description:        parseQuotedField(inner, "DESC"),
		Syntax:             syntax,
		SingleValue:        strings.Contains(inner, "SINGLE-VALUE"),
		NoUserModification: strings.Contains(inner, "NO-USER-MODIFICATION"),
	}
}

// ParseObjectClass parses one RFC 4512 objectClasses description. Returns
// nil when the definition is not parenthesized or has no leading OID.
func ParseObjectClass(definition string) *ObjectClassInfo {
	inner, ok := stripParens(definition)
	if !ok {
		return nil
	}

	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return nil
	}

	kind := KindStructural
	switch {
	case strings.Contains(inner, "ABSTRACT"):
		kind = KindAbstract
	case strings.Contains(inner, "AUXILIARY"):
		kind = KindAuxiliary
	}

	superior, _ := parseUnquotedField(inner, "SUP")

	return &ObjectClassInfo{
		OID:         fields[0],
		Names:       parseNames(inner),
		Description: parseQuotedField(inner, "DESC"),
		Superior:    superior,
		Kind:        kind,
		Must:        parseAttrList(inner, "MUST"),
		May:         parseAttrList(inner, "MAY"),
	}
}

func stripParens(definition string) (string, bool) {
	s := strings.TrimSpace(definition)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

// parseNames handles both NAME 'single' and NAME ( 'alias1' 'alias2' ).
func parseNames(s string) []string {
	pos := strings.Index(s, "NAME")
	if pos < 0 {
		return nil
	}
	rest := strings.TrimLeft(s[pos+len("NAME"):], " ")

	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return nil
		}
		var names []string
		for _, part := range strings.Split(rest[1:end], "'") {
			if strings.TrimSpace(part) != "" {
				names = append(names, part)
			}
		}
		return names
	}

	if strings.HasPrefix(rest, "'") {
		rest = rest[1:]
		if end := strings.Index(rest, "'"); end >= 0 {
			return []string{rest[:end]}
		}
	}
	return nil
}

// parseQuotedField extracts KEYWORD 'value'. Empty string when absent.
func parseQuotedField(s, keyword string) string {
	pattern := keyword + " '"
	pos := strings.Index(s, pattern)
	if pos < 0 {
		return ""
	}
	rest := s[pos+len(pattern):]
	end := strings.Index(rest, "'")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// parseUnquotedField extracts KEYWORD value, stripping any {length}
// constraint braces around the value.
func parseUnquotedField(s, keyword string) (string, bool) {
	pattern := keyword + " "
	pos := strings.Index(s, pattern)
	if pos < 0 {
		return "", false
	}
	rest := strings.TrimLeft(s[pos+len(pattern):], " ")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	val := strings.Trim(fields[0], "{}")
	if val == "" {
		return "", false
	}
	return val, true
}

// parseAttrList extracts KEYWORD ( a $ b $ c ) or the single bare form
// KEYWORD a.
func parseAttrList(s, keyword string) []string {
	pattern := keyword + " "
	pos := strings.Index(s, pattern)
	if pos < 0 {
		return nil
	}
	rest := strings.TrimLeft(s[pos+len(pattern):], " ")

	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return nil
		}
		var attrs []string
		for _, part := range strings.Split(rest[1:end], "$") {
			if name := strings.TrimSpace(part); name != "" {
				attrs = append(attrs, name)
			}
		}
		return attrs
	}

	if fields := strings.Fields(rest); len(fields) > 0 {
		return []string{fields[0]}
	}
	return nil
}

// mapSyntaxOID maps an attribute syntax OID to its semantic category.
// A trailing {length} constraint is stripped before matching.
func mapSyntaxOID(oid string) Syntax {
	if i := strings.Index(oid, "{"); i >= 0 {
		oid = oid[:i]
	}
	switch oid {
	case "1.3.6.1.4.1.1466.115.121.1.15":
		return Syntax{Kind: SyntaxDirectoryString}
	case "1.3.6.1.4.1.1466.115.121.1.26", // IA5String
		"1.3.6.1.4.1.1466.115.121.1.44", // PrintableString
		"1.3.6.1.4.1.1466.115.121.1.36": // NumericString
		return Syntax{Kind: SyntaxString}
	case "1.3.6.1.4.1.1466.115.121.1.27":
		return Syntax{Kind: SyntaxInteger}
	case "1.3.6.1.4.1.1466.115.121.1.7":
		return Syntax{Kind: SyntaxBoolean}
	case "1.3.6.1.4.1.1466.115.121.1.12":
		return Syntax{Kind: SyntaxDN}
	case "1.3.6.1.4.1.1466.115.121.1.40", // OctetString
		"1.3.6.1.4.1.1466.115.121.1.5": // Binary
		return Syntax{Kind: SyntaxOctetString}
	case "1.3.6.1.4.1.1466.115.121.1.24":
		return Syntax{Kind: SyntaxGeneralizedTime}
	case "1.3.6.1.4.1.1466.115.121.1.50":
		return Syntax{Kind: SyntaxTelephoneNumber}
	case "1.3.6.1.4.1.1466.115.121.1.38":
		return Syntax{Kind: SyntaxOID}
	default:
		return Syntax{Kind: SyntaxOther, OID: oid}
	}
}
