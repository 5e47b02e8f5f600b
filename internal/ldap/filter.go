package ldap

import (
	"fmt"
	"strings"
)

// ValidateFilter checks a string is a well-formed RFC 4515 search filter:
//
//	filter     = "(" filtercomp ")"
//	filtercomp = and / or / not / item
//	and        = "&" filterlist
//	or         = "|" filterlist
//	not        = "!" filter
//	filterlist = 1*filter
//	item       = attr filtertype value
//	filtertype = "=" / "~=" / ">=" / "<="
func ValidateFilter(filter string) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return fmt.Errorf("filter cannot be empty")
	}

	end, err := parseFilter(filter, 0)
	if err != nil {
		return err
	}
	if end != len(filter) {
		return fmt.Errorf("unexpected characters after filter at position %d", end+1)
	}
	return nil
}

// parseFilter consumes "(" filtercomp ")" starting at pos and returns the
// position after the closing paren.
func parseFilter(input string, pos int) (int, error) {
	if pos >= len(input) || input[pos] != '(' {
		return 0, fmt.Errorf("expected '(' at position %d", pos+1)
	}

	inner := pos + 1
	if inner >= len(input) {
		return 0, fmt.Errorf("unexpected end of filter after '(' at position %d", pos+1)
	}

	var end int
	var err error
	switch input[inner] {
	case '&':
		end, err = parseFilterList(input, inner+1, '&')
	case '|':
		end, err = parseFilterList(input, inner+1, '|')
	case '!':
		end, err = parseFilter(input, inner+1)
	default:
		end, err = parseItem(input, inner)
	}
	if err != nil {
		return 0, err
	}

	if end >= len(input) || input[end] != ')' {
		return 0, fmt.Errorf("expected ')' at position %d", end+1)
	}
	return end + 1, nil
}

func parseFilterList(input string, pos int, op byte) (int, error) {
	if pos >= len(input) || input[pos] != '(' {
		return 0, fmt.Errorf("empty filter list in '%c' operator at position %d", op, pos+1)
	}
	cur := pos
	for cur < len(input) && input[cur] == '(' {
		end, err := parseFilter(input, cur)
		if err != nil {
			return 0, err
		}
		cur = end
	}
	return cur, nil
}

// parseItem consumes attr filtertype value, stopping just before the
// closing paren. Attribute names admit alphanumerics, hyphen, period and
// semicolon (attribute options such as ;binary).
func parseItem(input string, pos int) (int, error) {
	cur := pos
	for cur < len(input) && isAttrChar(input[cur]) {
		cur++
	}
	if cur == pos {
		return 0, fmt.Errorf("expected attribute name after '(' at position %d", pos+1)
	}
	if cur >= len(input) {
		return 0, fmt.Errorf("expected comparison operator (=, ~=, >=, <=) after attribute name")
	}

	switch input[cur] {
	case '=':
		cur++
	case '~', '>', '<':
		if cur+1 >= len(input) || input[cur+1] != '=' {
			return 0, fmt.Errorf("expected comparison operator (=, ~=, >=, <=) after attribute name")
		}
		cur += 2
	default:
		return 0, fmt.Errorf("expected comparison operator (=, ~=, >=, <=) after attribute name")
	}

	// Value runs to the closing paren; backslash escapes any character.
	for cur < len(input) && input[cur] != ')' {
		if input[cur] == '\\' && cur+1 < len(input) {
			cur += 2
			continue
		}
		cur++
	}
	return cur, nil
}

func isAttrChar(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '-' || b == '.' || b == ';'
}

// DetectAttributeContext reports whether the cursor (at end of input) sits
// in attribute-name position of a filter being typed, returning the
// partial attribute text for autocomplete. Returns ok=false in value
// position or outside any open paren.
func DetectAttributeContext(input string) (partial string, ok bool) {
	var stack []int
	for i, ch := range input {
		switch ch {
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) == 0 {
		return "", false
	}

	afterParen := input[stack[len(stack)-1]+1:]
	if strings.ContainsAny(afterParen, "=~<>") {
		return "", false
	}

	return strings.TrimLeft(afterParen, "&|!"), true
}
