package ldap

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

// decodeGUID converts a binary Active Directory objectGUID to canonical
// UUID string form. AD stores the first three groups little-endian and the
// last eight bytes big-endian.
func decodeGUID(raw []byte) (string, error) {
	if len(raw) != 16 {
		return "", fmt.Errorf("invalid objectGUID length: expected 16 bytes, got %d", len(raw))
	}

	var std [16]byte
	std[0], std[1], std[2], std[3] = raw[3], raw[2], raw[1], raw[0]
	std[4], std[5] = raw[5], raw[4]
	std[6], std[7] = raw[7], raw[6]
	copy(std[8:], raw[8:])

	id, err := uuid.FromBytes(std[:])
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// encodeGUID converts a canonical UUID string to the mixed-endian byte
// form Active Directory uses, for binary GUID search filters.
func encodeGUID(s string) ([]byte, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid GUID %q: %w", s, err)
	}

	out := make([]byte, 16)
	out[0], out[1], out[2], out[3] = id[3], id[2], id[1], id[0]
	out[4], out[5] = id[5], id[4]
	out[6], out[7] = id[7], id[6]
	copy(out[8:], id[8:])
	return out, nil
}

// GUIDSearchFilter builds the binary-escaped filter Active Directory
// requires for objectGUID lookups.
func GUIDSearchFilter(guid string) (string, error) {
	raw, err := encodeGUID(guid)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(objectGUID=%s)", ldap.EscapeFilter(string(raw))), nil
}
