package ldap

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/go-objectsid"
)

// decodeSID converts a binary Active Directory objectSid to its
// S-1-5-21-... string form.
func decodeSID(raw []byte) (string, error) {
	// objectsid.Decode indexes into the buffer without bounds checks;
	// validate the header first. Layout: revision, sub-authority count,
	// 6-byte authority, then 4 bytes per sub-authority.
	if len(raw) < 8 {
		return "", fmt.Errorf("binary SID too short: %d bytes", len(raw))
	}
	subAuthorityCount := int(raw[1])
	if len(raw) < 8+4*subAuthorityCount {
		return "", fmt.Errorf("binary SID truncated: %d bytes for %d sub-authorities",
			len(raw), subAuthorityCount)
	}
	sid := objectsid.Decode(raw)
	return sid.String(), nil
}

// ValidateSIDString checks a string is a plausibly formatted SID.
func ValidateSIDString(s string) error {
	if !strings.HasPrefix(s, "S-") || len(s) < 5 {
		return fmt.Errorf("invalid SID format: %q", s)
	}
	return nil
}
