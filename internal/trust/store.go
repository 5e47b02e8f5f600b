// Package trust decides whether LDAP server certificates are acceptable.
//
// Directory servers frequently present self-signed or internal-CA
// certificates. The store records operator trust decisions keyed by the
// SHA-256 fingerprint of the leaf certificate, either permanently (persisted
// by the caller) or for the lifetime of the process.
package trust

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// CertificateInfo describes a server certificate presented during a TLS
// handshake, extracted for display to the operator.
type CertificateInfo struct {
	Host              string
	Port              int
	Subject           string
	Issuer            string
	NotBefore         string
	NotAfter          string
	FingerprintSHA256 string
}

func (ci CertificateInfo) String() string {
	return fmt.Sprintf("%s:%d subject=%s issuer=%s fingerprint=%s",
		ci.Host, ci.Port, ci.Subject, ci.Issuer, ci.FingerprintSHA256)
}

// Entry is a persistable record of a permanently trusted certificate.
type Entry struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	FingerprintSHA256 string `json:"fingerprint_sha256"`
	Subject           string `json:"subject"`
}

// Store holds certificate trust decisions. Permanent entries survive across
// runs (the caller persists them via Entries); session entries live only for
// the process lifetime. Safe for concurrent use by multiple connections.
type Store struct {
	mu      sync.RWMutex
	always  map[string]Entry
	session map[string]struct{}
}

// NewStore creates a trust store seeded with previously persisted entries.
func NewStore(entries []Entry) *Store {
	always := make(map[string]Entry, len(entries))
	for _, e := range entries {
		always[e.FingerprintSHA256] = e
	}
	return &Store{
		always:  always,
		session: make(map[string]struct{}),
	}
}

// IsTrusted reports whether a fingerprint has been trusted, either
// permanently or for this session.
func (s *Store) IsTrusted(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.always[fingerprint]; ok {
		return true
	}
	_, ok := s.session[fingerprint]
	return ok
}

// TrustAlways records a permanent trust decision. The caller is expected to
// persist the updated Entries.
func (s *Store) TrustAlways(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.always[e.FingerprintSHA256] = e
}

// TrustSession trusts a fingerprint for the remainder of this process only.
func (s *Store) TrustSession(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session[fingerprint] = struct{}{}
}

// Entries returns the permanent trust entries for persistence.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.always))
	for _, e := range s.always {
		out = append(out, e)
	}
	return out
}

// Fingerprint computes the SHA-256 fingerprint of DER-encoded certificate
// bytes as colon-separated uppercase hex ("AB:CD:...").
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
