package trust

import (
	"crypto/tls"
	"crypto/x509"
	"sync"
	"time"
)

// CaptureSlot is a lock-guarded single-value mailbox. The verifier writes the
// rejected certificate's details into it during a failed handshake; the
// connection layer takes the value afterwards to present it to the operator.
// One writer and one reader per handshake attempt.
type CaptureSlot struct {
	mu   sync.Mutex
	info *CertificateInfo
}

// Set stores the certificate details of a rejected handshake, replacing any
// previous value.
func (c *CaptureSlot) Set(info CertificateInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = &info
}

// Take returns the captured certificate details and clears the slot.
func (c *CaptureSlot) Take() (CertificateInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return CertificateInfo{}, false
	}
	info := *c.info
	c.info = nil
	return info, true
}

// Verifier checks a presented certificate chain against the trust store
// first, then falls back to standard chain validation against the platform
// root store. On rejection it captures the leaf's details into the slot
// before propagating the error.
type Verifier struct {
	Store    *Store
	Captured *CaptureSlot
	Host     string
	Port     int

	// Roots overrides the platform root pool; nil means system roots.
	Roots *x509.CertPool
	// Now overrides the validation time; nil means time.Now.
	Now func() time.Time
}

// NewVerifier creates a verifier for a single host:port handshake target.
func NewVerifier(store *Store, captured *CaptureSlot, host string, port int) *Verifier {
	return &Verifier{
		Store:    store,
		Captured: captured,
		Host:     host,
		Port:     port,
	}
}

// Verify implements the tls.Config.VerifyPeerCertificate contract: rawCerts
// holds the DER bytes of the presented chain, leaf first.
func (v *Verifier) Verify(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return x509.CertificateInvalidError{Reason: x509.NotAuthorizedToSign}
	}

	fingerprint := Fingerprint(rawCerts[0])
	if v.Store.IsTrusted(fingerprint) {
		return nil
	}

	leaf, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		v.Captured.Set(unparsedCertInfo(rawCerts[0], v.Host, v.Port))
		return err
	}

	intermediates := x509.NewCertPool()
	for _, raw := range rawCerts[1:] {
		if cert, err := x509.ParseCertificate(raw); err == nil {
			intermediates.AddCert(cert)
		}
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	opts := x509.VerifyOptions{
		DNSName:       v.Host,
		Roots:         v.Roots,
		Intermediates: intermediates,
		CurrentTime:   now(),
	}
	if _, err := leaf.Verify(opts); err != nil {
		v.Captured.Set(ParseCertificateInfo(rawCerts[0], v.Host, v.Port))
		return err
	}
	return nil
}

// ClientConfig builds a tls.Config that routes certificate verification
// through a Verifier backed by the given store and capture slot.
//
// InsecureSkipVerify disables only the TLS stack's built-in verification;
// VerifyPeerCertificate performs the actual check and fails closed.
func ClientConfig(store *Store, captured *CaptureSlot, host string, port int) *tls.Config {
	verifier := NewVerifier(store, captured, host, port)
	return &tls.Config{
		ServerName:            host,
		MinVersion:            tls.VersionTLS12,
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifier.Verify,
	}
}

// ParseCertificateInfo extracts display details from DER certificate bytes.
func ParseCertificateInfo(der []byte, host string, port int) CertificateInfo {
	info := unparsedCertInfo(der, host, port)
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return info
	}
	info.Subject = cert.Subject.String()
	info.Issuer = cert.Issuer.String()
	info.NotBefore = cert.NotBefore.Format(time.RFC1123)
	info.NotAfter = cert.NotAfter.Format(time.RFC1123)
	return info
}

func unparsedCertInfo(der []byte, host string, port int) CertificateInfo {
	return CertificateInfo{
		Host:              host,
		Port:              port,
		Subject:           "Unknown",
		Issuer:            "Unknown",
		NotBefore:         "Unknown",
		NotAfter:          "Unknown",
		FingerprintSHA256: Fingerprint(der),
	}
}
