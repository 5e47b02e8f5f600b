package trust

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	fp := Fingerprint([]byte("hello world"))
	assert.Len(t, fp, 32*3-1)
	assert.Equal(t,
		"B9:4D:27:B9:93:4D:3E:08:A5:2E:52:D7:DA:7D:AB:FA:C4:84:EF:E3:7A:53:80:EE:90:88:F7:AC:E2:EF:CD:E9",
		fp)
}

func TestStoreSession(t *testing.T) {
	store := NewStore(nil)
	assert.False(t, store.IsTrusted("AA:BB"))
	store.TrustSession("AA:BB")
	assert.True(t, store.IsTrusted("AA:BB"))
	assert.Empty(t, store.Entries(), "session trust must not be persisted")
}

func TestStoreAlways(t *testing.T) {
	store := NewStore(nil)
	store.TrustAlways(Entry{
		Host:              "ldap.example.com",
		Port:              636,
		FingerprintSHA256: "CC:DD",
		Subject:           "CN=ldap.example.com",
	})
	assert.True(t, store.IsTrusted("CC:DD"))
	assert.Len(t, store.Entries(), 1)
}

func TestStoreSeededFromEntries(t *testing.T) {
	store := NewStore([]Entry{{
		Host:              "ldap.example.com",
		Port:              636,
		FingerprintSHA256: "EE:FF",
		Subject:           "CN=ldap.example.com",
	}})
	assert.True(t, store.IsTrusted("EE:FF"))
	assert.False(t, store.IsTrusted("00:11"))
}

func TestCaptureSlotTakeClears(t *testing.T) {
	var slot CaptureSlot

	_, ok := slot.Take()
	assert.False(t, ok)

	slot.Set(CertificateInfo{FingerprintSHA256: "AB:CD"})
	info, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, "AB:CD", info.FingerprintSHA256)

	_, ok = slot.Take()
	assert.False(t, ok, "Take must clear the slot")
}

// selfSignedCert issues a throwaway certificate for host and returns its DER bytes.
func selfSignedCert(t *testing.T, host string) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: host},
		DNSNames:     []string{host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func TestVerifierRejectsAndCaptures(t *testing.T) {
	der := selfSignedCert(t, "ldap.example.com")

	store := NewStore(nil)
	var slot CaptureSlot
	v := NewVerifier(store, &slot, "ldap.example.com", 636)
	v.Roots = x509.NewCertPool() // empty: nothing can chain

	err := v.Verify([][]byte{der}, nil)
	require.Error(t, err)

	info, ok := slot.Take()
	require.True(t, ok, "rejection must capture certificate details")
	assert.Equal(t, Fingerprint(der), info.FingerprintSHA256)
	assert.Equal(t, "ldap.example.com", info.Host)
	assert.Equal(t, 636, info.Port)
	assert.Contains(t, info.Subject, "ldap.example.com")
}

func TestVerifierAcceptsTrustedFingerprint(t *testing.T) {
	der := selfSignedCert(t, "ldap.example.com")
	fp := Fingerprint(der)

	store := NewStore(nil)
	var slot CaptureSlot
	v := NewVerifier(store, &slot, "ldap.example.com", 636)
	v.Roots = x509.NewCertPool()

	store.TrustAlways(Entry{FingerprintSHA256: fp, Host: "ldap.example.com", Port: 636})

	err := v.Verify([][]byte{der}, nil)
	assert.NoError(t, err, "trusted fingerprint must bypass chain validation")
	_, ok := slot.Take()
	assert.False(t, ok, "nothing should be captured on acceptance")
}

func TestVerifierAcceptsSessionTrust(t *testing.T) {
	der := selfSignedCert(t, "ldap.example.com")

	store := NewStore(nil)
	var slot CaptureSlot
	v := NewVerifier(store, &slot, "ldap.example.com", 636)
	v.Roots = x509.NewCertPool()

	require.Error(t, v.Verify([][]byte{der}, nil))
	slot.Take()

	store.TrustSession(Fingerprint(der))
	assert.NoError(t, v.Verify([][]byte{der}, nil))
}

func TestVerifierAcceptsValidChain(t *testing.T) {
	der := selfSignedCert(t, "ldap.example.com")
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	roots := x509.NewCertPool()
	roots.AddCert(cert)

	store := NewStore(nil)
	var slot CaptureSlot
	v := NewVerifier(store, &slot, "ldap.example.com", 636)
	v.Roots = roots

	assert.NoError(t, v.Verify([][]byte{der}, nil))
}

func TestVerifierEmptyChain(t *testing.T) {
	store := NewStore(nil)
	var slot CaptureSlot
	v := NewVerifier(store, &slot, "ldap.example.com", 636)

	assert.Error(t, v.Verify(nil, nil))
}

func TestClientConfig(t *testing.T) {
	store := NewStore(nil)
	var slot CaptureSlot
	cfg := ClientConfig(store, &slot, "ldap.example.com", 636)

	assert.Equal(t, "ldap.example.com", cfg.ServerName)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.NotNil(t, cfg.VerifyPeerCertificate)
	assert.Equal(t, uint16(0x0303), cfg.MinVersion) // TLS 1.2
}

func TestParseCertificateInfoGarbage(t *testing.T) {
	info := ParseCertificateInfo([]byte{0x01, 0x02}, "host", 389)
	assert.Equal(t, "Unknown", info.Subject)
	assert.Equal(t, "Unknown", info.Issuer)
	assert.NotEmpty(t, info.FingerprintSHA256)
}
