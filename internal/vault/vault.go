// Package vault stores profile passwords in a single encrypted file
// protected by a master password.
//
// The file layout is fixed for interoperability with existing vaults:
// 4-byte magic, 1-byte version, 32-byte salt, 12-byte nonce, 4-byte
// big-endian ciphertext length, ciphertext. The key is derived with
// Argon2id and the payload sealed with ChaCha20-Poly1305; the plaintext is
// a JSON map of profile name to password.
package vault

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	version = 0x01

	saltLen  = 32
	nonceLen = 12
	keyLen   = 32

	headerLen = 4 + 1 + saltLen + nonceLen + 4

	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 1
)

var magic = []byte("LMVT")

// Error reports a vault failure. Decryption failures deliberately carry one
// generic message so a wrong master password cannot be told apart from a
// corrupted file.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vault: %s: %v", e.Message, e.Err)
	}
	return "vault: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Vault is an open, decrypted credential store. Mutators re-encrypt and
// rewrite the whole file; there is no incremental append. Passwords are
// held as byte buffers so Close can wipe them. Not safe for concurrent
// use.
type Vault struct {
	path    string
	salt    [saltLen]byte
	key     []byte
	entries map[string][]byte
}

// Create generates a fresh salt, derives the master key and persists an
// empty vault at path.
func Create(path, masterPassword string) (*Vault, error) {
	v := &Vault{
		path:    path,
		entries: make(map[string][]byte),
	}
	if _, err := rand.Read(v.salt[:]); err != nil {
		return nil, &Error{Message: "failed to generate salt", Err: err}
	}
	v.key = deriveKey(masterPassword, v.salt[:])
	if err := v.save(); err != nil {
		return nil, err
	}
	return v, nil
}

// Open reads and decrypts an existing vault. Wrong passwords, flipped
// ciphertext bits and tag mismatches all produce the same error.
func Open(path, masterPassword string) (*Vault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: "failed to read vault file", Err: err}
	}
	if len(data) < headerLen {
		return nil, &Error{Message: "vault file is too small"}
	}
	if string(data[0:4]) != string(magic) {
		return nil, &Error{Message: "not a valid vault file (bad magic)"}
	}
	if data[4] != version {
		return nil, &Error{Message: fmt.Sprintf("unsupported vault version: %d", data[4])}
	}

	v := &Vault{path: path}
	copy(v.salt[:], data[5:5+saltLen])
	nonce := data[5+saltLen : 5+saltLen+nonceLen]
	ctLen := binary.BigEndian.Uint32(data[5+saltLen+nonceLen : headerLen])
	if uint64(len(data)) < uint64(headerLen)+uint64(ctLen) {
		return nil, &Error{Message: "vault file is truncated"}
	}
	ciphertext := data[headerLen : headerLen+int(ctLen)]

	v.key = deriveKey(masterPassword, v.salt[:])

	aead, err := chacha20poly1305.New(v.key)
	if err != nil {
		return nil, &Error{Message: "cipher init failed", Err: err}
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		zero(v.key)
		return nil, &Error{Message: "wrong password or corrupted vault"}
	}
	var decoded map[string]string
	if err := json.Unmarshal(plaintext, &decoded); err != nil {
		zero(v.key)
		return nil, &Error{Message: "failed to parse vault data", Err: err}
	}
	zero(plaintext)

	v.entries = make(map[string][]byte, len(decoded))
	for name, password := range decoded {
		v.entries[name] = []byte(password)
	}
	return v, nil
}

// Exists reports whether a vault file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DefaultPath returns the conventional vault location under the user's
// config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "loom-ldapbrowser", "vault.dat")
}

// Get returns the stored password for a profile, wrapped so the caller
// can Destroy its copy independently of the vault's own buffer.
func (v *Vault) Get(profileName string) (*Secret, bool) {
	password, ok := v.entries[profileName]
	if !ok {
		return nil, false
	}
	return NewSecret(string(password)), true
}

// Set stores a password for a profile and persists the vault. An existing
// password for the profile is wiped before replacement.
func (v *Vault) Set(profileName, password string) error {
	zero(v.entries[profileName])
	v.entries[profileName] = []byte(password)
	return v.save()
}

// Remove wipes and deletes a profile's password and persists the vault.
func (v *Vault) Remove(profileName string) error {
	zero(v.entries[profileName])
	delete(v.entries, profileName)
	return v.save()
}

// Rename moves a profile's password to a new key. A missing old name is a
// no-op.
func (v *Vault) Rename(oldName, newName string) error {
	password, ok := v.entries[oldName]
	if !ok {
		return nil
	}
	delete(v.entries, oldName)
	v.entries[newName] = password
	return v.save()
}

// Profiles returns the profile names with stored passwords.
func (v *Vault) Profiles() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	return names
}

// Close wipes the derived key and all decrypted passwords from memory. The
// vault is unusable afterwards.
func (v *Vault) Close() {
	zero(v.key)
	v.key = nil
	for name, password := range v.entries {
		zero(password)
		delete(v.entries, name)
	}
}

// save encrypts the entry map with a fresh nonce and rewrites the file.
// The JSON payload is a map of profile name to password string, so the
// on-disk format is independent of the in-memory buffer representation.
func (v *Vault) save() error {
	encoded := make(map[string]string, len(v.entries))
	for name, password := range v.entries {
		encoded[name] = string(password)
	}
	plaintext, err := json.Marshal(encoded)
	if err != nil {
		return &Error{Message: "failed to serialize vault", Err: err}
	}
	defer zero(plaintext)

	aead, err := chacha20poly1305.New(v.key)
	if err != nil {
		return &Error{Message: "cipher init failed", Err: err}
	}

	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return &Error{Message: "failed to generate nonce", Err: err}
	}
	ciphertext := aead.Seal(nil, nonce[:], plaintext, nil)

	buf := make([]byte, 0, headerLen+len(ciphertext))
	buf = append(buf, magic...)
	buf = append(buf, version)
	buf = append(buf, v.salt[:]...)
	buf = append(buf, nonce[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(ciphertext)))
	buf = append(buf, ciphertext...)

	if dir := filepath.Dir(v.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &Error{Message: "failed to create vault directory", Err: err}
		}
	}
	if err := os.WriteFile(v.path, buf, 0o600); err != nil {
		return &Error{Message: "failed to write vault", Err: err}
	}
	if runtime.GOOS != "windows" {
		_ = os.Chmod(v.path, 0o600)
	}
	return nil
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
