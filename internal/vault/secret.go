package vault

// Secret owns a password's backing bytes so they can be wiped when no
// longer needed. Callers hand the value to a bind and then Destroy it.
type Secret struct {
	data []byte
}

// NewSecret copies value into a wipeable buffer.
func NewSecret(value string) *Secret {
	return &Secret{data: []byte(value)}
}

// String exposes the secret value. Do not retain the result past Destroy.
func (s *Secret) String() string {
	if s == nil {
		return ""
	}
	return string(s.data)
}

// Len returns the secret length in bytes.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Destroy zeroizes the backing buffer. Safe to call more than once.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	zero(s.data)
	s.data = nil
}
