package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSID(t *testing.T) {
	// revision 1, 4 sub-authorities, authority 5, then 21, 1, 2, 3.
	raw := []byte{
		0x01, 0x04,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
		21, 0, 0, 0,
		1, 0, 0, 0,
		2, 0, 0, 0,
		3, 0, 0, 0,
	}

	s, err := decodeSID(raw)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-21-1-2-3", s)
}

func TestDecodeSIDMalformed(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		_, err := decodeSID([]byte{0x01, 0x00, 0x00})
		assert.Error(t, err)
	})

	t.Run("truncated sub-authorities", func(t *testing.T) {
		// Header claims 4 sub-authorities but only one is present.
		raw := []byte{
			0x01, 0x04,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
			21, 0, 0, 0,
		}
		_, err := decodeSID(raw)
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := decodeSID(nil)
		assert.Error(t, err)
	})
}

func TestValidateSIDString(t *testing.T) {
	assert.NoError(t, ValidateSIDString("S-1-5-21-1-2-3"))
	assert.Error(t, ValidateSIDString("1-5-21"))
	assert.Error(t, ValidateSIDString("S-1"))
	assert.Error(t, ValidateSIDString(""))
}
