package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/go-ldap/ldap/v3"
)

// ControlTypePaging is the Simple Paged Results control OID (RFC 2696).
const ControlTypePaging = "1.2.840.113556.1.4.319"

const (
	berTagSequence    = 0x30
	berTagInteger     = 0x02
	berTagOctetString = 0x04
)

// pagingControl carries a page size and continuation cookie on a search
// request. The control value bytes are produced by the engine's own BER
// encoder so the wire shape is under direct control.
type pagingControl struct {
	PageSize uint32
	Cookie   []byte
}

var _ ldap.Control = (*pagingControl)(nil)

func (p *pagingControl) GetControlType() string {
	return ControlTypePaging
}

func (p *pagingControl) Encode() *ber.Packet {
	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Control")
	packet.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString,
		ControlTypePaging, "Control Type (Paging)"))
	packet.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString,
		string(encodePagedResultsValue(p.PageSize, p.Cookie)), "Control Value (Paging)"))
	return packet
}

func (p *pagingControl) String() string {
	return fmt.Sprintf("Paged Results Control (%s) PageSize: %d CookieLen: %d",
		ControlTypePaging, p.PageSize, len(p.Cookie))
}

// encodePagedResultsValue builds the control value:
// SEQUENCE { INTEGER pageSize, OCTET STRING cookie }.
func encodePagedResultsValue(pageSize uint32, cookie []byte) []byte {
	content := berEncodeInteger(int64(pageSize))
	content = append(content, berEncodeOctetString(cookie)...)

	out := []byte{berTagSequence}
	out = berAppendLength(out, len(content))
	return append(out, content...)
}

// decodePagedResultsCookie walks the response control value and extracts
// the continuation cookie: skip the INTEGER, read the OCTET STRING. Any
// malformed or undersized value decodes to an empty cookie, treated as end
// of pagination, so a noncompliant server cannot wedge the loop.
func decodePagedResultsCookie(data []byte) []byte {
	if len(data) < 2 || data[0] != berTagSequence {
		return nil
	}
	seqLen, n := berDecodeLength(data[1:])
	if n == 0 || 1+n+seqLen > len(data) {
		return nil
	}
	seq := data[1+n : 1+n+seqLen]

	if len(seq) == 0 || seq[0] != berTagInteger {
		return nil
	}
	intLen, n := berDecodeLength(seq[1:])
	if n == 0 || 1+n+intLen > len(seq) {
		return nil
	}
	rest := seq[1+n+intLen:]

	if len(rest) == 0 || rest[0] != berTagOctetString {
		return nil
	}
	cookieLen, n := berDecodeLength(rest[1:])
	if n == 0 || 1+n+cookieLen > len(rest) {
		return nil
	}
	return rest[1+n : 1+n+cookieLen]
}

// pagingCookieFromControls extracts the continuation cookie from a search
// response's controls. The library decodes the paging control for us on the
// happy path; a foreign or raw control with the right OID is walked with
// the engine's decoder instead.
func pagingCookieFromControls(controls []ldap.Control) []byte {
	for _, ctrl := range controls {
		if ctrl.GetControlType() != ControlTypePaging {
			continue
		}
		if paging, ok := ctrl.(*ldap.ControlPaging); ok {
			return paging.Cookie
		}
		packet := ctrl.Encode()
		if len(packet.Children) >= 2 {
			return decodePagedResultsCookie(packet.Children[1].Data.Bytes())
		}
	}
	return nil
}

// berEncodeInteger emits tag 0x02 with a minimal-length two's-complement
// body. Page sizes are always non-negative; the sign-extension branch
// exists only to keep the encoding correct for the full int64 domain.
func berEncodeInteger(v int64) []byte {
	var body []byte
	for {
		body = append(body, byte(v&0xFF))
		v >>= 8
		last := body[len(body)-1]
		if v == 0 && last&0x80 == 0 {
			break
		}
		if v == -1 && last&0x80 != 0 {
			break
		}
	}
	// body is little-endian at this point
	for i, j := 0, len(body)-1; i < j; i, j = i+1, j-1 {
		body[i], body[j] = body[j], body[i]
	}

	out := []byte{berTagInteger}
	out = berAppendLength(out, len(body))
	return append(out, body...)
}

func berEncodeOctetString(data []byte) []byte {
	out := []byte{berTagOctetString}
	out = berAppendLength(out, len(data))
	return append(out, data...)
}

// berAppendLength writes a definite length: short form below 128, one
// length byte through 255, two length bytes through 65535. Cookies never
// exceed that.
func berAppendLength(buf []byte, length int) []byte {
	switch {
	case length < 128:
		return append(buf, byte(length))
	case length < 256:
		return append(buf, 0x81, byte(length))
	default:
		return append(buf, 0x82, byte(length>>8), byte(length&0xFF))
	}
}

// berDecodeLength reads a definite length, returning the length and the
// number of bytes consumed. Returns consumed == 0 on malformed input.
func berDecodeLength(data []byte) (length, consumed int) {
	if len(data) == 0 {
		return 0, 0
	}
	if data[0] < 128 {
		return int(data[0]), 1
	}
	numBytes := int(data[0] & 0x7F)
	if numBytes == 0 || numBytes > 2 || numBytes > len(data)-1 {
		return 0, 0
	}
	for i := 0; i < numBytes; i++ {
		length = length<<8 | int(data[1+i])
	}
	return length, 1 + numBytes
}
