// Package macaddr converts 6-byte hardware addresses to and from their canonical
// colon separated text form, e.g. "00:1a:2b:3c:4d:5e".
package macaddr

import (
	"fmt"

	"github.com/iamBelugaa/mactable/pkg/errors"
)

const (
	// Len is the number of raw bytes in an address.
	Len = 6

	// TextLen is the length of the canonical text form.
	TextLen = Len*3 - 1
)

const hexDigits = "0123456789abcdef"

// Address is a raw hardware address. It is a value type so it can be copied into table
// slots without allocation.
type Address [Len]byte

// String renders the address as lowercase colon separated hex.
func (a Address) String() string {
	var buf [TextLen]byte
	a.appendText(buf[:0])
	return string(buf[:])
}

// AppendText appends the canonical text form to dst.
func (a Address) AppendText(dst []byte) []byte {
	return a.appendText(dst)
}

func (a Address) appendText(dst []byte) []byte {
	for i, b := range a {
		if i > 0 {
			dst = append(dst, ':')
		}
		dst = append(dst, hexDigits[b>>4], hexDigits[b&0x0f])
	}
	return dst
}

// IsZero reports whether every byte of the address is zero.
func (a Address) IsZero() bool {
	return a == Address{}
}

// FromBytes copies a 6-byte slice into an Address.
func FromBytes(b []byte) (Address, error) {
	var addr Address
	if len(b) != Len {
		return addr, errors.NewFieldRangeError("address", len(b), Len, Len).
			WithMessage(fmt.Sprintf("address must be exactly %d bytes, got %d", Len, len(b)))
	}
	copy(addr[:], b)
	return addr, nil
}

// Parse decodes the exact form "xx:xx:xx:xx:xx:xx". Hex digits may be upper or lower case;
// any other length, separator or digit is rejected.
func Parse(s string) (Address, error) {
	var addr Address

	if len(s) != TextLen {
		return addr, errors.NewValidationError(
			nil, errors.ErrAddressMalformed, fmt.Sprintf("address %q must be %d characters long", s, TextLen),
		).
			WithProvided(len(s)).
			WithExpected(TextLen)
	}

	for i := 0; i < Len; i++ {
		pos := i * 3
		hi, ok1 := fromHex(s[pos])
		lo, ok2 := fromHex(s[pos+1])
		if !ok1 || !ok2 {
			return Address{}, errors.NewValidationError(
				nil, errors.ErrAddressMalformed, fmt.Sprintf("address %q has a non-hex digit in segment %d", s, i),
			).
				WithDetail("segment", i)
		}
		addr[i] = hi<<4 | lo

		if i < Len-1 && s[pos+2] != ':' {
			return Address{}, errors.NewValidationError(
				nil, errors.ErrAddressMalformed, fmt.Sprintf("address %q has a bad separator at offset %d", s, pos+2),
			).
				WithDetail("offset", pos+2)
		}
	}

	return addr, nil
}

// MustParse is like Parse but panics on malformed input. Intended for constants and tests.
func MustParse(s string) Address {
	addr, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
