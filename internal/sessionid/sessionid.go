// Package sessionid generates sortable identifiers for poker sessions.
//
// IDs are UUIDv7 values encoded as 26 characters of Crockford base32, the
// same shape TypeID uses, so they sort by creation time.
package sessionid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded ID.
const Length = 26

// Generate creates a new session ID.
func Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("failed to generate session id: " + err.Error())
	}
	return Encode(id)
}

// Encode encodes a UUID as 26 base32 characters. The 128 bits are treated as
// a 130-bit number with two leading zero bits, so the first character is 0-7.
func Encode(id uuid.UUID) string {
	out := make([]byte, Length)
	for i := range Length {
		var value byte
		for b := range 5 {
			bit := i*5 + b - 2
			value <<= 1
			if bit >= 0 && id[bit/8]&(0x80>>(bit%8)) != 0 {
				value |= 1
			}
		}
		out[i] = alphabet[value]
	}
	return string(out)
}

// Decode reverses Encode.
func Decode(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}
	for i := range Length {
		value := byte(strings.IndexByte(alphabet, s[i]))
		for b := range 5 {
			bit := i*5 + b - 2
			if bit < 0 || value&(0x10>>b) == 0 {
				continue
			}
			id[bit/8] |= 0x80 >> (bit % 8)
		}
	}
	return id, nil
}

// Validate checks that s is 26 base32 characters representing at most 128 bits.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("session id must be exactly %d characters, got %d", Length, len(s))
	}
	if s[0] > '7' {
		return fmt.Errorf("session id first character must be 0-7, got %c", s[0])
	}
	for i := range len(s) {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
	}
	return nil
}
