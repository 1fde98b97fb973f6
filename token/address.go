// Package token defines the primitives shared across the extension
// engine: component addresses, native-currency amounts, and the
// capability interfaces implemented by render extensions and
// validators.
package token

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of a component address.
const AddressLength = 20

// Address identifies an account or deployed component.
type Address [AddressLength]byte

// ZeroAddress is the null address. It is never a valid component.
var ZeroAddress Address

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) != AddressLength*2 {
		return a, fmt.Errorf("token: address must be %d hex characters, got %d", AddressLength*2, len(trimmed))
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return a, fmt.Errorf("token: invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress parses a hex address and panics on failure.
// Intended for tests and fixed well-known addresses.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Hex returns the 0x-prefixed lowercase hex form of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether the address is the null address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}
