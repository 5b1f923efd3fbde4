package domain

import (
	"encoding/hex"
	"fmt"
)

// AddressSize is the byte length of a sidechain address.
const AddressSize = 20

// Address is an opaque sidechain address. It is a value type compared by
// byte equality; the core never interprets its internal structure.
type Address [AddressSize]byte

// AddressFromBytes copies b into an Address. b must be exactly AddressSize
// bytes long.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, fmt.Errorf("invalid address length: got %d, want %d", len(b), AddressSize)
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHex parses a hex-encoded address.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address hex: %s", err)
	}
	return AddressFromBytes(b)
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	out := make([]byte, AddressSize)
	copy(out, a[:])
	return out
}

func (a Address) IsZero() bool {
	return a == Address{}
}
