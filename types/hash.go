// Package types defines the fixed-size byte types shared across the
// verification core.
package types

import (
	"encoding/hex"
	"fmt"
)

const (
	HashLength      = 32
	PubkeyLength    = 48
	SignatureLength = 96
)

// Hash represents a 32-byte hash (keccak256 or sha256 depending on context).
type Hash [HashLength]byte

// Pubkey is a compressed BLS12-381 G1 public key.
type Pubkey [PubkeyLength]byte

// Signature is a compressed BLS12-381 G2 signature.
type Signature [SignatureLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// Bytes returns the byte representation of the pubkey.
func (p Pubkey) Bytes() []byte { return p[:] }

// Hex returns the hex string representation of the pubkey.
func (p Pubkey) Hex() string { return fmt.Sprintf("0x%x", p[:]) }

// IsZero returns whether the pubkey is all zeros.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Bytes returns the byte representation of the signature.
func (s Signature) Bytes() []byte { return s[:] }

// Hex returns the hex string representation of the signature.
func (s Signature) Hex() string { return fmt.Sprintf("0x%x", s[:]) }

// fromHex decodes a hex string, stripping optional "0x" prefix.
func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
