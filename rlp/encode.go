// Package rlp implements canonical RLP encoding and an iterative splitter
// for already-encoded items. The API is append-style and reflection-free:
// trie nodes and account values are the only consumers, and they assemble
// their encodings piecewise.
package rlp

import "github.com/holiman/uint256"

// AppendString appends the RLP encoding of data (as an RLP string) to buf.
func AppendString(buf, data []byte) []byte {
	n := len(data)
	if n == 1 && data[0] <= 0x7f {
		return append(buf, data[0])
	}
	if n <= 55 {
		buf = append(buf, 0x80+byte(n))
		return append(buf, data...)
	}
	lenBytes := putUintBigEndian(uint64(n))
	buf = append(buf, 0xb7+byte(len(lenBytes)))
	buf = append(buf, lenBytes...)
	return append(buf, data...)
}

// AppendUint appends the RLP encoding of v to buf. Zero encodes as the
// empty string.
func AppendUint(buf []byte, v uint64) []byte {
	if v == 0 {
		return append(buf, 0x80)
	}
	if v < 128 {
		return append(buf, byte(v))
	}
	return AppendString(buf, putUintBigEndian(v))
}

// AppendUint256 appends the RLP encoding of v to buf, big-endian with no
// leading zeros. A nil or zero value encodes as the empty string.
func AppendUint256(buf []byte, v *uint256.Int) []byte {
	if v == nil || v.IsZero() {
		return append(buf, 0x80)
	}
	return AppendString(buf, v.Bytes())
}

// WrapList wraps an already-encoded RLP payload in a list header.
func WrapList(payload []byte) []byte {
	n := len(payload)
	if n <= 55 {
		buf := make([]byte, 1+n)
		buf[0] = 0xc0 + byte(n)
		copy(buf[1:], payload)
		return buf
	}
	lenBytes := putUintBigEndian(uint64(n))
	buf := make([]byte, 1+len(lenBytes)+n)
	buf[0] = 0xf7 + byte(len(lenBytes))
	copy(buf[1:], lenBytes)
	copy(buf[1+len(lenBytes):], payload)
	return buf
}

// EncodeString returns the RLP encoding of data as a standalone item.
func EncodeString(data []byte) []byte {
	return AppendString(nil, data)
}

// putUintBigEndian encodes u as big-endian with no leading zeros.
func putUintBigEndian(u uint64) []byte {
	switch {
	case u < (1 << 8):
		return []byte{byte(u)}
	case u < (1 << 16):
		return []byte{byte(u >> 8), byte(u)}
	case u < (1 << 24):
		return []byte{byte(u >> 16), byte(u >> 8), byte(u)}
	case u < (1 << 32):
		return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	case u < (1 << 40):
		return []byte{byte(u >> 32), byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	case u < (1 << 48):
		return []byte{byte(u >> 40), byte(u >> 32), byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	case u < (1 << 56):
		return []byte{byte(u >> 48), byte(u >> 40), byte(u >> 32), byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	default:
		return []byte{byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32), byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	}
}
