package crypto

import (
	"github.com/lightproof/lightproof/types"
	"github.com/minio/sha256-simd"
)

// Sha256 calculates the SHA-256 hash of the given data.
func Sha256(data ...[]byte) []byte {
	d := sha256.New()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Sha256Hash calculates SHA-256 and returns it as a types.Hash.
func Sha256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Sha256(data...))
}

// HashPair hashes the 64-byte concatenation of two tree nodes. This is the
// SSZ merkleization step, so it uses SHA-256.
func HashPair(left, right [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return sha256.Sum256(buf[:])
}
