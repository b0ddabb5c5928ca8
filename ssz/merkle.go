// Package ssz implements SSZ merkleization and generalized-index Merkle
// proofs: chunk packing, hash_tree_root building blocks, and single- and
// multi-leaf proof creation/verification over binary trees.
package ssz

import (
	"encoding/binary"
	"sync"

	"github.com/lightproof/lightproof/crypto"
)

// BytesPerChunk is the number of bytes in each leaf chunk for Merkleization.
const BytesPerChunk = 32

// maxZeroHashDepth is the maximum depth of precomputed zero hashes. 64
// levels supports trees of up to 2^64 leaves.
const maxZeroHashDepth = 64

// hash combines two 32-byte inputs using SHA-256.
func hash(a, b [32]byte) [32]byte {
	return crypto.HashPair(a, b)
}

// zeroHashInit precomputes the zero-subtree hash table.
// zeroHashTable[0] = zero chunk,
// zeroHashTable[i] = hash(zeroHashTable[i-1], zeroHashTable[i-1]).
var (
	zeroHashOnce  sync.Once
	zeroHashTable [maxZeroHashDepth + 1][32]byte
)

func zeroHashInit() {
	zeroHashOnce.Do(func() {
		for i := 1; i <= maxZeroHashDepth; i++ {
			zeroHashTable[i] = hash(zeroHashTable[i-1], zeroHashTable[i-1])
		}
	})
}

// ZeroHash returns the root of a zero-leaf subtree of the given depth.
// Depth 0 is the zero chunk itself.
func ZeroHash(depth int) [32]byte {
	zeroHashInit()
	if depth < 0 {
		return [32]byte{}
	}
	if depth > maxZeroHashDepth {
		h := zeroHashTable[maxZeroHashDepth]
		for i := maxZeroHashDepth; i < depth; i++ {
			h = hash(h, h)
		}
		return h
	}
	return zeroHashTable[depth]
}

// nextPowerOfTwo returns the smallest power of 2 >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// treeDepth returns the number of levels below the root for a tree with n
// leaves (n must be a power of two).
func treeDepth(n int) int {
	d := 0
	for (1 << uint(d)) < n {
		d++
	}
	return d
}

// Pack packs serialized bytes into 32-byte chunks, right-padding the last
// chunk with zeros.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	numChunks := (len(serialized) + BytesPerChunk - 1) / BytesPerChunk
	chunks := make([][32]byte, numChunks)
	for i := 0; i < numChunks; i++ {
		start := i * BytesPerChunk
		end := start + BytesPerChunk
		if end > len(serialized) {
			end = len(serialized)
		}
		copy(chunks[i][:], serialized[start:end])
	}
	return chunks
}

// Merkleize computes the Merkle root of chunks padded with zero subtrees to
// the given limit. If limit is 0, the next power of two of the chunk count
// is used.
func Merkleize(chunks [][32]byte, limit int) [32]byte {
	zeroHashInit()

	count := len(chunks)
	if limit == 0 || limit < count {
		limit = nextPowerOfTwo(count)
	}
	limit = nextPowerOfTwo(limit)
	depth := treeDepth(limit)

	if count == 0 {
		return ZeroHash(depth)
	}

	// Collapse layer by layer, padding each level with the zero hash of
	// that level instead of materializing the full bottom layer.
	layer := make([][32]byte, count)
	copy(layer, chunks)
	for d := 0; d < depth; d++ {
		if len(layer)&1 == 1 {
			layer = append(layer, zeroHashTable[d])
		}
		next := layer[:len(layer)/2]
		for i := range next {
			next[i] = hash(layer[2*i], layer[2*i+1])
		}
		layer = next
	}
	return layer[0]
}

// MixInLength mixes a Merkle root with a length value, used for
// variable-size types (lists, bitlists, byte lists).
func MixInLength(root [32]byte, length uint64) [32]byte {
	var lengthChunk [32]byte
	binary.LittleEndian.PutUint64(lengthChunk[:8], length)
	return hash(root, lengthChunk)
}

// MixInSelector mixes a root with a type selector, used for SSZ unions.
func MixInSelector(root [32]byte, selector uint64) [32]byte {
	var selectorChunk [32]byte
	binary.LittleEndian.PutUint64(selectorChunk[:8], selector)
	return hash(root, selectorChunk)
}

// HashTreeRootUint64 computes the hash tree root of a uint64.
func HashTreeRootUint64(v uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], v)
	return chunk
}

// HashTreeRootBytes48 computes the hash tree root of a 48-byte fixed vector
// (e.g. a BLS public key): Merkleize(pack(value)).
func HashTreeRootBytes48(b [48]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// HashTreeRootContainer computes the hash tree root of a container from its
// field roots.
func HashTreeRootContainer(fieldRoots [][32]byte) [32]byte {
	return Merkleize(fieldRoots, 0)
}
