package trie

import (
	"bytes"

	"github.com/lightproof/lightproof/crypto"
	"github.com/lightproof/lightproof/rlp"
	"github.com/lightproof/lightproof/types"
)

// Prove generates a Merkle proof for the given key: the RLP encodings of the
// nodes visited on the walk from the root towards the key. Embedded (<32
// byte) nodes are still emitted as their own witness so the proof shape is
// uniform. If the key is absent the proof ends at the diverging node and
// VerifyProof reports ErrNotFound for it.
func (t *Trie) Prove(key []byte) ([][]byte, error) {
	if t.root == nilIndex {
		return nil, ErrNotFound
	}
	t.Hash()

	hexKey := keybytesToHex(key)
	var proof [][]byte
	idx := t.root
	pos := 0
	for {
		n := t.nodes[idx]
		proof = append(proof, n.enc)

		switch n.kind {
		case leafNode:
			// Matching or diverging, the leaf is the final witness.
			return proof, nil

		case extNode:
			if len(hexKey)-pos < len(n.path) || !keysEqual(n.path, hexKey[pos:pos+len(n.path)]) {
				return proof, nil
			}
			pos += len(n.path)
			idx = n.child

		default:
			nib := hexKey[pos]
			pos++
			if nib == terminatorByte || n.children[nib] == nilIndex {
				return proof, nil
			}
			idx = n.children[nib]
		}
	}
}

// VerifyProof verifies a Merkle proof for a key against a root hash.
// It returns the proven value, ErrNotFound if the proof shows the key is
// absent, or ErrProofInvalid for any structural or hash mismatch.
func VerifyProof(rootHash types.Hash, key []byte, proof [][]byte) ([]byte, error) {
	if len(proof) == 0 || len(proof) > maxProofDepth {
		return nil, ErrProofInvalid
	}

	hexKey := keybytesToHex(key)
	pos := 0

	// The first witness must hash to the root. Embedded (<32 byte) children
	// are decoded in place; a prover may still include them as duplicate
	// witnesses, which are matched byte for byte and consumed.
	encoded := proof[0]
	if !bytes.Equal(crypto.Keccak256(encoded), rootHash[:]) {
		return nil, ErrProofInvalid
	}
	next := 1

	for depth := 0; depth <= maxProofDepth; depth++ {
		items, err := rlp.Split(encoded)
		if err != nil {
			return nil, ErrProofInvalid
		}
		// Terminal outcomes are only valid once every witness is consumed.
		exhausted := next == len(proof)

		switch len(items) {
		case 2:
			if items[0].Kind != rlp.String {
				return nil, ErrProofInvalid
			}
			nib := compactToHex(items[0].Payload)

			if hasTerm(nib) {
				// Leaf: a diverging path is a proof of absence, a matching
				// one yields the value.
				if !exhausted || items[1].Kind != rlp.String {
					return nil, ErrProofInvalid
				}
				if keysEqual(nib, hexKey[pos:]) {
					return items[1].Payload, nil
				}
				return nil, ErrNotFound
			}

			// Extension.
			if len(nib) == 0 {
				return nil, ErrProofInvalid
			}
			if len(hexKey)-pos < len(nib) || !keysEqual(nib, hexKey[pos:pos+len(nib)]) {
				if exhausted {
					return nil, ErrNotFound
				}
				return nil, ErrProofInvalid
			}
			pos += len(nib)
			encoded, next, err = childNode(items[1], proof, next)
			if err != nil {
				return nil, err
			}

		case 17:
			if pos >= len(hexKey) {
				return nil, ErrProofInvalid
			}
			nib := hexKey[pos]
			pos++

			if nib == terminatorByte {
				// Value slot of this branch.
				if !exhausted || items[16].Kind != rlp.String {
					return nil, ErrProofInvalid
				}
				if len(items[16].Payload) == 0 {
					return nil, ErrNotFound
				}
				return items[16].Payload, nil
			}

			child := items[nib]
			if child.Kind == rlp.String && len(child.Payload) == 0 {
				// Empty slot proves absence, but only with nothing left over.
				if !exhausted {
					return nil, ErrProofInvalid
				}
				return nil, ErrNotFound
			}
			encoded, next, err = childNode(child, proof, next)
			if err != nil {
				return nil, err
			}

		default:
			return nil, ErrProofInvalid
		}
	}

	return nil, ErrProofInvalid
}

// childNode resolves a node's reference to its child encoding. A 32-byte
// string is a hash link to the next witness; a nested list is an embedded
// node decoded in place, with an optional byte-equal duplicate witness
// accepted for provers that emit embedded nodes separately.
func childNode(item rlp.Item, proof [][]byte, next int) ([]byte, int, error) {
	if item.Kind == rlp.List {
		if len(item.Raw) >= 32 {
			return nil, 0, ErrProofInvalid
		}
		if next < len(proof) && bytes.Equal(proof[next], item.Raw) {
			next++
		}
		return item.Raw, next, nil
	}
	if len(item.Payload) == 32 {
		if next >= len(proof) {
			return nil, 0, ErrProofInvalid
		}
		if !bytes.Equal(crypto.Keccak256(proof[next]), item.Payload) {
			return nil, 0, ErrProofInvalid
		}
		return proof[next], next + 1, nil
	}
	return nil, 0, ErrProofInvalid
}
