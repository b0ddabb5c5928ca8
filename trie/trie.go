// Package trie implements Ethereum's modified Merkle-Patricia trie, scoped
// to what proof handling needs: incremental insertion, root hashing, proof
// creation and proof verification.
//
// Nodes live in an arena indexed by int32 instead of a pointer graph.
// Mutations mark the dirty chain up to the root; encodings and hashes are
// recomputed lazily on the next Hash or Prove call.
package trie

import (
	"errors"

	"github.com/lightproof/lightproof/crypto"
	"github.com/lightproof/lightproof/rlp"
	"github.com/lightproof/lightproof/types"
)

var (
	// ErrNotFound is returned when a key is provably absent.
	ErrNotFound = errors.New("trie: key not found")

	// ErrProofInvalid is returned when a Merkle proof is invalid.
	ErrProofInvalid = errors.New("trie: invalid proof")

	// ErrAccountInvalid is returned for a malformed account leaf value.
	ErrAccountInvalid = errors.New("trie: invalid account encoding")
)

// maxProofDepth bounds the witness walk. A 32-byte key expands to 65
// nibbles, so no honest proof exceeds this.
const maxProofDepth = 64

// emptyRoot is the hash of an empty trie, keccak256(rlp("")).
var emptyRoot = types.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

const nilIndex int32 = -1

type nodeKind uint8

const (
	leafNode nodeKind = iota
	extNode
	branchNode
)

// node is one arena entry. Leaf paths carry the terminator nibble,
// extension paths never do.
type node struct {
	kind     nodeKind
	parent   int32
	path     []byte
	value    []byte
	child    int32     // extension child
	children [16]int32 // branch children
	dirty    bool
	enc      []byte // cached RLP encoding, valid when !dirty
}

// Trie is an in-memory modified Merkle-Patricia trie.
type Trie struct {
	nodes []node
	root  int32
}

// New creates an empty trie.
func New() *Trie {
	return &Trie{root: nilIndex}
}

// EmptyRoot returns the root hash of an empty trie.
func EmptyRoot() types.Hash {
	return emptyRoot
}

func (t *Trie) alloc(n node) int32 {
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

func newBranch(parent int32) node {
	n := node{kind: branchNode, parent: parent, child: nilIndex, dirty: true}
	for i := range n.children {
		n.children[i] = nilIndex
	}
	return n
}

// markDirty invalidates the cached encodings from idx up to the root.
func (t *Trie) markDirty(idx int32) {
	for idx != nilIndex {
		t.nodes[idx].dirty = true
		idx = t.nodes[idx].parent
	}
}

// Update inserts or replaces the value for key. Empty values are stored
// as-is; deletion is not supported.
func (t *Trie) Update(key, value []byte) {
	hexKey := keybytesToHex(key)
	t.root = t.insert(t.root, nilIndex, hexKey, value)
}

// insert places value at the nibble path key below idx and returns the index
// of the subtree root, which may differ from idx when nodes split.
func (t *Trie) insert(idx, parent int32, key, value []byte) int32 {
	if idx == nilIndex {
		newIdx := t.alloc(node{kind: leafNode, parent: parent, path: key, value: value, child: nilIndex, dirty: true})
		t.markDirty(newIdx)
		return newIdx
	}

	switch t.nodes[idx].kind {
	case leafNode:
		return t.insertAtLeaf(idx, parent, key, value)
	case extNode:
		return t.insertAtExt(idx, parent, key, value)
	default:
		return t.insertAtBranch(idx, key, value)
	}
}

func (t *Trie) insertAtLeaf(idx, parent int32, key, value []byte) int32 {
	oldPath := t.nodes[idx].path
	oldValue := t.nodes[idx].value

	match := prefixLen(oldPath, key)
	if match == len(oldPath) && match == len(key) {
		t.nodes[idx].value = value
		t.markDirty(idx)
		return idx
	}

	// Diverge into a branch at the first differing nibble. The terminator
	// can never match a data nibble, so both rests are non-empty.
	branchIdx := t.alloc(newBranch(nilIndex))

	restOld := oldPath[match:]
	if restOld[0] == terminatorByte {
		t.nodes[branchIdx].value = oldValue
	} else {
		t.nodes[idx].path = restOld[1:]
		t.nodes[idx].parent = branchIdx
		t.nodes[idx].dirty = true
		t.nodes[branchIdx].children[restOld[0]] = idx
	}

	restNew := key[match:]
	if restNew[0] == terminatorByte {
		t.nodes[branchIdx].value = value
	} else {
		leafIdx := t.alloc(node{kind: leafNode, parent: branchIdx, path: restNew[1:], value: value, child: nilIndex, dirty: true})
		t.nodes[branchIdx].children[restNew[0]] = leafIdx
	}

	result := branchIdx
	if match > 0 {
		extIdx := t.alloc(node{kind: extNode, path: key[:match], child: branchIdx, dirty: true})
		t.nodes[branchIdx].parent = extIdx
		result = extIdx
	}
	t.nodes[result].parent = parent
	t.markDirty(result)
	return result
}

func (t *Trie) insertAtExt(idx, parent int32, key, value []byte) int32 {
	oldPath := t.nodes[idx].path
	oldChild := t.nodes[idx].child

	match := prefixLen(oldPath, key)
	if match == len(oldPath) {
		child := t.insert(oldChild, idx, key[match:], value)
		t.nodes[idx].child = child
		return idx
	}

	branchIdx := t.alloc(newBranch(nilIndex))

	// Old side keeps its subtree, shortened by the consumed prefix plus the
	// branch nibble.
	restOld := oldPath[match:]
	if len(restOld) == 1 {
		t.nodes[oldChild].parent = branchIdx
		t.nodes[branchIdx].children[restOld[0]] = oldChild
	} else {
		t.nodes[idx].path = restOld[1:]
		t.nodes[idx].parent = branchIdx
		t.nodes[idx].dirty = true
		t.nodes[branchIdx].children[restOld[0]] = idx
	}

	restNew := key[match:]
	if restNew[0] == terminatorByte {
		t.nodes[branchIdx].value = value
	} else {
		leafIdx := t.alloc(node{kind: leafNode, parent: branchIdx, path: restNew[1:], value: value, child: nilIndex, dirty: true})
		t.nodes[branchIdx].children[restNew[0]] = leafIdx
	}

	result := branchIdx
	if match > 0 {
		extIdx := t.alloc(node{kind: extNode, path: key[:match], child: branchIdx, dirty: true})
		t.nodes[branchIdx].parent = extIdx
		result = extIdx
	}
	t.nodes[result].parent = parent
	t.markDirty(result)
	return result
}

func (t *Trie) insertAtBranch(idx int32, key, value []byte) int32 {
	if key[0] == terminatorByte {
		t.nodes[idx].value = value
		t.markDirty(idx)
		return idx
	}
	child := t.insert(t.nodes[idx].children[key[0]], idx, key[1:], value)
	t.nodes[idx].children[key[0]] = child
	return idx
}

// Get returns the value stored for key, or nil if absent.
func (t *Trie) Get(key []byte) []byte {
	hexKey := keybytesToHex(key)
	idx := t.root
	pos := 0
	for idx != nilIndex {
		n := t.nodes[idx]
		switch n.kind {
		case leafNode:
			if keysEqual(n.path, hexKey[pos:]) {
				return n.value
			}
			return nil
		case extNode:
			if len(hexKey)-pos < len(n.path) || !keysEqual(n.path, hexKey[pos:pos+len(n.path)]) {
				return nil
			}
			pos += len(n.path)
			idx = n.child
		default:
			nib := hexKey[pos]
			pos++
			if nib == terminatorByte {
				return n.value
			}
			idx = n.children[nib]
		}
	}
	return nil
}

// Hash recomputes any dirty encodings and returns the root hash.
func (t *Trie) Hash() types.Hash {
	if t.root == nilIndex {
		return emptyRoot
	}
	t.encode(t.root)
	return crypto.Keccak256Hash(t.nodes[t.root].enc)
}

// encode refreshes the cached RLP encoding of the subtree rooted at idx.
func (t *Trie) encode(idx int32) {
	if !t.nodes[idx].dirty && t.nodes[idx].enc != nil {
		return
	}

	var payload []byte
	switch t.nodes[idx].kind {
	case leafNode:
		payload = rlp.AppendString(payload, hexToCompact(t.nodes[idx].path))
		payload = rlp.AppendString(payload, t.nodes[idx].value)

	case extNode:
		child := t.nodes[idx].child
		t.encode(child)
		payload = rlp.AppendString(payload, hexToCompact(t.nodes[idx].path))
		payload = t.appendRef(payload, child)

	default:
		for i := 0; i < 16; i++ {
			child := t.nodes[idx].children[i]
			if child == nilIndex {
				payload = append(payload, 0x80)
				continue
			}
			t.encode(child)
			payload = t.appendRef(payload, child)
		}
		payload = rlp.AppendString(payload, t.nodes[idx].value)
	}

	t.nodes[idx].enc = rlp.WrapList(payload)
	t.nodes[idx].dirty = false
}

// appendRef appends the reference to a child node: the keccak hash as an RLP
// string for encodings of 32 bytes or more, the raw encoding otherwise
// (embedded node rule).
func (t *Trie) appendRef(buf []byte, idx int32) []byte {
	enc := t.nodes[idx].enc
	if len(enc) < 32 {
		return append(buf, enc...)
	}
	return rlp.AppendString(buf, crypto.Keccak256(enc))
}
