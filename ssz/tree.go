package ssz

import "errors"

// ErrGindexRange is returned when a generalized index addresses a node
// outside the tree.
var ErrGindexRange = errors.New("ssz: generalized index out of range")

// Tree is a fully materialized binary Merkle tree addressed by generalized
// index. It is the builder-side counterpart of VerifyProof and
// VerifyMultiProof.
type Tree struct {
	nodes [][32]byte // nodes[0] unused, nodes[1] is the root
	depth int
}

// NewTree builds a tree over the given leaf chunks, zero-padded to limit
// leaves (next power of two of the leaf count when limit is 0).
func NewTree(leaves [][32]byte, limit int) *Tree {
	size := limit
	if size == 0 || size < len(leaves) {
		size = nextPowerOfTwo(len(leaves))
	}
	size = nextPowerOfTwo(size)

	nodes := make([][32]byte, 2*size)
	copy(nodes[size:], leaves)
	for i := size - 1; i >= 1; i-- {
		nodes[i] = hash(nodes[2*i], nodes[2*i+1])
	}
	return &Tree{nodes: nodes, depth: treeDepth(size)}
}

// Root returns the tree root.
func (t *Tree) Root() [32]byte {
	return t.nodes[1]
}

// Depth returns the number of levels below the root.
func (t *Tree) Depth() int {
	return t.depth
}

// LeafGindex returns the generalized index of the leaf at pos.
func (t *Tree) LeafGindex(pos uint64) Gindex {
	return GindexFromPosition(t.depth, pos)
}

// Node returns the hash at a generalized index.
func (t *Tree) Node(g Gindex) ([32]byte, error) {
	if g < 1 || uint64(g) >= uint64(len(t.nodes)) {
		return [32]byte{}, ErrGindexRange
	}
	return t.nodes[g], nil
}

// Proof returns the single-leaf branch for the node at g: its sibling
// hashes from the bottom up, as VerifyProof consumes them.
func (t *Tree) Proof(g Gindex) ([][32]byte, error) {
	if g < 1 || uint64(g) >= uint64(len(t.nodes)) {
		return nil, ErrGindexRange
	}
	branch := make([][32]byte, 0, g.Depth())
	for cur := g; cur > 1; cur = cur.Parent() {
		branch = append(branch, t.nodes[cur.Sibling()])
	}
	return branch, nil
}

// MultiProof returns the witness list for the given leaf set, in the
// HelperIndices order.
func (t *Tree) MultiProof(gindexes []Gindex) ([][32]byte, error) {
	if len(gindexes) == 0 {
		return nil, ErrGindexRange
	}
	for _, g := range gindexes {
		if g < 1 || uint64(g) >= uint64(len(t.nodes)) {
			return nil, ErrGindexRange
		}
	}
	helpers := HelperIndices(gindexes)
	witnesses := make([][32]byte, len(helpers))
	for i, g := range helpers {
		if uint64(g) >= uint64(len(t.nodes)) {
			return nil, ErrGindexRange
		}
		witnesses[i] = t.nodes[g]
	}
	return witnesses, nil
}
