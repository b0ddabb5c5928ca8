package ssz

import "math/bits"

// Gindex is a generalized index: the position of a node in a binary Merkle
// tree, with the root at 1. For a node g, the left child is 2g and the
// right child is 2g+1.
type Gindex uint64

// GindexFromPosition returns the generalized index of the leaf at the given
// position in a tree of the given depth.
func GindexFromPosition(depth int, pos uint64) Gindex {
	return Gindex(1)<<uint(depth) + Gindex(pos)
}

// Depth returns the number of levels between g and the root. The root is at
// depth 0.
func (g Gindex) Depth() int {
	if g == 0 {
		return 0
	}
	return bits.Len64(uint64(g)) - 1
}

// Parent returns the generalized index of the parent node.
func (g Gindex) Parent() Gindex {
	return g >> 1
}

// Sibling returns the generalized index of the sibling node.
func (g Gindex) Sibling() Gindex {
	return g ^ 1
}

// IsLeft reports whether g is a left child.
func (g Gindex) IsLeft() bool {
	return g&1 == 0
}

// Position returns the leaf position of g within its level.
func (g Gindex) Position() uint64 {
	return uint64(g) - 1<<uint(g.Depth())
}

// Concat composes two generalized indices: the returned index addresses,
// within the tree rooted at g, the node that sub addresses within its own
// subtree. Concat(g, 1) == g.
func (g Gindex) Concat(sub Gindex) Gindex {
	if sub == 0 {
		return g
	}
	d := sub.Depth()
	return g<<uint(d) | (sub - 1<<uint(d))
}

// PathToRoot returns the generalized indices on the way from g to the root,
// excluding g itself and including the root.
func (g Gindex) PathToRoot() []Gindex {
	var path []Gindex
	for g > 1 {
		g = g.Parent()
		path = append(path, g)
	}
	return path
}
