package ssz

import "sort"

// VerifyProof checks a single Merkle branch: leaf sits at gindex under
// root, with branch supplying the sibling hashes bottom-up. The branch
// length must equal the gindex depth.
func VerifyProof(branch [][32]byte, leaf [32]byte, gindex Gindex, root [32]byte) bool {
	if gindex < 1 || len(branch) != gindex.Depth() {
		return false
	}
	node := leaf
	g := gindex
	for _, w := range branch {
		if g.IsLeft() {
			node = hash(node, w)
		} else {
			node = hash(w, node)
		}
		g = g.Parent()
	}
	return node == root
}

// HelperIndices returns the generalized indices of the witnesses a
// multi-proof for the given leaf set must supply, sorted by descending
// generalized index. Builder and verifier both derive this order from the
// leaf set; the witness list itself does not describe its positions.
func HelperIndices(gindexes []Gindex) []Gindex {
	helpers := make(map[Gindex]bool)
	paths := make(map[Gindex]bool)
	for _, g := range gindexes {
		for cur := g; cur > 1; cur = cur.Parent() {
			helpers[cur.Sibling()] = true
			paths[cur] = true
		}
	}
	paths[1] = true

	var out []Gindex
	for g := range helpers {
		if !paths[g] {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// CalculateMultiRoot reconstructs the root from leaves at the given
// gindexes plus the witness list, which must be ordered exactly as
// HelperIndices(gindexes) prescribes. The second return value is false when
// the shape is inconsistent (length mismatch, zero gindex, unreachable
// root).
func CalculateMultiRoot(leaves [][32]byte, gindexes []Gindex, witnesses [][32]byte) ([32]byte, bool) {
	if len(leaves) != len(gindexes) || len(gindexes) == 0 {
		return [32]byte{}, false
	}
	for _, g := range gindexes {
		if g < 1 {
			return [32]byte{}, false
		}
	}
	helpers := HelperIndices(gindexes)
	if len(witnesses) != len(helpers) {
		return [32]byte{}, false
	}

	objects := make(map[Gindex][32]byte, len(leaves)+len(witnesses))
	for i, g := range gindexes {
		objects[g] = leaves[i]
	}
	for i, g := range helpers {
		objects[g] = witnesses[i]
	}

	keys := make([]Gindex, 0, len(objects))
	for g := range objects {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })

	// Combine siblings bottom-up. Parents are appended as they become
	// computable; they are always smaller than the key that produced them,
	// so the deepest nodes are consumed first.
	for pos := 0; pos < len(keys); pos++ {
		k := keys[pos]
		_, haveSelf := objects[k]
		_, haveSibling := objects[k.Sibling()]
		_, haveParent := objects[k.Parent()]
		if haveSelf && haveSibling && !haveParent && k > 1 {
			left := objects[(k|1)^1]
			right := objects[k|1]
			objects[k.Parent()] = hash(left, right)
			keys = append(keys, k.Parent())
		}
	}

	root, ok := objects[1]
	return root, ok
}

// VerifyMultiProof checks a multi-proof against a root. It fails (returns
// false, never panics) when the witness order does not match the
// HelperIndices contract for this gindex set.
func VerifyMultiProof(leaves [][32]byte, gindexes []Gindex, witnesses [][32]byte, root [32]byte) bool {
	computed, ok := CalculateMultiRoot(leaves, gindexes, witnesses)
	return ok && computed == root
}
