package ssz

import "testing"

func testLeaves(n int) [][32]byte {
	leaves := make([][32]byte, n)
	for i := range leaves {
		leaves[i] = chunkOf(byte(i + 1))
	}
	return leaves
}

func TestTreeRootMatchesMerkleize(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		leaves := testLeaves(n)
		tree := NewTree(leaves, 0)
		if got, want := tree.Root(), Merkleize(leaves, 0); got != want {
			t.Errorf("n=%d: tree root %x, Merkleize %x", n, got, want)
		}
	}
}

func TestTreeWithLimit(t *testing.T) {
	leaves := testLeaves(3)
	tree := NewTree(leaves, 16)
	if tree.Depth() != 4 {
		t.Errorf("Depth = %d, want 4", tree.Depth())
	}
	if got, want := tree.Root(), Merkleize(leaves, 16); got != want {
		t.Errorf("tree root %x, Merkleize %x", got, want)
	}
}

func TestSingleProofRoundTrip(t *testing.T) {
	leaves := testLeaves(8)
	tree := NewTree(leaves, 0)
	root := tree.Root()

	for pos := uint64(0); pos < 8; pos++ {
		g := tree.LeafGindex(pos)
		branch, err := tree.Proof(g)
		if err != nil {
			t.Fatalf("Proof(%d): %v", g, err)
		}
		if !VerifyProof(branch, leaves[pos], g, root) {
			t.Errorf("valid proof for leaf %d rejected", pos)
		}
		if VerifyProof(branch, chunkOf(0xee), g, root) {
			t.Errorf("wrong leaf accepted at position %d", pos)
		}
	}
}

func TestSingleProofRejectsWrongShape(t *testing.T) {
	leaves := testLeaves(8)
	tree := NewTree(leaves, 0)
	root := tree.Root()
	g := tree.LeafGindex(3)
	branch, _ := tree.Proof(g)

	if VerifyProof(branch[:len(branch)-1], leaves[3], g, root) {
		t.Error("short branch accepted")
	}
	if VerifyProof(branch, leaves[3], g.Parent(), root) {
		t.Error("wrong gindex depth accepted")
	}
	if VerifyProof(branch, leaves[3], 0, root) {
		t.Error("gindex 0 accepted")
	}

	tampered := make([][32]byte, len(branch))
	copy(tampered, branch)
	tampered[1][0] ^= 0x01
	if VerifyProof(tampered, leaves[3], g, root) {
		t.Error("tampered branch accepted")
	}
}

func TestInternalNodeProof(t *testing.T) {
	// Proving an internal node: gindex depth shorter than the leaf depth.
	leaves := testLeaves(8)
	tree := NewTree(leaves, 0)
	root := tree.Root()

	g := Gindex(6) // parent of leaves 4 and 5
	node, err := tree.Node(g)
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if want := hash(leaves[4], leaves[5]); node != want {
		t.Fatalf("internal node = %x, want %x", node, want)
	}
	branch, err := tree.Proof(g)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	if len(branch) != 2 {
		t.Fatalf("internal branch length = %d, want 2", len(branch))
	}
	if !VerifyProof(branch, node, g, root) {
		t.Error("internal node proof rejected")
	}
}

func TestMultiProofRoundTrip(t *testing.T) {
	leaves := testLeaves(8)
	tree := NewTree(leaves, 0)
	root := tree.Root()

	gindexes := []Gindex{tree.LeafGindex(0), tree.LeafGindex(2), tree.LeafGindex(5)}
	sub := [][32]byte{leaves[0], leaves[2], leaves[5]}

	witnesses, err := tree.MultiProof(gindexes)
	if err != nil {
		t.Fatalf("MultiProof: %v", err)
	}
	if !VerifyMultiProof(sub, gindexes, witnesses, root) {
		t.Fatal("valid multi-proof rejected")
	}

	// Shared paths must not duplicate witnesses: three independent single
	// proofs would need 9 hashes, the combined proof fewer.
	if len(witnesses) >= 9 {
		t.Errorf("multi-proof has %d witnesses, expected overlap savings", len(witnesses))
	}
}

func TestMultiProofAdjacentLeaves(t *testing.T) {
	// Two sibling leaves need no witness at their own level.
	leaves := testLeaves(4)
	tree := NewTree(leaves, 0)
	root := tree.Root()

	gindexes := []Gindex{tree.LeafGindex(2), tree.LeafGindex(3)}
	witnesses, err := tree.MultiProof(gindexes)
	if err != nil {
		t.Fatalf("MultiProof: %v", err)
	}
	if len(witnesses) != 1 {
		t.Fatalf("witnesses = %d, want 1", len(witnesses))
	}
	if !VerifyMultiProof([][32]byte{leaves[2], leaves[3]}, gindexes, witnesses, root) {
		t.Error("sibling multi-proof rejected")
	}
}

func TestMultiProofPermutationFails(t *testing.T) {
	leaves := testLeaves(8)
	tree := NewTree(leaves, 0)
	root := tree.Root()

	gindexes := []Gindex{tree.LeafGindex(1), tree.LeafGindex(4), tree.LeafGindex(6)}
	sub := [][32]byte{leaves[1], leaves[4], leaves[6]}
	witnesses, err := tree.MultiProof(gindexes)
	if err != nil {
		t.Fatalf("MultiProof: %v", err)
	}
	if !VerifyMultiProof(sub, gindexes, witnesses, root) {
		t.Fatal("valid multi-proof rejected")
	}

	// Permuting the gindex set without re-pairing the leaves must fail
	// deterministically, not crash or accept.
	permutedG := []Gindex{gindexes[2], gindexes[0], gindexes[1]}
	if VerifyMultiProof(sub, permutedG, witnesses, root) {
		t.Error("permuted gindex set accepted")
	}
}

func TestMultiProofRejectsBadShapes(t *testing.T) {
	leaves := testLeaves(8)
	tree := NewTree(leaves, 0)
	root := tree.Root()

	gindexes := []Gindex{tree.LeafGindex(0), tree.LeafGindex(7)}
	sub := [][32]byte{leaves[0], leaves[7]}
	witnesses, _ := tree.MultiProof(gindexes)

	if VerifyMultiProof(sub, gindexes, witnesses[:len(witnesses)-1], root) {
		t.Error("short witness list accepted")
	}
	if VerifyMultiProof(sub[:1], gindexes, witnesses, root) {
		t.Error("leaf/gindex length mismatch accepted")
	}
	if VerifyMultiProof(nil, nil, nil, root) {
		t.Error("empty multi-proof accepted")
	}

	tampered := make([][32]byte, len(witnesses))
	copy(tampered, witnesses)
	tampered[0][5] ^= 0x01
	if VerifyMultiProof(sub, gindexes, tampered, root) {
		t.Error("tampered witness accepted")
	}
}

func TestTreeGindexRange(t *testing.T) {
	tree := NewTree(testLeaves(4), 0)
	if _, err := tree.Node(0); err != ErrGindexRange {
		t.Errorf("Node(0) err = %v, want ErrGindexRange", err)
	}
	if _, err := tree.Node(8); err != ErrGindexRange {
		t.Errorf("Node(8) err = %v, want ErrGindexRange", err)
	}
	if _, err := tree.Proof(64); err != ErrGindexRange {
		t.Errorf("Proof(64) err = %v, want ErrGindexRange", err)
	}
	if _, err := tree.MultiProof(nil); err != ErrGindexRange {
		t.Errorf("MultiProof(nil) err = %v, want ErrGindexRange", err)
	}
}
