package ssz

import "testing"

func TestGindexDepth(t *testing.T) {
	tests := []struct {
		g    Gindex
		want int
	}{
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{7, 2},
		{8, 3},
		{55, 5},
		{87, 6},
	}
	for _, tt := range tests {
		if got := tt.g.Depth(); got != tt.want {
			t.Errorf("Gindex(%d).Depth() = %d, want %d", tt.g, got, tt.want)
		}
	}
}

func TestGindexFamily(t *testing.T) {
	g := Gindex(12)
	if g.Parent() != 6 {
		t.Errorf("Parent(12) = %d, want 6", g.Parent())
	}
	if g.Sibling() != 13 {
		t.Errorf("Sibling(12) = %d, want 13", g.Sibling())
	}
	if !g.IsLeft() {
		t.Error("12 should be a left child")
	}
	if Gindex(13).IsLeft() {
		t.Error("13 should be a right child")
	}
	if g.Position() != 4 {
		t.Errorf("Position(12) = %d, want 4", g.Position())
	}
}

func TestGindexFromPosition(t *testing.T) {
	if g := GindexFromPosition(3, 0); g != 8 {
		t.Errorf("GindexFromPosition(3, 0) = %d, want 8", g)
	}
	if g := GindexFromPosition(3, 7); g != 15 {
		t.Errorf("GindexFromPosition(3, 7) = %d, want 15", g)
	}
}

func TestGindexConcat(t *testing.T) {
	// Identity on both sides.
	if got := Gindex(13).Concat(1); got != 13 {
		t.Errorf("Concat(13, 1) = %d, want 13", got)
	}
	if got := Gindex(1).Concat(13); got != 13 {
		t.Errorf("Concat(1, 13) = %d, want 13", got)
	}

	// Descending into the left child of node 2 gives node 4.
	if got := Gindex(2).Concat(2); got != 4 {
		t.Errorf("Concat(2, 2) = %d, want 4", got)
	}
	// The right child within the subtree at 2.
	if got := Gindex(2).Concat(3); got != 5 {
		t.Errorf("Concat(2, 3) = %d, want 5", got)
	}

	// Depths add.
	a, b := Gindex(11), Gindex(26)
	if got := a.Concat(b); got.Depth() != a.Depth()+b.Depth() {
		t.Errorf("Concat(%d, %d).Depth() = %d, want %d", a, b, got.Depth(), a.Depth()+b.Depth())
	}

	// Concat is associative.
	c := Gindex(5)
	if a.Concat(b).Concat(c) != a.Concat(b.Concat(c)) {
		t.Error("Concat is not associative")
	}
}

func TestPathToRoot(t *testing.T) {
	path := Gindex(13).PathToRoot()
	want := []Gindex{6, 3, 1}
	if len(path) != len(want) {
		t.Fatalf("PathToRoot(13) = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("PathToRoot(13)[%d] = %d, want %d", i, path[i], want[i])
		}
	}
	if got := Gindex(1).PathToRoot(); len(got) != 0 {
		t.Errorf("PathToRoot(1) = %v, want empty", got)
	}
}
