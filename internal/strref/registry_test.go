package strref

import "testing"

func TestNewHasSentinel(t *testing.T) {
	reg := New()

	rec := reg.Get(Sentinel)
	if rec == nil {
		t.Fatal("Get(Sentinel) = nil, want sentinel record")
	}
	if rec.Type != TypeError {
		t.Errorf("sentinel type = %v, want %v", rec.Type, TypeError)
	}
	if rec.Text != "INVALID REFERENCE" {
		t.Errorf("sentinel text = %q, want %q", rec.Text, "INVALID REFERENCE")
	}
}

func TestAddEdgeSymmetry(t *testing.T) {
	reg := New()
	reg.Put(1, "a", TypeDialog, "f.d")
	reg.Put(2, "b", TypeDialog, "f.d")

	reg.AddEdge(1, 2)

	if got := reg.Get(1).Children(); len(got) != 1 || got[0] != 2 {
		t.Errorf("children(1) = %v, want [2]", got)
	}
	if got := reg.Get(2).Parents(); len(got) != 1 || got[0] != 1 {
		t.Errorf("parents(2) = %v, want [1]", got)
	}

	// Re-adding must not duplicate.
	reg.AddEdge(1, 2)
	if got := reg.Get(1).Children(); len(got) != 1 {
		t.Errorf("children(1) after re-add = %v, want one entry", got)
	}
}

func TestAddNeighborSymmetry(t *testing.T) {
	reg := New()
	reg.Put(10, "a", TypeScriptHead, "s.baf")
	reg.Put(11, "b", TypeScriptHead, "s.baf")

	reg.AddNeighbor(10, 11)
	reg.AddNeighbor(10, 10)

	if got := reg.Get(10).Neighbors(); len(got) != 1 || got[0] != 11 {
		t.Errorf("neighbors(10) = %v, want [11]", got)
	}
	if got := reg.Get(11).Neighbors(); len(got) != 1 || got[0] != 10 {
		t.Errorf("neighbors(11) = %v, want [10]", got)
	}
}

func TestChopToRangeStripsBackReferences(t *testing.T) {
	reg := New()
	reg.Put(50, "out", TypeDialog, "f.d")
	reg.Put(150, "in", TypeDialog, "f.d")
	reg.AddEdge(50, 150)

	reg.ChopToRange(100, 200)

	if reg.Has(50) {
		t.Error("record 50 survived ChopToRange(100, 200)")
	}
	if !reg.Has(150) {
		t.Fatal("record 150 was dropped by ChopToRange(100, 200)")
	}
	if got := reg.Get(150).Parents(); len(got) != 0 {
		t.Errorf("parents(150) = %v, want empty after chop", got)
	}
}

func TestChopToRangeDropsSentinelAndNeighbors(t *testing.T) {
	reg := New()
	reg.Put(5, "a", TypeScriptHead, "s.baf")
	reg.Put(500, "b", TypeScriptHead, "s.baf")
	reg.AddNeighbor(5, 500)
	reg.SetFileIDs("s.baf", []int{5, 500})

	reg.ChopToRange(0, 100)

	if reg.Has(Sentinel) {
		t.Error("sentinel survived a non-negative range chop")
	}
	if got := reg.Get(5).Neighbors(); len(got) != 0 {
		t.Errorf("neighbors(5) = %v, want empty after chop", got)
	}
	if got := reg.FileIDs("s.baf"); len(got) != 1 || got[0] != 5 {
		t.Errorf("FileIDs(s.baf) = %v, want [5]", got)
	}
}

func TestKeysSorted(t *testing.T) {
	reg := New()
	reg.Put(30, "", TypeDialog, "")
	reg.Put(10, "", TypeDialog, "")
	reg.Put(20, "", TypeDialog, "")

	got := reg.Keys()
	want := []int{-1, 10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestLabelPrefixesForeignFile(t *testing.T) {
	reg := New()
	rec := reg.Put(1, "Hello", TypeDialog, "abela")

	if got := rec.Label("abela"); got != "Hello" {
		t.Errorf("Label(same file) = %q, want %q", got, "Hello")
	}
	if got := rec.Label("other"); got != "abela: Hello" {
		t.Errorf("Label(other file) = %q, want %q", got, "abela: Hello")
	}
}
