package chimera

import "testing"

func sceneWith(animals ...Animal) *Store {
	s := NewStore()
	for _, a := range animals {
		s.Add(a)
	}
	return s
}

// --- Add / Find ---

func TestAddAndFind(t *testing.T) {
	s := sceneWith(Animal{ID: "a", Name: "Axolotl", X: 10, Y: 20})

	a, ok := s.Find("a")
	if !ok {
		t.Fatal("Find(a) should succeed")
	}
	if a.Name != "Axolotl" || a.X != 10 || a.Y != 20 {
		t.Errorf("Find(a) = %+v", a)
	}
	if _, ok := s.Find("missing"); ok {
		t.Error("Find(missing) should fail")
	}
}

func TestAddReplacesInPlace(t *testing.T) {
	s := sceneWith(Animal{ID: "a"}, Animal{ID: "b"})
	s.Add(Animal{ID: "a", Name: "renewed"})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	all := s.All()
	if all[0].ID != "a" || all[0].Name != "renewed" {
		t.Errorf("replaced animal should keep paint position: %+v", all)
	}
}

func TestFindReturnsCopy(t *testing.T) {
	s := sceneWith(Animal{ID: "a", X: 1})
	a, _ := s.Find("a")
	a.X = 99
	got, _ := s.Find("a")
	if got.X != 1 {
		t.Errorf("mutating a Find result should not touch the store, X = %v", got.X)
	}
}

// --- Remove ---

func TestRemoveCascadesLines(t *testing.T) {
	s := sceneWith(Animal{ID: "p1"}, Animal{ID: "p2"}, Animal{ID: "c"}, Animal{ID: "x"})
	s.AddLine(FamilyLine{Parent1: "p1", Parent2: "p2", Child: "c"})
	s.AddLine(FamilyLine{Parent1: "p1", Parent2: "x", Child: "c"})

	if !s.Remove("p2") {
		t.Fatal("Remove(p2) should succeed")
	}
	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines after remove = %v, want only the p1-x line", lines)
	}
	if lines[0].Parent2 != "x" {
		t.Errorf("surviving line = %+v", lines[0])
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := sceneWith(Animal{ID: "a"})
	if s.Remove("nope") {
		t.Error("Remove(nope) should report false")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

// --- Paint order ---

func TestRaiseToTop(t *testing.T) {
	s := sceneWith(Animal{ID: "a"}, Animal{ID: "b"}, Animal{ID: "c"})
	s.RaiseToTop("a")

	all := s.All()
	if all[2].ID != "a" {
		t.Errorf("paint order = %v, want a last", []string{all[0].ID, all[1].ID, all[2].ID})
	}
}

// --- Mutators ---

func TestSetPositionAndName(t *testing.T) {
	s := sceneWith(Animal{ID: "a"})
	if !s.SetPosition("a", 5, 6) {
		t.Error("SetPosition should succeed")
	}
	if !s.SetName("a", "Newt") {
		t.Error("SetName should succeed")
	}
	a, _ := s.Find("a")
	if a.X != 5 || a.Y != 6 || a.Name != "Newt" {
		t.Errorf("after mutation: %+v", a)
	}
	if s.SetPosition("nope", 0, 0) || s.SetName("nope", "x") {
		t.Error("mutating an unknown id should report false")
	}
}

// --- RewriteChild ---

func TestRewriteChild(t *testing.T) {
	s := sceneWith(Animal{ID: "p1"}, Animal{ID: "p2"})
	s.AddLine(FamilyLine{Parent1: "p1", Parent2: "p2", Child: "tmp"})
	s.RewriteChild("tmp", "real")

	if got := s.Lines()[0].Child; got != "real" {
		t.Errorf("Child = %q, want %q", got, "real")
	}
}

// --- Snapshot / Load ---

func TestSnapshotExcludesPlaceholders(t *testing.T) {
	s := sceneWith(
		Animal{ID: "a"},
		Animal{ID: "b"},
		Animal{ID: "tmp", Placeholder: true},
	)
	s.AddLine(FamilyLine{Parent1: "a", Parent2: "b", Child: "tmp"})

	snap := s.Snapshot()
	if len(snap.Animals) != 2 {
		t.Errorf("Animals = %v, placeholders must not persist", snap.Animals)
	}
	if len(snap.FamilyLines) != 0 {
		t.Errorf("FamilyLines = %v, lines touching a placeholder must not persist", snap.FamilyLines)
	}
}

func TestSnapshotKeepsCommittedLines(t *testing.T) {
	s := sceneWith(Animal{ID: "a"}, Animal{ID: "b"}, Animal{ID: "c"})
	s.AddLine(FamilyLine{Parent1: "a", Parent2: "b", Child: "c"})

	snap := s.Snapshot()
	if len(snap.FamilyLines) != 1 {
		t.Errorf("FamilyLines = %v, want the committed line", snap.FamilyLines)
	}
}

func TestLoadReplacesScene(t *testing.T) {
	s := sceneWith(Animal{ID: "old"})
	s.AddLine(FamilyLine{Parent1: "old", Parent2: "old2", Child: "old3"})

	s.Load(SceneSnapshot{
		Animals:     []Animal{{ID: "a"}, {ID: "b"}},
		FamilyLines: []FamilyLine{{Parent1: "a", Parent2: "b", Child: "c"}},
	})

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if _, ok := s.Find("old"); ok {
		t.Error("old scene should be gone")
	}
	if len(s.Lines()) != 1 {
		t.Errorf("Lines = %v", s.Lines())
	}
}

// --- Temp ids ---

func TestTempIDs(t *testing.T) {
	a, b := NewTempID(), NewTempID()
	if a == b {
		t.Error("temp ids should be unique")
	}
	if !IsTempID(a) {
		t.Errorf("IsTempID(%q) should be true", a)
	}
	if IsTempID("srv-123") {
		t.Error("backend ids must never look like temp ids")
	}
}

// --- Generation math ---

func TestChildGeneration(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{1, 1, 2},
		{1, 3, 4},
		{3, 1, 4},
		{5, 5, 6},
	}
	for _, tt := range tests {
		if got := ChildGeneration(tt.a, tt.b); got != tt.want {
			t.Errorf("ChildGeneration(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
