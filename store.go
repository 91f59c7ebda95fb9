package chimera

// Store is the in-memory canonical scene: every animal on the canvas plus
// the family lines between them. All mutation goes through its methods so
// the cross-invariant (a family line only ever references animals that
// exist) is enforced in one place. Every method is synchronous; after any
// call returns the store is one consistent snapshot, immediately usable for
// rendering or persistence.
//
// Insertion order is preserved and doubles as paint order: later animals
// draw (and hit-test) on top of earlier ones.
type Store struct {
	order []string
	byID  map[string]*Animal
	lines []FamilyLine
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Animal)}
}

// Add inserts an animal. Adding an id that already exists replaces the
// existing animal in place, keeping its paint position.
func (s *Store) Add(a Animal) {
	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = &a
}

// Remove deletes the animal with the given id and, atomically with it,
// every family line touching that id. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	kept := s.lines[:0]
	for _, l := range s.lines {
		if !l.Touches(id) {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	return true
}

// Find returns a copy of the animal with the given id.
func (s *Store) Find(id string) (Animal, bool) {
	a, ok := s.byID[id]
	if !ok {
		return Animal{}, false
	}
	return *a, true
}

// All returns copies of every animal in paint order.
func (s *Store) All() []Animal {
	out := make([]Animal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// Len returns the number of animals.
func (s *Store) Len() int {
	return len(s.order)
}

// SetPosition moves an animal. Works on placeholders too: a pending card
// may be dragged before its request resolves.
func (s *Store) SetPosition(id string, x, y float64) bool {
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.X, a.Y = x, y
	return true
}

// SetName renames an animal.
func (s *Store) SetName(id, name string) bool {
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.Name = name
	return true
}

// RaiseToTop moves an animal to the end of paint order so it renders and
// hit-tests above its neighbours.
func (s *Store) RaiseToTop(id string) {
	for i, oid := range s.order {
		if oid == id {
			s.order = append(append(s.order[:i:i], s.order[i+1:]...), id)
			return
		}
	}
}

// AddLine records a family line. Ids are not validated here: speculative
// lines pointing at a placeholder child are the normal case, and the
// connector engine skips anything unresolved.
func (s *Store) AddLine(l FamilyLine) {
	s.lines = append(s.lines, l)
}

// Lines returns a copy of the family line set.
func (s *Store) Lines() []FamilyLine {
	return append([]FamilyLine(nil), s.lines...)
}

// RewriteChild replaces oldID with newID in the child slot of every line.
// Used when a placeholder is promoted to a backend-issued id.
func (s *Store) RewriteChild(oldID, newID string) {
	for i := range s.lines {
		if s.lines[i].Child == oldID {
			s.lines[i].Child = newID
		}
	}
}

// Snapshot serializes the committed scene. Placeholders and the speculative
// lines pointing at them are in-flight state, not committed state, so they
// are left out.
func (s *Store) Snapshot() SceneSnapshot {
	snap := SceneSnapshot{}
	for _, id := range s.order {
		a := s.byID[id]
		if a.Placeholder {
			continue
		}
		snap.Animals = append(snap.Animals, *a)
	}
	for _, l := range s.lines {
		if s.isPlaceholder(l.Parent1) || s.isPlaceholder(l.Parent2) || s.isPlaceholder(l.Child) {
			continue
		}
		snap.FamilyLines = append(snap.FamilyLines, l)
	}
	return snap
}

// Load replaces the scene with the snapshot contents, verbatim.
func (s *Store) Load(snap SceneSnapshot) {
	s.order = s.order[:0]
	s.byID = make(map[string]*Animal, len(snap.Animals))
	s.lines = append(s.lines[:0], snap.FamilyLines...)
	for _, a := range snap.Animals {
		s.Add(a)
	}
}

func (s *Store) isPlaceholder(id string) bool {
	a, ok := s.byID[id]
	return ok && a.Placeholder
}
