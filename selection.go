package chimera

// maxSelected is the size cap on the selection set. Reaching it is what
// triggers a breed, so it is exactly the number of parents.
const maxSelected = 2

// Selection is an ordered set of at most two animal ids. Insertion order is
// significant: when a third id is added, the oldest is evicted first.
// Ephemeral UI state, never persisted.
type Selection struct {
	ids []string
}

// Add appends id, evicting the oldest entry if the set is already full.
// Adding an id that is already present is a no-op.
func (s *Selection) Add(id string) {
	if s.Contains(id) {
		return
	}
	s.ids = append(s.ids, id)
	if len(s.ids) > maxSelected {
		s.ids = s.ids[len(s.ids)-maxSelected:]
	}
}

// Remove deletes id from the set if present.
func (s *Selection) Remove(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Pair returns the two selected ids in insertion order, if exactly two are
// selected.
func (s *Selection) Pair() (a, b string, ok bool) {
	if len(s.ids) != 2 {
		return "", "", false
	}
	return s.ids[0], s.ids[1], true
}

// Sole returns the single selected id, if exactly one is selected.
func (s *Selection) Sole() (string, bool) {
	if len(s.ids) != 1 {
		return "", false
	}
	return s.ids[0], true
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Clear empties the set.
func (s *Selection) Clear() {
	s.ids = s.ids[:0]
}

// IDs returns a copy of the selected ids in insertion order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}
