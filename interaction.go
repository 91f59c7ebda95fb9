package chimera

// Machine interprets card and canvas clicks into selection changes and
// breed requests. It owns two pieces of state: the ordered selection set
// and the link-mode armed card. Link mode is an orthogonal modifier, not a
// third selection slot: arming card C means "C is one parent, breed with
// whatever compatible card is picked next".
//
// Dragging is deliberately not represented here: drag state lives in
// [Drag] and never changes selection or link mode.
type Machine struct {
	sel       Selection
	linkArmed string

	// canBreed gates a candidate pair: both ids must resolve to distinct
	// live animals and neither may be an unresolved placeholder. Breeding
	// is otherwise permissive: the same pair may be bred again while a
	// prior request is still pending.
	canBreed func(a, b string) bool

	// breed fires the actual breed action for an accepted pair.
	breed func(a, b string)
}

// NewMachine returns a machine in the idle state. canBreed may be nil, in
// which case every distinct pair is accepted.
func NewMachine(canBreed func(a, b string) bool, breed func(a, b string)) *Machine {
	if canBreed == nil {
		canBreed = func(a, b string) bool { return a != b }
	}
	return &Machine{canBreed: canBreed, breed: breed}
}

// ClickCard handles a plain click on a card body.
//
// A click on an already-selected card deselects it, disarming link mode if
// that card was the armed one. Otherwise the card is added to the selection
// (evicting the oldest if two were already held) and a breed fires the
// moment an acceptable pair is assembled.
func (m *Machine) ClickCard(id string) {
	if m.sel.Contains(id) {
		m.sel.Remove(id)
		if m.linkArmed == id {
			// Deselecting the armed card returns link mode to idle, same
			// as toggling it off. Link mode never outlives its selection.
			m.linkArmed = ""
		}
		return
	}
	m.sel.Add(id)
	if m.linkArmed != "" && !m.sel.Contains(m.linkArmed) {
		// The armed card was evicted from the selection; disarm it.
		m.linkArmed = ""
	}
	m.tryBreed()
}

// ToggleLink handles the link-mode control on a card.
//
// Toggling the armed card disarms it and returns to idle. Toggling a card
// while a different card is selected breeds the two immediately. Toggling
// with nothing else selected selects the card and arms it.
func (m *Machine) ToggleLink(id string) {
	if m.linkArmed == id {
		m.linkArmed = ""
		m.sel.Clear()
		return
	}
	if other, ok := m.sel.Sole(); ok && other != id {
		m.sel.Add(id)
		if m.tryBreed() {
			return
		}
		// Pair was rejected (e.g. a pending placeholder); fall through and
		// arm the toggled card instead.
	}
	m.sel.Clear()
	m.sel.Add(id)
	m.linkArmed = id
}

// ClickCanvas handles a click on empty canvas: full deselect, disarm.
func (m *Machine) ClickCanvas() {
	m.sel.Clear()
	m.linkArmed = ""
}

// Forget drops any reference the machine holds to id. Called when an
// animal is removed (placeholder rollback) so no stale id lingers in the
// selection or stays armed.
func (m *Machine) Forget(id string) {
	m.sel.Remove(id)
	if m.linkArmed == id {
		m.linkArmed = ""
	}
}

// Selected returns the selected ids in insertion order.
func (m *Machine) Selected() []string {
	return m.sel.IDs()
}

// IsSelected reports whether id is currently selected.
func (m *Machine) IsSelected(id string) bool {
	return m.sel.Contains(id)
}

// LinkArmed returns the id of the link-mode armed card, or "".
func (m *Machine) LinkArmed() string {
	return m.linkArmed
}

// tryBreed fires the breed action if the selection holds an acceptable
// pair, clearing selection and link mode on success.
func (m *Machine) tryBreed() bool {
	a, b, ok := m.sel.Pair()
	if !ok || !m.canBreed(a, b) {
		return false
	}
	m.sel.Clear()
	m.linkArmed = ""
	if m.breed != nil {
		m.breed(a, b)
	}
	return true
}
