package chimera

// Creation is what the generation backend returns for a successful
// generate or breed call: a backend-issued id, a name, and a reference to
// the rendered image asset.
type Creation struct {
	ID       string
	Name     string
	ImageRef string
}

// Cards owns the optimistic placeholder protocol. A placeholder card is a
// purely local, instantaneous commitment shown while a remote generation is
// in flight; exactly one placeholder exists per request, and independent
// requests use independent temp ids so any number may be pending at once.
type Cards struct {
	store *Store
}

// NewCards returns a lifecycle manager over the given store.
func NewCards(store *Store) *Cards {
	return &Cards{store: store}
}

// CreatePlaceholder inserts a loading-state card at (x, y) and returns its
// temp id. No network call happens here.
func (c *Cards) CreatePlaceholder(label string, x, y float64, generation int) string {
	tempID := NewTempID()
	c.store.Add(Animal{
		ID:          tempID,
		Name:        label,
		Generation:  generation,
		X:           x,
		Y:           y,
		Placeholder: true,
	})
	return tempID
}

// ResolveSuccess swaps the placeholder for the real animal. The position is
// read from the placeholder *now*, not from where it was created: the user
// may have dragged the pending card while the request was in flight, and
// the current position wins. Speculative family lines pointing at the temp
// id are rewritten to the backend-issued id.
//
// Returns false if the placeholder no longer exists.
func (c *Cards) ResolveSuccess(tempID string, res Creation, generation int) (Animal, bool) {
	ph, ok := c.store.Find(tempID)
	if !ok {
		return Animal{}, false
	}
	// Rewrite lines first so removing the placeholder cannot cascade them.
	c.store.RewriteChild(tempID, res.ID)
	c.store.Remove(tempID)
	a := Animal{
		ID:         res.ID,
		Name:       res.Name,
		ImageRef:   res.ImageRef,
		Generation: generation,
		X:          ph.X,
		Y:          ph.Y,
	}
	c.store.Add(a)
	return a, true
}

// ResolveFailure rolls the placeholder back: the card and every family
// line referencing it are removed together. No automatic retry.
func (c *Cards) ResolveFailure(tempID string) {
	c.store.Remove(tempID)
}
