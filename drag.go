package chimera

// Drag tracks the card being repositioned by the pointer. It records the
// grabbed animal id and the pointer-to-card-corner offset at grab time, so
// the card does not jump under the cursor. Drag state is fully independent
// of selection and link mode: grabbing a card changes neither, and any
// card may be dragged, including an unresolved placeholder.
type Drag struct {
	id      string
	offsetX float64
	offsetY float64
}

// Start grabs the card with the given id. (px, py) is the pointer position
// and (cardX, cardY) the card's current top-left corner.
func (d *Drag) Start(id string, px, py, cardX, cardY float64) {
	d.id = id
	d.offsetX = px - cardX
	d.offsetY = py - cardY
}

// Active reports whether a card is currently grabbed.
func (d *Drag) Active() bool {
	return d.id != ""
}

// ID returns the grabbed animal id, or "".
func (d *Drag) ID() string {
	return d.id
}

// MoveTo translates a pointer position into the grabbed card's new
// top-left corner.
func (d *Drag) MoveTo(px, py float64) (x, y float64) {
	return px - d.offsetX, py - d.offsetY
}

// End releases the grab and returns the id that was dragged, or "" if no
// drag was active.
func (d *Drag) End() string {
	id := d.id
	d.id = ""
	return id
}
