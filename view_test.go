package chimera

import "testing"

func newTestView(t *testing.T, animals ...Animal) (*View, *Session) {
	t.Helper()
	s := NewSession(&fakeGen{}, nil, nil, nil)
	for _, a := range animals {
		s.Store().Add(a)
	}
	return NewView(s, "", 800, 600), s
}

// pump drains the injected event queue through the pointer protocol.
func pump(v *View) {
	for v.processInjected() {
	}
}

// --- Clicks ---

func TestViewClickSelectsCard(t *testing.T) {
	v, s := newTestView(t, Animal{ID: "a", X: 100, Y: 100})

	v.InjectClick(170, 200)
	pump(v)

	if !s.Machine().IsSelected("a") {
		t.Error("a body click should select the card")
	}
}

func TestViewClickTopmostCardWins(t *testing.T) {
	v, s := newTestView(t,
		Animal{ID: "under", X: 100, Y: 100},
		Animal{ID: "over", X: 120, Y: 120},
	)

	// The point is inside both cards; the later-added card is on top.
	v.InjectClick(170, 200)
	pump(v)

	if !s.Machine().IsSelected("over") || s.Machine().IsSelected("under") {
		t.Errorf("selected = %v, want the topmost card", s.Machine().Selected())
	}
}

func TestViewCanvasClickDeselects(t *testing.T) {
	v, s := newTestView(t, Animal{ID: "a", X: 100, Y: 100})
	v.InjectClick(170, 200)
	v.InjectClick(500, 300)
	pump(v)

	if len(s.Machine().Selected()) != 0 {
		t.Errorf("selected = %v, canvas click should clear", s.Machine().Selected())
	}
}

func TestViewReleaseOffCardIsNoClick(t *testing.T) {
	v, s := newTestView(t, Animal{ID: "a", X: 100, Y: 100})
	v.InjectPress(170, 200)
	v.InjectRelease(500, 300)
	pump(v)

	if s.Machine().IsSelected("a") {
		t.Error("a press released off the card must not click it")
	}
}

// --- Dead zone / dragging ---

func TestViewSmallMovementIsStillClick(t *testing.T) {
	v, s := newTestView(t, Animal{ID: "a", X: 100, Y: 100})
	v.InjectPress(170, 200)
	v.InjectMove(172, 201) // under the dead zone
	v.InjectRelease(172, 201)
	pump(v)

	if !s.Machine().IsSelected("a") {
		t.Error("movement under the dead zone should still count as a click")
	}
	a, _ := s.Store().Find("a")
	if a.X != 100 || a.Y != 100 {
		t.Errorf("card moved to (%v, %v), want untouched", a.X, a.Y)
	}
}

func TestViewDragMovesCardWithoutSelecting(t *testing.T) {
	v, s := newTestView(t, Animal{ID: "a", X: 100, Y: 100})

	v.InjectDrag(170, 200, 300, 350, 6)
	pump(v)

	a, _ := s.Store().Find("a")
	if a.X != 230 || a.Y != 250 {
		t.Errorf("card at (%v, %v), want (230, 250) preserving the grab offset", a.X, a.Y)
	}
	if s.Machine().IsSelected("a") {
		t.Error("dragging must not change the selection")
	}
}

func TestViewDragRaisesCard(t *testing.T) {
	v, s := newTestView(t,
		Animal{ID: "a", X: 100, Y: 100},
		Animal{ID: "b", X: 400, Y: 100},
	)

	v.InjectDrag(170, 200, 180, 210, 4)
	pump(v)

	all := s.Store().All()
	if all[len(all)-1].ID != "a" {
		t.Error("the dragged card should rise to the top of paint order")
	}
}

// --- Card controls ---

func TestViewLinkButtonArms(t *testing.T) {
	v, s := newTestView(t, Animal{ID: "a", X: 100, Y: 100})

	v.InjectClick(227, 112) // link control, top-right of the card
	pump(v)

	if s.Machine().LinkArmed() != "a" {
		t.Errorf("LinkArmed = %q, want a", s.Machine().LinkArmed())
	}
}

func TestViewZoomButtonOpensOverlay(t *testing.T) {
	v, _ := newTestView(t, Animal{ID: "a", X: 100, Y: 100})

	v.InjectClick(205, 112)
	pump(v)
	if v.zoomID != "a" {
		t.Fatalf("zoomID = %q, want a", v.zoomID)
	}

	// Any press dismisses the modal overlay and is consumed: the release
	// over a card must not turn into a click.
	v.InjectClick(170, 200)
	pump(v)
	if v.zoomID != "" {
		t.Error("press should dismiss the overlay")
	}
	if v.session.Machine().IsSelected("a") {
		t.Error("the dismissing press must not click through the overlay")
	}
}

// --- Rename ---

func TestViewNameClickStartsRename(t *testing.T) {
	v, _ := newTestView(t, Animal{ID: "a", Name: "Axol", X: 100, Y: 100})

	v.InjectClick(110, 110)
	pump(v)

	if v.renameID != "a" || string(v.renameBuf) != "Axol" {
		t.Errorf("renameID=%q buf=%q, want an edit seeded with the old name", v.renameID, string(v.renameBuf))
	}
}

func TestViewPlaceholderNameNotEditable(t *testing.T) {
	v, _ := newTestView(t, Animal{ID: "tmp", Name: "fox", X: 100, Y: 100, Placeholder: true})

	v.InjectClick(110, 110)
	pump(v)

	if v.renameID != "" {
		t.Error("pending cards cannot be renamed")
	}
}

func TestViewClickAwayCancelsRename(t *testing.T) {
	v, _ := newTestView(t, Animal{ID: "a", Name: "Axol", X: 100, Y: 100})
	v.InjectClick(110, 110)
	pump(v)

	v.InjectClick(500, 300)
	pump(v)
	if v.renameID != "" {
		t.Error("clicking away should cancel the edit")
	}
}
