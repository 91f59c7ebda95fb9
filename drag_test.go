package chimera

import "testing"

func TestDragKeepsGrabOffset(t *testing.T) {
	var d Drag
	// Card at (100, 100), grabbed at (110, 120).
	d.Start("a", 110, 120, 100, 100)
	if !d.Active() || d.ID() != "a" {
		t.Fatalf("Active=%v ID=%q", d.Active(), d.ID())
	}

	x, y := d.MoveTo(210, 220)
	if x != 200 || y != 200 {
		t.Errorf("MoveTo = (%v, %v), want (200, 200)", x, y)
	}
}

func TestDragEnd(t *testing.T) {
	var d Drag
	d.Start("a", 0, 0, 0, 0)
	if got := d.End(); got != "a" {
		t.Errorf("End = %q, want a", got)
	}
	if d.Active() {
		t.Error("drag should be inactive after End")
	}
	if got := d.End(); got != "" {
		t.Errorf("second End = %q, want empty", got)
	}
}
