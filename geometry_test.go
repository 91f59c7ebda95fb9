package chimera

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},  // top-left edge
		{40, 60, true},  // bottom-right edge
		{25, 30, true},  // interior
		{9, 30, false},  // left of
		{41, 30, false}, // right of
		{25, 61, false}, // below
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRectCenter(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	cx, cy := r.Center()
	if cx != 50 || cy != 25 {
		t.Errorf("Center = (%v, %v)", cx, cy)
	}
}
