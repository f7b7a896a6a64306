package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"outside left", 5, 15, false},
		{"outside right", 35, 15, false},
		{"outside top", 15, 5, false},
		{"outside bottom", 15, 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := r.Contains(tc.x, tc.y)
			if result != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestCenteredRect(t *testing.T) {
	r := CenteredRect(NewRect(0, 0, 80, 24), 20, 6)
	if r.X != 30 || r.Y != 9 || r.W != 20 || r.H != 6 {
		t.Errorf("CenteredRect() = %+v, expected {30 9 20 6}", r)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.lo, tc.hi)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	if got := ClampF(-130, -120, 120); got != -120 {
		t.Errorf("ClampF(-130) = %v, expected -120", got)
	}
	if got := ClampF(47.5, -120, 120); got != 47.5 {
		t.Errorf("ClampF(47.5) = %v, expected 47.5", got)
	}
}

func TestAbs(t *testing.T) {
	if Abs(5) != 5 || Abs(-5) != 5 || Abs(0) != 0 {
		t.Error("Abs returned a wrong value")
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		v        float64
		expected int
	}{
		{-120, 0},
		{0, 40},
		{120, 80},
		{60, 60},
	}

	for _, tc := range tests {
		if got := Scale(tc.v, -120, 120, 0, 80); got != tc.expected {
			t.Errorf("Scale(%v) = %d, expected %d", tc.v, got, tc.expected)
		}
	}

	if got := Scale(5, 1, 1, 3, 9); got != 3 {
		t.Errorf("degenerate Scale() = %d, expected 3", got)
	}
}

func TestUnscaleInvertsScale(t *testing.T) {
	for cell := 0; cell <= 80; cell += 10 {
		x := Unscale(cell, 0, 80, -120, 120)
		if back := Scale(x, -120, 120, 0, 80); back != cell {
			t.Errorf("Scale(Unscale(%d)) = %d", cell, back)
		}
	}
}
