package core

import (
	"math"
	"testing"
)

func TestBoxIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{
			name:     "overlapping boxes",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "separated horizontally",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(15, 0, 10, 10),
			expected: false,
		},
		{
			name:     "separated vertically",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(0, 15, 10, 10),
			expected: false,
		},
		{
			name:     "touching edges",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(10, 0, 10, 10),
			expected: true,
		},
		{
			name:     "contained box",
			a:        NewBox(0, 0, 20, 20),
			b:        NewBox(5, 5, 5, 5),
			expected: true,
		},
		{
			name:     "ball box against paddle",
			a:        BoxAround(38, 200, 8),
			b:        NewBox(20, 150, 15, 100),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestBoxAround(t *testing.T) {
	b := BoxAround(400, 200, 8)
	if b.X != 392 || b.Y != 192 || b.W != 16 || b.H != 16 {
		t.Errorf("BoxAround() = %+v", b)
	}
	if b.CenterY() != 200 {
		t.Errorf("CenterY() = %v, expected 200", b.CenterY())
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected float64
	}{
		{-5, 0, 300, 0},
		{150, 0, 300, 150},
		{1e9, 0, 300, 300},
		{300, 0, 300, 300},
	}
	for _, tc := range tests {
		if got := ClampF(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("ClampF(%v, %v, %v) = %v, expected %v", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}
}

func TestSignAndHypot(t *testing.T) {
	if Sign(-3) != -1 || Sign(0) != 0 || Sign(2) != 1 {
		t.Error("Sign() returned unexpected values")
	}
	if math.Abs(Hypot(3, 4)-5) > 1e-9 {
		t.Errorf("Hypot(3, 4) = %v, expected 5", Hypot(3, 4))
	}
}
