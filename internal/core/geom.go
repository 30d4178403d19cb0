// Package core provides fundamental types shared by the simulation and the
// terminal front-end. It has no external dependencies so the physics stays
// pure and testable.
package core

import "math"

// Box is an axis-aligned bounding box in field coordinates.
type Box struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// NewBox creates a box from its top-left corner and size.
func NewBox(x, y, w, h float64) Box {
	return Box{X: x, Y: y, W: w, H: h}
}

// BoxAround returns the bounding box of a circle.
func BoxAround(cx, cy, radius float64) Box {
	return Box{X: cx - radius, Y: cy - radius, W: radius * 2, H: radius * 2}
}

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 {
	return b.X + b.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 {
	return b.Y + b.H
}

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 {
	return b.Y + b.H/2
}

// Intersects reports whether two boxes overlap. Touching edges count as a hit,
// matching how the ball is resolved flush against a paddle face.
func (b Box) Intersects(other Box) bool {
	if b.X > other.Right() || other.X > b.Right() {
		return false
	}
	if b.Y > other.Bottom() || other.Y > b.Bottom() {
		return false
	}
	return true
}

// Clamp restricts an integer to [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampF restricts a float64 to [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Sign returns -1, 0 or +1.
func Sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// Hypot returns the length of the vector (dx, dy).
func Hypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
