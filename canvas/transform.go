// Package canvas maps seat positions between percentage space, canvas pixels
// and screen pixels under the current pan/zoom.
package canvas

import "math"

// ZoomStep is the scale factor applied per wheel notch.
const ZoomStep = 1.02

// Point is a position in either percent, canvas or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is the pixel size of the rendering surface.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// ToPixel converts a percentage position into canvas pixels.
func ToPixel(pct Point, size Size) Point {
	return Point{
		X: pct.X / 100 * size.Width,
		Y: pct.Y / 100 * size.Height,
	}
}

// ToPercent converts canvas pixels into a percentage position. Callers must
// check size.Valid first.
func ToPercent(px Point, size Size) Point {
	return Point{
		X: px.X / size.Width * 100,
		Y: px.Y / size.Height * 100,
	}
}

// ScreenToCanvas undoes a pan offset and uniform scale.
func ScreenToCanvas(pointer Point, pan Point, scale float64) Point {
	return Point{
		X: (pointer.X - pan.X) / scale,
		Y: (pointer.Y - pan.Y) / scale,
	}
}

// Transform is a 2D affine matrix using the canvas-2D layout:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// Translation returns a pure translation.
func Translation(dx, dy float64) Transform {
	return Transform{A: 1, D: 1, E: dx, F: dy}
}

// Scaling returns a uniform scale about the origin.
func Scaling(s float64) Transform {
	return Transform{A: s, D: s}
}

// Multiply returns t·o, i.e. o is applied first.
func (t Transform) Multiply(o Transform) Transform {
	return Transform{
		A: t.A*o.A + t.C*o.B,
		B: t.B*o.A + t.D*o.B,
		C: t.A*o.C + t.C*o.D,
		D: t.B*o.C + t.D*o.D,
		E: t.A*o.E + t.C*o.F + t.E,
		F: t.B*o.E + t.D*o.F + t.F,
	}
}

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
	}
}

// Invert returns the inverse of t. ok is false for a singular matrix.
func (t Transform) Invert() (Transform, bool) {
	det := t.A*t.D - t.B*t.C
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Transform{}, false
	}
	inv := 1 / det
	return Transform{
		A: t.D * inv,
		B: -t.B * inv,
		C: -t.C * inv,
		D: t.A * inv,
		E: (t.C*t.F - t.D*t.E) * inv,
		F: (t.B*t.E - t.A*t.F) * inv,
	}, true
}
