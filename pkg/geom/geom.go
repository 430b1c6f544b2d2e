// Package geom provides the small amount of 2-D geometry keyplate needs:
// vectors, rotation about an arbitrary origin, axis-aligned boxes and
// polygon winding.
//
// Angles are in degrees. A positive angle rotates counter-clockwise in a
// Y-up frame, which is the same as clockwise in the Y-down frame used by
// keyboard layout files. This is what lets a rotation computed in layout
// grid units carry over unchanged after the Y axis is flipped.
package geom

import "math"

// Vec is a 2-D point or extent.
type Vec struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s on both axes.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Rotate rotates p about origin by deg degrees.
//
// A zero angle returns p unchanged without evaluating any trigonometry, so
// unrotated keys keep their exact coordinates.
func Rotate(p Vec, deg float64, origin Vec) Vec {
	if deg == 0 {
		return p
	}
	a := deg * math.Pi / 180
	sin, cos := math.Sincos(a)
	dx, dy := p.X-origin.X, p.Y-origin.Y
	return Vec{
		X: origin.X + dx*cos - dy*sin,
		Y: origin.Y + dx*sin + dy*cos,
	}
}

// Corners returns the four corners of the rectangle with the given center
// and size, rotated about the center by deg degrees. Order is
// bottom-left, bottom-right, top-right, top-left before rotation.
func Corners(center, size Vec, deg float64) [4]Vec {
	hw, hh := size.X/2, size.Y/2
	pts := [4]Vec{
		{center.X - hw, center.Y - hh},
		{center.X + hw, center.Y - hh},
		{center.X + hw, center.Y + hh},
		{center.X - hw, center.Y + hh},
	}
	for i, p := range pts {
		pts[i] = Rotate(p, deg, center)
	}
	return pts
}

// ApproxEqual reports whether a and b are within eps on both axes.
func ApproxEqual(a, b Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}
