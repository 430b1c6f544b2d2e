package geom

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	MinX float64 `json:"min_x" toml:"min_x"`
	MinY float64 `json:"min_y" toml:"min_y"`
	MaxX float64 `json:"max_x" toml:"max_x"`
	MaxY float64 `json:"max_y" toml:"max_y"`
}

// EmptyBox returns a box that contains nothing; extending it with any point
// yields a zero-size box at that point.
func EmptyBox() Box {
	return Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether the box has never been extended.
func (b Box) IsEmpty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p Vec) Box {
	return Box{
		MinX: math.Min(b.MinX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X),
		MaxY: math.Max(b.MaxY, p.Y),
	}
}

// Width returns the horizontal span of the box.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical span of the box.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Box) Center() Vec {
	return Vec{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside b, edges included, allowing eps of slack.
func (b Box) Contains(p Vec, eps float64) bool {
	return p.X >= b.MinX-eps && p.X <= b.MaxX+eps &&
		p.Y >= b.MinY-eps && p.Y <= b.MaxY+eps
}

// Grow returns b expanded by m on every side. Negative m shrinks it.
func (b Box) Grow(m float64) Box {
	return Box{MinX: b.MinX - m, MinY: b.MinY - m, MaxX: b.MaxX + m, MaxY: b.MaxY + m}
}
