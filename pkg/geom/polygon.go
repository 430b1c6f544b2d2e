package geom

// Polygon is a closed ring of vertices. The closing edge from the last
// vertex back to the first is implicit.
type Polygon []Vec

// degenerateArea is the signed-area magnitude below which a ring is treated
// as having no orientation.
const degenerateArea = 1e-10

// SignedArea returns the shoelace area of p: positive for counter-clockwise
// rings in a Y-up frame, negative for clockwise ones.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// CCW returns a copy of p wound counter-clockwise. Rings with fewer than
// three vertices or a near-zero area are returned as an unchanged copy.
func CCW(p Polygon) Polygon {
	a := p.SignedArea()
	if len(p) < 3 || abs(a) < degenerateArea || a > 0 {
		return p.clone()
	}
	return p.reversed()
}

// CW returns a copy of p wound clockwise, with the same degenerate-ring
// rules as CCW.
func CW(p Polygon) Polygon {
	a := p.SignedArea()
	if len(p) < 3 || abs(a) < degenerateArea || a < 0 {
		return p.clone()
	}
	return p.reversed()
}

// Transform rotates every vertex about the origin by deg degrees and then
// translates by offset.
func (p Polygon) Transform(deg float64, offset Vec) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Rotate(v, deg, Vec{}).Add(offset)
	}
	return out
}

// MirrorX returns p reflected across the Y axis (x -> -x).
func (p Polygon) MirrorX() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Vec{-v.X, v.Y}
	}
	return out
}

// Translate returns p shifted by offset.
func (p Polygon) Translate(offset Vec) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(offset)
	}
	return out
}

// Bounds returns the axis-aligned box of all vertices.
func (p Polygon) Bounds() Box {
	b := EmptyBox()
	for _, v := range p {
		b = b.Extend(v)
	}
	return b
}

func (p Polygon) clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

func (p Polygon) reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
