package plate

import (
	"github.com/matzehuels/keyplate/pkg/geom"
	"github.com/matzehuels/keyplate/pkg/kle"
)

// DefaultUnit is the physical size of one key unit in millimetres.
const DefaultUnit = 19.05

// Key is a key placement in linear units with Y pointing up.
type Key struct {
	Index int    `json:"index" toml:"index"`
	Row   int    `json:"row" toml:"row"`
	Label string `json:"label" toml:"label"`

	Center geom.Vec `json:"center" toml:"center"`
	Size   geom.Vec `json:"size" toml:"size"`
	Angle  float64  `json:"angle" toml:"angle"`
}

// FromGrid converts a grid-unit placement to linear units.
//
// The center is scaled and its Y negated; the size is scaled; the angle is
// kept as is.
func FromGrid(k kle.Key, unit float64) Key {
	return Key{
		Index:  k.Index,
		Row:    k.Row,
		Label:  k.Label,
		Center: geom.Vec{X: k.Center.X * unit, Y: -k.Center.Y * unit},
		Size:   k.Size.Scale(unit),
		Angle:  k.Angle,
	}
}

// FromGridKeys converts every placement with [FromGrid], keeping order.
func FromGridKeys(keys []kle.Key, unit float64) []Key {
	out := make([]Key, len(keys))
	for i, k := range keys {
		out[i] = FromGrid(k, unit)
	}
	return out
}

// LongerU returns the longer side of k in grid units.
func (k Key) LongerU(unit float64) float64 {
	return max(k.Size.X, k.Size.Y) / unit
}

// Corners returns the four corners of the key footprint, rotated about the
// key center by the key angle.
func (k Key) Corners() [4]geom.Vec {
	return geom.Corners(k.Center, k.Size, k.Angle)
}
