package plate

import (
	"math"
	"sort"

	"github.com/matzehuels/keyplate/pkg/geom"
)

// Scheme describes a family of plate-mounted stabilizers: when a key needs
// one, the wire spacing per key size, and the housing cutout shape.
type Scheme struct {
	// Name identifies the scheme in configuration and output.
	Name string

	// MinUExclusive is the threshold in grid units. A key whose longer side
	// is strictly greater than this gets a stabilizer.
	MinUExclusive float64

	// Spacing maps key length in grid units to the center-to-center
	// distance of the two stabilizer housings, in millimetres.
	Spacing map[float64]float64

	// Template is one housing cutout, drawn for the left side with the
	// switch opening edge at x = 0.
	Template geom.Polygon

	// Opening is the width of the switch opening the two housings sit on
	// either side of.
	Opening float64
}

// spacingTolerance absorbs float noise from unit round trips.
const spacingTolerance = 1e-6

// DefaultSpacing is the common plate-mount stabilizer spacing table.
func DefaultSpacing() map[float64]float64 {
	return map[float64]float64{
		2.25: 28.575,
		2.75: 28.575,
		3:    38.1,
		6.25: 100,
		7:    114.3,
	}
}

// KadScheme returns the KAD plate-mount stabilizer scheme: threshold 2u and
// a 16-point housing outline on each side of a 14 mm opening.
func KadScheme() Scheme {
	const (
		y0 = -2.3
		a  = 1.525
		b  = 4.470
		c  = 1.725
		d  = 1.200
		e  = 3.300
		f  = 6.285
		g  = 0.825
		h  = 2.785
		i  = 3.230
		j  = 6.750
		k  = 3.230
	)
	return Scheme{
		Name:          "kad",
		MinUExclusive: 2.0,
		Spacing:       DefaultSpacing(),
		Opening:       14.0,
		Template: geom.Polygon{
			{X: 0, Y: y0},
			{X: -a, Y: y0},
			{X: -a, Y: y0 - b},
			{X: -a - c, Y: y0 - b},
			{X: -a - c, Y: y0 - b - d},
			{X: -a - c - e, Y: y0 - b - d},
			{X: -a - c - e, Y: y0 - b},
			{X: -a - c - e - c, Y: y0 - b},
			{X: -a - c - e - c, Y: y0 - b + f},
			{X: -a - c - e - c - g, Y: y0 - b + f},
			{X: -a - c - e - c - g, Y: y0 - b + f + h},
			{X: -a - c - e - c, Y: y0 - b + f + h},
			{X: -a - c - e - c, Y: y0 - b + f + h + i},
			{X: -a - c - e - c + j, Y: y0 - b + f + h + i},
			{X: -a - c - e - c + j, Y: y0 - b + f + h + i - k},
			{X: -c - e - c + j, Y: y0 - b + f + h + i - k},
		},
	}
}

// LookupScheme returns the named built-in scheme. "none" and "" report
// ok == true with a nil scheme.
func LookupScheme(name string) (s *Scheme, ok bool) {
	switch name {
	case "", "none":
		return nil, true
	case "kad":
		k := KadScheme()
		return &k, true
	default:
		return nil, false
	}
}

// SchemeNames lists the names accepted by [LookupScheme].
func SchemeNames() []string { return []string{"kad", "none"} }

// WithThreshold returns a copy of s using threshold t.
func (s Scheme) WithThreshold(t float64) Scheme {
	s.MinUExclusive = t
	return s
}

// SpacingForU returns the housing spacing for a key of u grid units. An
// exact table entry wins; otherwise the first entry within 1e-6 is used,
// scanning sizes in ascending order.
func (s Scheme) SpacingForU(u float64) (float64, bool) {
	if v, ok := s.Spacing[u]; ok {
		return v, true
	}
	sizes := make([]float64, 0, len(s.Spacing))
	for size := range s.Spacing {
		sizes = append(sizes, size)
	}
	sort.Float64s(sizes)
	for _, size := range sizes {
		if math.Abs(size-u) < spacingTolerance {
			return s.Spacing[size], true
		}
	}
	return 0, false
}

// Decision is the stabilizer verdict for one key.
type Decision struct {
	Key      int     `json:"key" toml:"key"`
	Eligible bool    `json:"eligible" toml:"eligible"`
	LongerU  float64 `json:"longer_u" toml:"longer_u"`

	// AxisRotation is 0 when the key is at least as wide as it is tall and
	// 90 otherwise. Only meaningful when Eligible.
	AxisRotation float64 `json:"axis_rotation" toml:"axis_rotation"`

	// KeyAngle is the key's own rotation, added on top of AxisRotation when
	// the cutout is drawn.
	KeyAngle float64 `json:"key_angle" toml:"key_angle"`

	// At is where the cutout is centered, as supplied by the caller.
	At geom.Vec `json:"at" toml:"at"`

	// Spacing is the housing spacing from the scheme's table, if the key
	// size has an entry.
	Spacing *float64 `json:"spacing,omitempty" toml:"spacing,omitempty"`
}

// Decide applies the stabilizer rule with threshold in grid units. It has
// no state: the same inputs always give the same Decision.
func Decide(k Key, unit, threshold float64, at geom.Vec) Decision {
	longer := k.LongerU(unit)
	d := Decision{
		Key:      k.Index,
		Eligible: longer > threshold,
		LongerU:  longer,
		KeyAngle: k.Angle,
		At:       at,
	}
	if !d.Eligible {
		return d
	}
	if k.Size.X < k.Size.Y {
		d.AxisRotation = 90
	}
	return d
}

// Decide applies the stabilizer rule with the scheme's threshold and fills
// in the table spacing for eligible keys.
func (s Scheme) Decide(k Key, unit float64, at geom.Vec) Decision {
	d := Decide(k, unit, s.MinUExclusive, at)
	if d.Eligible {
		if v, ok := s.SpacingForU(d.LongerU); ok {
			d.Spacing = &v
		}
	}
	return d
}

// Housings returns the left and right housing polygons around the origin,
// both wound counter-clockwise.
func (s Scheme) Housings() (left, right geom.Polygon) {
	half := geom.Vec{X: s.Opening / 2}
	left = geom.CCW(s.Template.Translate(half.Scale(-1)))
	right = geom.CCW(s.Template.MirrorX().Translate(half))
	return left, right
}

// Cutout returns the two housing polygons for d. The housings are turned
// about their own origin by the decision's axis rotation plus the key angle
// and then moved to d.At. Ineligible decisions return nil polygons.
func (s Scheme) Cutout(d Decision) (left, right geom.Polygon) {
	if !d.Eligible {
		return nil, nil
	}
	l, r := s.Housings()
	deg := d.AxisRotation + d.KeyAngle
	return l.Transform(deg, d.At), r.Transform(deg, d.At)
}
