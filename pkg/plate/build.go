package plate

import (
	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/geom"
	"github.com/matzehuels/keyplate/pkg/kle"
)

// Default plate parameters, in millimetres.
const (
	DefaultMargin       = 3.0
	DefaultThickness    = 1.5
	DefaultSwitchCutout = 14.0
	DefaultCornerRadius = 0.5
)

// Params controls plate derivation.
type Params struct {
	Unit         float64 // size of one key unit
	Margin       float64 // added on every side of the key bounds
	Thickness    float64 // plate thickness, passed through to the output
	SwitchCutout float64 // side of the square switch opening
	CornerRadius float64 // switch opening corner radius

	// Stabilizer is the stabilizer scheme. Nil means no stabilizer cutouts.
	Stabilizer *Scheme
}

// DefaultParams returns the standard MX plate parameters with the KAD
// stabilizer scheme.
func DefaultParams() Params {
	kad := KadScheme()
	return Params{
		Unit:         DefaultUnit,
		Margin:       DefaultMargin,
		Thickness:    DefaultThickness,
		SwitchCutout: DefaultSwitchCutout,
		CornerRadius: DefaultCornerRadius,
		Stabilizer:   &kad,
	}
}

// Validate checks that p describes a plate that can be built.
func (p Params) Validate() error {
	if err := errors.ValidatePositive("unit", p.Unit); err != nil {
		return err
	}
	if err := errors.ValidatePositive("switch cutout", p.SwitchCutout); err != nil {
		return err
	}
	if err := errors.ValidatePositive("thickness", p.Thickness); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("margin", p.Margin); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("corner radius", p.CornerRadius); err != nil {
		return err
	}
	if p.CornerRadius*2 > p.SwitchCutout {
		return errors.New(errors.ErrCodeInvalidInput,
			"corner radius %g is too large for a %g switch cutout", p.CornerRadius, p.SwitchCutout)
	}
	return nil
}

// Plate is the flat description of a switch plate. All cutout positions are
// relative to the plate center, which sits at the origin.
type Plate struct {
	Unit      float64 `json:"unit" toml:"unit"`
	Width     float64 `json:"width" toml:"width"`
	Height    float64 `json:"height" toml:"height"`
	Thickness float64 `json:"thickness" toml:"thickness"`
	Margin    float64 `json:"margin" toml:"margin"`

	// KeyBounds is the key bounding box in layout coordinates and
	// Offset its center. Subtracting Offset maps a layout point onto the
	// plate.
	KeyBounds geom.Box `json:"key_bounds" toml:"key_bounds"`
	Offset    geom.Vec `json:"offset" toml:"offset"`

	Scheme      string       `json:"stabilizer_scheme,omitempty" toml:"stabilizer_scheme,omitempty"`
	Switches    []Switch     `json:"switches" toml:"switches"`
	Stabilizers []Stabilizer `json:"stabilizers,omitempty" toml:"stabilizers,omitempty"`
}

// Switch is a square switch opening with rounded corners.
type Switch struct {
	Key          int      `json:"key" toml:"key"`
	Label        string   `json:"label" toml:"label"`
	Center       geom.Vec `json:"center" toml:"center"`
	Size         float64  `json:"size" toml:"size"`
	CornerRadius float64  `json:"corner_radius" toml:"corner_radius"`
	Angle        float64  `json:"angle" toml:"angle"`
}

// Stabilizer is the pair of housing cutouts for one oversized key.
type Stabilizer struct {
	Decision Decision     `json:"decision" toml:"decision"`
	Left     geom.Polygon `json:"left" toml:"left"`
	Right    geom.Polygon `json:"right" toml:"right"`
}

// Outline returns the plate rectangle centered on the origin.
func (p Plate) Outline() geom.Box {
	return geom.Box{MinX: -p.Width / 2, MinY: -p.Height / 2, MaxX: p.Width / 2, MaxY: p.Height / 2}
}

// Build derives the plate for keys.
//
// The outline is the key bounds grown by the margin. Every key gets a switch
// opening at its center, shifted so the plate center is the origin, turned
// by the key angle. Keys the stabilizer scheme marks eligible also get a
// housing pair at the same shifted position.
//
// It returns INVALID_INPUT for bad parameters and NO_KEYS when keys is empty.
func Build(keys []Key, p Params) (*Plate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	box, err := Bounds(keys)
	if err != nil {
		return nil, err
	}

	center := box.Center()
	out := &Plate{
		Unit:      p.Unit,
		Width:     box.Width() + 2*p.Margin,
		Height:    box.Height() + 2*p.Margin,
		Thickness: p.Thickness,
		Margin:    p.Margin,
		KeyBounds: box,
		Offset:    center,
		Switches:  make([]Switch, 0, len(keys)),
	}
	if p.Stabilizer != nil {
		out.Scheme = p.Stabilizer.Name
	}

	for _, k := range keys {
		local := k.Center.Sub(center)
		out.Switches = append(out.Switches, Switch{
			Key:          k.Index,
			Label:        k.Label,
			Center:       local,
			Size:         p.SwitchCutout,
			CornerRadius: p.CornerRadius,
			Angle:        k.Angle,
		})

		if p.Stabilizer == nil {
			continue
		}
		d := p.Stabilizer.Decide(k, p.Unit, local)
		if !d.Eligible {
			continue
		}
		left, right := p.Stabilizer.Cutout(d)
		out.Stabilizers = append(out.Stabilizers, Stabilizer{Decision: d, Left: left, Right: right})
	}
	return out, nil
}

// BuildFromLayout parses fragment and builds its plate in one step.
func BuildFromLayout(fragment string, p Params) (*Plate, error) {
	grid, err := kle.Parse(fragment)
	if err != nil {
		return nil, err
	}
	return Build(FromGridKeys(grid, p.Unit), p)
}
