// Package plate turns interpreted key placements into switch-plate geometry.
//
// It sits between [github.com/matzehuels/keyplate/pkg/kle], which produces
// placements in layout grid units, and whatever solid-modeling tool cuts the
// actual plate. Nothing here builds solids; the output is a flat description
// of the outline and every cutout.
//
// # Units and Orientation
//
// [FromGrid] scales grid units by a linear unit (19.05 mm per key unit by
// default, see [DefaultUnit]) and flips the Y axis so that up is positive.
// Angles are not changed: a rotation that is clockwise on screen in the
// layout editor stays clockwise when viewed from above the plate.
//
// # Bounds
//
// [Bounds] returns the tightest axis-aligned box around every key's rotated
// footprint. An empty placement list is an error with code NO_KEYS.
//
// # Stabilizers
//
// A [Scheme] decides which keys need a stabilizer and how to orient it:
//
//	d := plate.KadScheme().Decide(key, plate.DefaultUnit, at)
//	if d.Eligible {
//	    left, right := plate.KadScheme().Cutout(d)
//	}
//
// A key is eligible when its longer side, in grid units, is strictly greater
// than the scheme's threshold. The stabilizer runs along the longer side.
//
// # Building a Plate
//
// [Build] combines the above into a [Plate]: outline size, one rounded
// switch cutout per key and the stabilizer cutouts, all positioned relative
// to the plate center:
//
//	keys, _ := kle.Parse(text)
//	p, err := plate.Build(plate.FromGridKeys(keys, plate.DefaultUnit), plate.DefaultParams())
//
// [MarshalPlate], [MarshalPlateTOML] and [WritePlateFile] serialize the result.
package plate
