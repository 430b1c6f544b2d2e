package plate

import (
	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/geom"
)

// Bounds returns the axis-aligned box enclosing every key footprint. Each
// footprint is rotated about its own center by its own angle before it is
// folded in.
//
// It returns a NO_KEYS error when keys is empty.
func Bounds(keys []Key) (geom.Box, error) {
	if len(keys) == 0 {
		return geom.Box{}, errors.New(errors.ErrCodeNoKeys, "layout has no keys")
	}
	b := geom.EmptyBox()
	for _, k := range keys {
		for _, c := range k.Corners() {
			b = b.Extend(c)
		}
	}
	return b, nil
}
