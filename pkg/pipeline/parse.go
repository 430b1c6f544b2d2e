package pipeline

import (
	"github.com/matzehuels/keyplate/pkg/kle"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// Parse interprets the layout text into placements in linear units.
//
// It returns MALFORMED_LAYOUT errors from the interpreter unchanged so
// callers can show the offending fragment.
func Parse(opts Options) ([]plate.Key, error) {
	grid, err := kle.Parse(opts.Layout)
	if err != nil {
		return nil, err
	}
	keys := plate.FromGridKeys(grid, opts.Unit)
	opts.log().Debug("interpreted layout", "name", opts.Name, "keys", len(keys))
	return keys, nil
}
