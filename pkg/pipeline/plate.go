package pipeline

import (
	"github.com/matzehuels/keyplate/pkg/plate"
)

// BuildPlate derives the plate for keys using the plate options.
func BuildPlate(keys []plate.Key, opts Options) (*plate.Plate, error) {
	params, err := opts.Params()
	if err != nil {
		return nil, err
	}
	p, err := plate.Build(keys, params)
	if err != nil {
		return nil, err
	}
	opts.log().Debug("derived plate",
		"name", opts.Name,
		"width", p.Width,
		"height", p.Height,
		"stabilizers", len(p.Stabilizers))
	return p, nil
}
