package pipeline

import (
	"fmt"

	"github.com/matzehuels/keyplate/pkg/plate"
)

// Export encodes p in every requested format.
func Export(p *plate.Plate, opts Options) (map[string][]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("export: nil plate")
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := plate.Encode(*p, format)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
