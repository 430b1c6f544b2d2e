// Package pkg provides the core libraries for Keyplate switch plate derivation.
//
// # Overview
//
// Keyplate reads keyboard-layout-editor row fragments (the text pasted out of
// a KLE raw-data box) and turns them into the placement records a solid
// modeler needs to cut a switch plate: key centers in millimetres, the plate
// outline, one switch cutout per key and a stabilizer cutout for long keys.
// The pkg directory is organized into three areas:
//
//  1. [kle], [geom] and [plate] - Domain logic (normalize, interpret, derive)
//  2. [cache], [errors] and [observability] - Infrastructure
//  3. [pipeline] - Orchestration (parse → plate → export)
//
// # Architecture
//
// The typical data flow through Keyplate:
//
//	KLE fragment text
//	         ↓
//	    [kle] package (normalize + interpret in grid units)
//	         ↓
//	    [plate] package (millimetres, Y-up, bounds, stabilizers)
//	         ↓
//	    JSON/TOML plate records
//
// # Quick Start
//
// Derive a plate from a fragment:
//
//	import "github.com/matzehuels/keyplate/pkg/plate"
//
//	p, err := plate.BuildFromLayout(`["Esc","1","2"],[{w:2.25},"Shift"]`, plate.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	data, _ := plate.Encode(*p, plate.FormatJSON)
//
// Run the cached pipeline, as the CLI and HTTP server do:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Layout:  fragment,
//	    Formats: []string{pipeline.FormatJSON},
//	})
//
// # Main Packages
//
// [kle] - Fragment normalizer and layout interpreter. Tolerates comments,
// bare keys and trailing commas; interprets x, y, w, h, r, rx and ry
// modifiers into key centers in grid units.
//
// [geom] - 2-D vectors, rotation about an origin, axis-aligned boxes and
// polygon winding.
//
// [plate] - Unit and orientation conversion, bounds, the stabilizer
// placement rule with its cutout templates, and plate serialization.
//
// [pipeline] - Parse, plate and export stages with result caching and
// bounded-concurrency batch runs.
//
// [cache] - Cache interface with file, redis and null backends, plus keyers
// and content hashing.
//
// [errors] - Structured error codes such as MALFORMED_LAYOUT and NO_KEYS.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/kle/...                # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [kle]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/kle
// [geom]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/geom
// [plate]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/plate
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/keyplate/pkg/observability
package pkg
