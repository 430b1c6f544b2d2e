// Package pipeline provides the layout-to-plate pipeline for keyplate.
//
// This package implements the complete parse → plate → export pipeline that
// is shared by the CLI and the HTTP API. By centralizing this logic, both
// entry points apply the same defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Interpret the layout text into key placements
//  2. Plate: Derive the plate outline, switch and stabilizer cutouts
//  3. Export: Encode the plate in one or more output formats (JSON, TOML)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Layout:  `["Esc","1","2"],[{w:1.5},"Tab","q"]`,
//	    Formats: []string{"json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := result.Artifacts["json"]
//
// Run individual stages:
//
//	keys, err := runner.Parse(ctx, opts)
//	p, err := runner.BuildPlate(ctx, keys, opts)
//	artifacts, err := runner.Export(ctx, p, opts)
//
// Many layouts can be processed at once with [Runner.Batch].
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/keyplate/pkg/cache"
	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultStabilizer is the stabilizer scheme used when none is named.
	DefaultStabilizer = "kad"

	// StabilizerNone disables stabilizer cutouts.
	StabilizerNone = "none"

	// DefaultConcurrency bounds parallel work in Batch.
	DefaultConcurrency = 4
)

// Format constants for output formats.
const (
	FormatJSON = plate.FormatJSON
	FormatTOML = plate.FormatTOML
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatTOML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the plate pipeline.
// This struct supports JSON serialization for API requests.
//
// Zero numeric values mean "use the default". Margin and CornerRadius are
// pointers because zero is a meaningful value for both.
type Options struct {
	// Parse options
	Layout string  `json:"layout"`
	Name   string  `json:"name,omitempty"` // source name for logs and batch output
	Unit   float64 `json:"unit,omitempty"`

	// Plate options
	Margin       *float64 `json:"margin,omitempty"`
	Thickness    float64  `json:"thickness,omitempty"`
	SwitchCutout float64  `json:"switch_cutout,omitempty"`
	CornerRadius *float64 `json:"corner_radius,omitempty"`
	Stabilizer   string   `json:"stabilizer,omitempty"` // kad or none
	Threshold    float64  `json:"threshold,omitempty"`  // overrides the scheme threshold

	// Export options
	Formats []string `json:"formats,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Float returns a pointer to v, for setting Margin and CornerRadius.
func Float(v float64) *float64 { return &v }

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// LayoutHash is the content hash of the layout text.
	LayoutHash string

	// Keys are the interpreted placements in linear units.
	Keys []plate.Key

	// Plate is the derived plate geometry.
	Plate *plate.Plate

	// Artifacts contains encoded plates keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	KeyCount        int
	StabilizerCount int
	ParseTime       time.Duration
	PlateTime       time.Duration
	ExportTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether placements came from cache
	PlateHit  bool // Whether the plate came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(plate.Formats(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStabilizer checks that a stabilizer scheme name is known.
func ValidateStabilizer(name string) error {
	if _, ok := plate.LookupScheme(name); !ok {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid stabilizer: %q (must be one of: %s)", name, strings.Join(plate.SchemeNames(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForPlate(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the layout text and sets parse defaults.
func (o *Options) ValidateForParse() error {
	if err := errors.ValidateLayoutText(o.Layout); err != nil {
		return err
	}
	o.setParseDefaults()
	return errors.ValidatePositive("unit", o.Unit)
}

func (o *Options) setParseDefaults() {
	if o.Unit == 0 {
		o.Unit = plate.DefaultUnit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetPlateDefaults sets default values for plate derivation.
func (o *Options) SetPlateDefaults() {
	o.setParseDefaults()
	if o.Margin == nil {
		o.Margin = Float(plate.DefaultMargin)
	}
	if o.Thickness == 0 {
		o.Thickness = plate.DefaultThickness
	}
	if o.SwitchCutout == 0 {
		o.SwitchCutout = plate.DefaultSwitchCutout
	}
	if o.CornerRadius == nil {
		o.CornerRadius = Float(plate.DefaultCornerRadius)
	}
	if o.Stabilizer == "" {
		o.Stabilizer = DefaultStabilizer
	}
}

// ValidateForPlate validates and sets defaults for plate derivation.
func (o *Options) ValidateForPlate() error {
	o.SetPlateDefaults()
	_, err := o.Params()
	return err
}

// SetExportDefaults sets default values for export.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for export.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	return ValidateFormats(o.Formats)
}

// Params converts the plate options to plate parameters. Call
// SetPlateDefaults first.
func (o *Options) Params() (plate.Params, error) {
	if err := ValidateStabilizer(o.Stabilizer); err != nil {
		return plate.Params{}, err
	}
	if o.Margin == nil || o.CornerRadius == nil {
		return plate.Params{}, fmt.Errorf("plate defaults not set")
	}
	p := plate.Params{
		Unit:         o.Unit,
		Margin:       *o.Margin,
		Thickness:    o.Thickness,
		SwitchCutout: o.SwitchCutout,
		CornerRadius: *o.CornerRadius,
	}
	if s, _ := plate.LookupScheme(o.Stabilizer); s != nil {
		if o.Threshold != 0 {
			if err := errors.ValidatePositive("threshold", o.Threshold); err != nil {
				return plate.Params{}, err
			}
			*s = s.WithThreshold(o.Threshold)
		}
		p.Stabilizer = s
	}
	if err := p.Validate(); err != nil {
		return plate.Params{}, err
	}
	return p, nil
}

// LayoutKeyOpts returns cache key options for parsing.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Unit: o.Unit}
}

// PlateKeyOpts returns cache key options for plate derivation.
func (o *Options) PlateKeyOpts() cache.PlateKeyOpts {
	opts := cache.PlateKeyOpts{
		Unit:         o.Unit,
		Thickness:    o.Thickness,
		SwitchCutout: o.SwitchCutout,
		Stabilizer:   o.Stabilizer,
		Threshold:    o.Threshold,
	}
	if o.Margin != nil {
		opts.Margin = *o.Margin
	}
	if o.CornerRadius != nil {
		opts.CornerRadius = *o.CornerRadius
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for one export format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}

// log returns the options logger, or a discarding one if none is set.
func (o *Options) log() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}
