package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// plateFlags holds the plate parameters shared by plate and batch.
// Unset flags fall through to the config file and then to the pipeline
// defaults.
type plateFlags struct {
	unit         float64
	margin       float64
	thickness    float64
	switchCutout float64
	cornerRadius float64
	stabilizer   string
	threshold    float64
	noCache      bool
	refresh      bool
}

func (f *plateFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.unit, "unit", 0, "grid unit in mm (default 19.05)")
	flags.Float64Var(&f.margin, "margin", plate.DefaultMargin, "plate margin around the keys in mm")
	flags.Float64Var(&f.thickness, "thickness", 0, "plate thickness in mm (default 1.5)")
	flags.Float64Var(&f.switchCutout, "switch-cutout", 0, "switch cutout side in mm (default 14)")
	flags.Float64Var(&f.cornerRadius, "corner-radius", plate.DefaultCornerRadius, "switch cutout corner radius in mm")
	flags.StringVar(&f.stabilizer, "stabilizer", "", "stabilizer scheme: kad (default), none")
	flags.Float64Var(&f.threshold, "stab-threshold", 0, "stabilize keys longer than this many units (default 2)")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	flags.BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
	_ = cmd.RegisterFlagCompletionFunc("stabilizer", completeStabilizers)
}

// options builds pipeline options from the flags the user actually set.
func (f *plateFlags) options(cmd *cobra.Command) pipeline.Options {
	opts := pipeline.Options{
		Unit:         f.unit,
		Thickness:    f.thickness,
		SwitchCutout: f.switchCutout,
		Stabilizer:   f.stabilizer,
		Threshold:    f.threshold,
		Refresh:      f.refresh,
	}
	if cmd.Flags().Changed("margin") {
		opts.Margin = pipeline.Float(f.margin)
	}
	if cmd.Flags().Changed("corner-radius") {
		opts.CornerRadius = pipeline.Float(f.cornerRadius)
	}
	return opts
}
