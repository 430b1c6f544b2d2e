package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// plateCommand creates the plate command for deriving plate geometry.
func (c *CLI) plateCommand() *cobra.Command {
	var (
		output string
		flags  plateFlags
	)

	cmd := &cobra.Command{
		Use:   "plate [layout|-]",
		Short: "Derive the switch plate for a layout",
		Long: `Derive the switch plate for a layout.

The plate is centered on the origin. It records the outline (key bounds plus
margin), one rounded-square switch cutout per key and a stabilizer housing
pair for every key longer than the scheme threshold (2u for kad).

The output format follows the file extension: .toml writes TOML, anything
else JSON. Results are cached locally for faster subsequent runs. Without an
argument on a terminal, pick a layout file from the current directory.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeLayouts,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := c.layoutArg(args)
			if err != nil || input == "" {
				return err
			}
			return c.runPlate(cmd.Context(), input, output, flags.options(cmd), flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .json or .toml (default: <input>.plate.json, - for stdout)")
	flags.register(cmd)

	return cmd
}

// runPlate runs the full pipeline on one layout and writes the plate.
func (c *CLI) runPlate(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	layout, err := c.readLayout(input)
	if err != nil {
		return err
	}

	runner, cfg, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if output == "" && input == stdinArg {
		output = stdinArg
	}
	outPath := outputPath(input, output, ".plate.json")

	opts.Layout = layout
	opts.Name = input
	opts.Formats = []string{plate.FormatForPath(outPath)}
	cfg.Plate.Apply(&opts)

	var (
		spinner *Spinner
		elapsed time.Duration
	)
	if outPath != stdinArg {
		spinner = c.spinner(ctx, "Deriving plate...")
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		elapsed = spinner.Stop()
	}
	if err != nil {
		return describeError(err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := c.writeOutput(outPath, result.Artifacts[opts.Formats[0]]); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}
	if outPath == stdinArg {
		return nil
	}

	p := result.Plate
	c.ui.success("Plate complete")
	c.ui.file(outPath)
	c.ui.keyValue("outline", fmt.Sprintf("%.2f x %.2f x %.2f mm", p.Width, p.Height, p.Thickness))
	if p.Scheme != "" {
		c.ui.keyValue("stabilizer", p.Scheme)
	}
	c.ui.keyValue("time", elapsed.Round(time.Millisecond).String())
	c.ui.stats(result.Stats.KeyCount, result.Stats.StabilizerCount, result.CacheInfo.PlateHit)
	return nil
}
