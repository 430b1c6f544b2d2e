package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// keysCommand creates the keys command for interpreting a layout.
func (c *CLI) keysCommand() *cobra.Command {
	var (
		output  string
		unit    float64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "keys [layout|-]",
		Short: "Interpret a layout into key placements",
		Long: `Interpret a layout into key placements.

The input is a keyboard-layout-editor fragment: rows as JSON-like arrays
separated by commas, without the enclosing array. Comments and unquoted
modifier keys are allowed:

  // number row
  ["Esc","1","2"],
  [{w:1.5},"Tab","q"]

The output is a JSON list with the center, size and rotation of every key in
millimetres, Y pointing up. Use "-" to read from stdin; output then goes to
stdout unless -o is given. Without an argument on a terminal, pick a layout
file from the current directory.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeLayouts,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := c.layoutArg(args)
			if err != nil || input == "" {
				return err
			}
			return c.runKeys(cmd.Context(), input, output, unit, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.keys.json, - for stdout)")
	cmd.Flags().Float64Var(&unit, "unit", 0, "grid unit in mm (default 19.05)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runKeys interprets the layout and writes the placements.
func (c *CLI) runKeys(ctx context.Context, input, output string, unit float64, noCache bool) error {
	layout, err := c.readLayout(input)
	if err != nil {
		return err
	}

	runner, cfg, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{Layout: layout, Name: input, Unit: unit}
	cfg.Plate.Apply(&opts)

	keys, cached, err := runner.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return describeError(err)
	}
	if len(keys) == 0 {
		return errors.New(errors.ErrCodeNoKeys, "layout %s has no keys", input)
	}
	data, err := plate.MarshalKeys(keys)
	if err != nil {
		return err
	}

	if output == "" && input == stdinArg {
		output = stdinArg
	}
	outPath := outputPath(input, output, ".keys.json")
	if err := c.writeOutput(outPath, append(data, '\n')); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}
	if outPath == stdinArg {
		return nil
	}

	c.ui.success("Layout interpreted")
	c.ui.file(outPath)
	c.ui.stats(len(keys), 0, cached)
	c.ui.newline()
	c.ui.nextStep("Build the plate", appName+" plate "+input)
	return nil
}
