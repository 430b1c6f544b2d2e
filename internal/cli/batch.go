package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/pipeline"
)

// batchCommand creates the batch command for deriving many plates at once.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		outDir      string
		format      string
		concurrency int
		flags       plateFlags
	)

	cmd := &cobra.Command{
		Use:   "batch [layouts...]",
		Short: "Derive plates for several layouts in parallel",
		Long: `Derive plates for several layouts in parallel.

Each layout is interpreted independently; one malformed layout does not stop
the others. Plates are written as <name>.plate.<format> into the output
directory (default: next to each input). The command fails if any layout
failed.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeLayouts,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), args, outDir, format, concurrency, flags.options(cmd), flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "directory for plate files (default: next to each input)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "output format: json, toml")
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", pipeline.DefaultConcurrency, "layouts processed in parallel")
	flags.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runBatch reads every input, runs the batch and writes one file per success.
func (c *CLI) runBatch(ctx context.Context, inputs []string, outDir, format string, concurrency int, base pipeline.Options, noCache bool) error {
	runner, cfg, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Unreadable inputs are reported like failed layouts.
	var readFailures []pipeline.BatchItem
	jobs := make([]pipeline.Options, 0, len(inputs))
	for _, input := range inputs {
		layout, err := c.readLayout(input)
		if err != nil {
			readFailures = append(readFailures, pipeline.BatchItem{Name: input, Err: err})
			continue
		}
		opts := base
		opts.Layout = layout
		opts.Name = input
		opts.Formats = []string{format}
		cfg.Plate.Apply(&opts)
		jobs = append(jobs, opts)
	}

	prog := newProgress(c.Logger)
	spinner := c.spinner(ctx, fmt.Sprintf("Deriving %d plates...", len(jobs)))
	spinner.Start()
	items, err := runner.Batch(ctx, jobs, concurrency)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("processed layouts", "count", len(jobs), "failed", len(pipeline.Failed(items)))

	written := 0
	for _, it := range items {
		if it.Err != nil {
			continue
		}
		path := batchOutputPath(it.Name, outDir, format)
		if err := c.writeOutput(path, it.Result.Artifacts[format]); err != nil {
			it.Err = fmt.Errorf("write output %s: %w", path, err)
			readFailures = append(readFailures, it)
			continue
		}
		written++
		c.ui.success("%s", it.Name)
		c.ui.file(path)
		c.ui.stats(it.Result.Stats.KeyCount, it.Result.Stats.StabilizerCount, it.Result.CacheInfo.PlateHit)
	}

	failed := append(readFailures, pipeline.Failed(items)...)
	for _, it := range failed {
		c.ui.failure("%s: %s", it.Name, errors.UserMessage(it.Err))
		if frag := errors.FragmentOf(it.Err); frag != "" {
			c.ui.detail("%s", truncate(frag, 120))
		}
	}

	c.ui.newline()
	c.ui.info("%d written, %d failed", written, len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d layouts failed", len(failed), len(inputs))
	}
	return nil
}

// batchOutputPath places <name>.plate.<format> in dir, or next to the input
// when dir is empty.
func batchOutputPath(input, dir, format string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".plate." + format
	if dir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(dir, name)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
