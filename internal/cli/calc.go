package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// calcFlags holds the flags of the calc command.
type calcFlags struct {
	input tile.RawInput

	save   bool
	name   string
	status string

	formats string
	output  string

	noCache     bool
	refresh     bool
	explain     bool
	interactive bool
}

// calcCommand creates the calc command.
func (c *CLI) calcCommand() *cobra.Command {
	var flags calcFlags

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate the tiles needed for a room",
		Long: `Calculate the tiles needed to cover a rectangular room.

Room measurements are in meters, tile measurements in centimeters and the
joint spacing in millimeters. Decimal commas are accepted.

Results are cached locally; use --save to keep the calculation in the
history and --format to draw the layout or write a report.`,
		Example: `  tilecalc calc --length 5.5 --width 4.2 --tile-length 30 --tile-width 30 --spacing 3
  tilecalc calc -l 4 -w 3 --tile-length 60 --tile-width 30 --pattern brick -f svg,report.pdf
  tilecalc calc --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.interactive {
				if err := runCalcForm(cmd.Context(), &flags); err != nil {
					return err
				}
			}
			return c.runCalc(cmd.Context(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input.RoomLength, "length", "l", "", "room length in meters")
	f.StringVarP(&flags.input.RoomWidth, "width", "w", "", "room width in meters")
	f.StringVar(&flags.input.TileLength, "tile-length", "", "tile length in centimeters")
	f.StringVar(&flags.input.TileWidth, "tile-width", "", "tile width in centimeters")
	f.StringVar(&flags.input.Spacing, "spacing", "", "joint spacing in millimeters (default 0)")
	f.StringVarP(&flags.input.Pattern, "pattern", "p", string(tile.Grid), "laying pattern: grid, brick, herringbone, diagonal")

	f.BoolVarP(&flags.save, "save", "s", false, "save the calculation to the history")
	f.StringVar(&flags.name, "name", "", "project name of a saved calculation")
	f.StringVar(&flags.status, "status", "", "project status: draft, in-progress, completed (default)")

	f.StringVarP(&flags.formats, "format", "f", "", "output format(s): svg, png, pdf, json, report.pdf, report.md (comma-separated)")
	f.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")

	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached result exists")
	f.BoolVar(&flags.explain, "explain", false, "print the step-by-step explanation")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "enter the measurements in a form")

	return cmd
}

// runCalc parses the inputs, runs the pipeline and prints the result.
func (c *CLI) runCalc(ctx context.Context, flags calcFlags) error {
	room, spec, pattern, err := tile.ParseInput(flags.input)
	if err != nil {
		return err
	}

	opts := c.baseOptions()
	opts.Room = room
	opts.Tile = spec
	opts.Pattern = pattern
	opts.Refresh = flags.refresh
	opts.Save = flags.save
	opts.Name = strings.TrimSpace(flags.name)
	opts.Status = flags.status
	opts.Formats = parseFormats(flags.formats)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Calculating %s layout...", pattern))
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Calculation failed")
		return err
	}
	spinner.Stop()

	printSuccess("%s: %d tiles (%d with waste)", pattern.Title(), res.Record.Result.TilesNeeded, res.Record.Result.TotalTilesWithWaste)
	printRecord(res.Record, res.CacheInfo.ComputeHit)

	if flags.explain {
		printNewline()
		fmt.Fprintln(stdout, res.Record.Explain())
	}

	if len(opts.Formats) > 0 {
		paths, err := writeArtifacts(res.Artifacts, opts.Formats, flags.output)
		if err != nil {
			return err
		}
		printNewline()
		for _, p := range paths {
			printFile(p)
		}
	}

	if res.Calculation != nil {
		printNewline()
		printSuccess("Saved as %s", StyleHighlight.Render(res.Calculation.Name))
		printDetail("ID: %s", res.Calculation.ID)
		printNextStep("Report", "tilecalc report "+res.Calculation.ID)
	}
	return nil
}

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		input   tile.RawInput
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare all laying patterns for a room",
		Long: `Compare all laying patterns for a room.

The calculations run in parallel and share the result cache with calc.`,
		Example: `  tilecalc compare --length 5.5 --width 4.2 --tile-length 30 --tile-width 30 --spacing 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd.Context(), input, noCache)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input.RoomLength, "length", "l", "", "room length in meters")
	f.StringVarP(&input.RoomWidth, "width", "w", "", "room width in meters")
	f.StringVar(&input.TileLength, "tile-length", "", "tile length in centimeters")
	f.StringVar(&input.TileWidth, "tile-width", "", "tile width in centimeters")
	f.StringVar(&input.Spacing, "spacing", "", "joint spacing in millimeters (default 0)")
	f.BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runCompare computes every pattern for the same room and tile.
func (c *CLI) runCompare(ctx context.Context, input tile.RawInput, noCache bool) error {
	input.Pattern = string(tile.Grid)
	room, spec, _, err := tile.ParseInput(input)
	if err != nil {
		return err
	}

	batch := make([]pipeline.Options, 0, len(tile.Patterns))
	for _, p := range tile.Patterns {
		opts := c.baseOptions()
		opts.Room = room
		opts.Tile = spec
		opts.Pattern = p
		batch = append(batch, opts)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	results, err := runner.ComputeBatch(ctx, batch, pipeline.DefaultParallelism)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compared %d patterns", len(results)))

	fmt.Fprintln(stdout, renderComparison(results))
	return nil
}
