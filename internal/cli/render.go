package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/render"
)

// renderCommand creates the render command for drawing saved calculations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		scale      float64
		dpi        float64
		shading    bool
	)

	cmd := &cobra.Command{
		Use:   "render [id]",
		Short: "Draw the tile layout of a saved calculation",
		Long: `Draw the tile layout of a saved calculation.

The id may be shortened to any unique prefix. Drawings are cached by the
content of the calculation and the drawing options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if len(formats) == 0 {
				formats = []string{render.FormatSVG}
			}
			opts := c.baseOptions()
			opts.Formats = formats
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}
			if cmd.Flags().Changed("dpi") {
				opts.DPI = dpi
			}
			if cmd.Flags().Changed("shading") {
				opts.Shading = shading
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&scale, "scale", render.DefaultScale, "drawing scale in millimeters per meter")
	cmd.Flags().Float64Var(&dpi, "dpi", render.DefaultDPI, "resolution of PNG output")
	cmd.Flags().BoolVar(&shading, "shading", false, "shade cut tiles by the share of the tile they keep")

	return cmd
}

// runRender loads the calculation and writes the requested drawings.
func (c *CLI) runRender(ctx context.Context, idArg string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	calc, err := resolveCalculation(ctx, runner, idArg)
	if err != nil {
		return err
	}
	hash, err := pipeline.RecordHash(calc.Record)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", calc.Name))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, calc.Record, hash, calc, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if output == "" {
		output = defaultBase + "-" + calc.ID[:8]
	}
	paths, err := writeArtifacts(artifacts, opts.Formats, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleHighlight.Render(calc.Name))
	for _, p := range paths {
		printFile(p)
	}
	printStats(calc.Record.Result.TilesNeeded, len(calc.Record.Cells), cacheHit)
	return nil
}
