package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/pipeline"
)

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report [id]",
		Short: "Write the report of a saved calculation",
		Long: `Write the report of a saved calculation as PDF or Markdown.

The report lists the room and tile details, the results and the
step-by-step explanation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reportFormat string
			switch format {
			case "pdf":
				reportFormat = pipeline.FormatReportPDF
			case "md", "markdown":
				reportFormat = pipeline.FormatReportMD
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "invalid report format %q (must be one of: pdf, md)", format)
			}
			return c.runReport(cmd.Context(), args[0], reportFormat, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "report format: pdf, md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default tile-report-<id>.<ext>)")

	return cmd
}

// runReport renders one report for the calculation.
func (c *CLI) runReport(ctx context.Context, idArg, format, output string) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	calc, err := resolveCalculation(ctx, runner, idArg)
	if err != nil {
		return err
	}

	opts := c.baseOptions()
	opts.Formats = []string{format}
	artifacts, err := runner.Render(ctx, calc.Record, "", calc, opts)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if output == "" {
		output = "tile-report-" + calc.ID[:8] + "." + format[len("report."):]
	}
	paths, err := writeArtifacts(artifacts, opts.Formats, output)
	if err != nil {
		return err
	}

	printSuccess("Report for %s", StyleHighlight.Render(calc.Name))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
