package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// minIDPrefix is the shortest id prefix accepted in place of a full id.
const minIDPrefix = 4

// historyCommand creates the history command for saved calculations.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "List, show and delete saved calculations",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())
	cmd.AddCommand(c.historyBrowseCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var (
		limit   int
		offset  int
		pattern string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := store.ListOptions{Limit: limit, Offset: offset}
			if pattern != "" {
				p, err := tile.ParsePattern(pattern)
				if err != nil {
					return err
				}
				opts.Pattern = p
			}
			if status != "" {
				st, err := store.ParseStatus(status)
				if err != nil {
					return err
				}
				opts.Status = st
			}
			return c.runHistoryList(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of calculations")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of calculations to skip")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "only this pattern")
	cmd.Flags().StringVar(&status, "status", "", "only this status")

	return cmd
}

func (c *CLI) runHistoryList(ctx context.Context, opts store.ListOptions) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	calcs, err := runner.Store.List(ctx, opts)
	if err != nil {
		return err
	}
	if len(calcs) == 0 {
		printInfo("No saved calculations")
		printNextStep("Save one", "tilecalc calc --save ...")
		return nil
	}

	fmt.Fprintln(stdout, renderHistoryTable(calcs))
	if stats := store.Summarize(calcs); stats.TotalCalculations > 0 {
		printDetail("%d calculations · %d tiles", stats.TotalCalculations, stats.TotalTiles)
	}
	return nil
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			calc, err := resolveCalculation(ctx, runner, args[0])
			if err != nil {
				return err
			}
			printCalculation(calc)
			if explain && calc.Record != nil {
				printNewline()
				fmt.Fprintln(stdout, calc.Record.Explain())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "print the step-by-step explanation")

	return cmd
}

// historyDeleteCommand creates the "history delete" subcommand.
func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a saved calculation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			calc, err := resolveCalculation(ctx, runner, args[0])
			if err != nil {
				return err
			}
			if err := runner.Delete(ctx, calc.ID); err != nil {
				return err
			}
			printSuccess("Deleted %s", StyleHighlight.Render(calc.Name))
			printDetail("ID: %s", calc.ID)
			return nil
		},
	}
}

// historyBrowseCommand creates the "history browse" subcommand.
func (c *CLI) historyBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a saved calculation interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			calcs, err := runner.Store.List(ctx, store.ListOptions{})
			if err != nil {
				return err
			}
			if len(calcs) == 0 {
				printInfo("No saved calculations")
				return nil
			}

			final, err := tea.NewProgram(NewCalculationListModel(calcs), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			m, ok := final.(CalculationListModel)
			if !ok || m.Selected == nil {
				return nil
			}
			printCalculation(m.Selected)
			printNewline()
			printNextStep("Draw", "tilecalc render "+m.Selected.ID[:8])
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// resolveCalculation loads a calculation by full id or by unique prefix.
func resolveCalculation(ctx context.Context, runner *pipeline.Runner, arg string) (*store.Calculation, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if errors.ValidateCalculationID(arg) == nil {
		return runner.Get(ctx, arg)
	}
	if len(arg) < minIDPrefix {
		return nil, errors.New(errors.ErrCodeInvalidID, "calculation id %q is too short (need at least %d characters)", arg, minIDPrefix)
	}

	calcs, err := runner.Store.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	var match *store.Calculation
	for _, calc := range calcs {
		if !strings.HasPrefix(calc.ID, arg) {
			continue
		}
		if match != nil {
			return nil, errors.New(errors.ErrCodeInvalidID, "calculation id prefix %q is ambiguous", arg)
		}
		match = calc
	}
	if match == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "calculation %q not found", arg)
	}
	return match, nil
}

// renderHistoryTable renders saved calculations as a table.
func renderHistoryTable(calcs []*store.Calculation) string {
	rows := make([][]string, 0, len(calcs))
	for _, calc := range calcs {
		rows = append(rows, historyRow(calc))
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(historyHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 || col >= 4 {
				return tableLabelStyle
			}
			return tableValueStyle
		}).
		Render()
}

var historyHeaders = []string{"ID", "Name", "Pattern", "Tiles", "Status", "Created"}

func historyRow(calc *store.Calculation) []string {
	pattern, tiles := "", ""
	if calc.Record != nil {
		pattern = calc.Record.Pattern.Title()
		tiles = fmt.Sprint(calc.Record.Result.TotalTilesWithWaste)
	}
	return []string{
		calc.ID[:8],
		calc.Name,
		pattern,
		tiles,
		calc.Status.Label(),
		formatRelativeTime(calc.CreatedAt),
	}
}
