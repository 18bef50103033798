package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for tilecalc.

The scripts complete laying patterns, project statuses and output formats,
and the ids of saved calculations with their project names.

  $ source <(tilecalc completion bash)
  $ tilecalc completion zsh > "${fpath[1]}/_tilecalc"
  $ tilecalc completion fish > ~/.config/fish/completions/tilecalc.fish
  PS> tilecalc completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
		},
	}
}

// registerCompletions attaches value completions to the flags and id
// arguments of the subcommands under root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	patterns := make([]string, len(tile.Patterns))
	for i, p := range tile.Patterns {
		patterns[i] = string(p)
	}
	statuses := make([]string, len(store.Statuses))
	for i, s := range store.Statuses {
		statuses[i] = string(s)
	}
	calcFormats := append(slices.Clone(render.Formats), pipeline.FormatReportPDF, pipeline.FormatReportMD)

	flags := []struct {
		path   []string
		flag   string
		values []string
	}{
		{[]string{"calc"}, "pattern", patterns},
		{[]string{"calc"}, "status", statuses},
		{[]string{"calc"}, "format", calcFormats},
		{[]string{"render"}, "format", render.Formats},
		{[]string{"report"}, "format", []string{"pdf", "md"}},
		{[]string{"history", "list"}, "pattern", patterns},
		{[]string{"history", "list"}, "status", statuses},
	}
	for _, f := range flags {
		if cmd, _, err := root.Find(f.path); err == nil {
			_ = cmd.RegisterFlagCompletionFunc(f.flag, completeList(f.values))
		}
	}

	for _, path := range [][]string{{"render"}, {"report"}, {"history", "show"}, {"history", "delete"}} {
		if cmd, _, err := root.Find(path); err == nil {
			cmd.ValidArgsFunction = c.completeCalculationIDs
		}
	}
}

// completeList completes one value, or the last entry of a comma-separated
// list.
func completeList(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		head, last := "", toComplete
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			head, last = toComplete[:i+1], toComplete[i+1:]
		}
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, last) {
				out = append(out, head+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeCalculationIDs lists saved calculation ids, described by their
// project names.
func (c *CLI) completeCalculationIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := c.settings().Store.Open(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer st.Close()

	calcs, err := st.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, calc := range calcs {
		if strings.HasPrefix(calc.ID, toComplete) {
			out = append(out, calc.ID+"\t"+calc.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
