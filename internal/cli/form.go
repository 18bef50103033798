package cli

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// formTheme returns a huh theme using the CLI palette.
func formTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().Foreground(colorGray).MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(colorCyan)
	t.Focused.Title = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(colorGray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(colorRed).SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(colorRed)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(colorCyan).SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().Foreground(colorWhite)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(colorCyan)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(colorDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(colorCyan)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().Foreground(colorGray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(colorGray).SetString("  ")

	return t
}

func patternOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(tile.Patterns))
	for _, p := range tile.Patterns {
		opts = append(opts, huh.NewOption(p.Title(), string(p)))
	}
	return opts
}

func statusOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(store.Statuses))
	for _, s := range store.Statuses {
		opts = append(opts, huh.NewOption(s.Label(), string(s)))
	}
	return opts
}

// newCalcForm builds the measurement form. Values already set by flags are
// shown as defaults.
func newCalcForm(flags *calcFlags) *huh.Form {
	in := &flags.input
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Room length (m)").
				Placeholder("e.g., 5.5").
				Value(&in.RoomLength).
				Validate(validateMeasurement("room length", false)),
			huh.NewInput().
				Title("Room width (m)").
				Placeholder("e.g., 4.2").
				Value(&in.RoomWidth).
				Validate(validateMeasurement("room width", false)),
		).Title("Room").
			Description("Measure the floor wall to wall"),
		huh.NewGroup(
			huh.NewInput().
				Title("Tile length (cm)").
				Placeholder("e.g., 30").
				Value(&in.TileLength).
				Validate(validateMeasurement("tile length", false)),
			huh.NewInput().
				Title("Tile width (cm)").
				Placeholder("e.g., 30").
				Value(&in.TileWidth).
				Validate(validateMeasurement("tile width", false)),
			huh.NewInput().
				Title("Joint spacing (mm)").
				Placeholder("e.g., 3").
				Value(&in.Spacing).
				Validate(validateMeasurement("tile spacing", true)),
			huh.NewSelect[string]().
				Title("Pattern").
				Options(patternOptions()...).
				Value(&in.Pattern),
		).Title("Tile"),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save to history?").
				Value(&flags.save),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Placeholder("optional").
				CharLimit(120).
				Value(&flags.name).
				Validate(func(s string) error {
					if err := errors.ValidateName(s); err != nil {
						return stderrors.New(errors.UserMessage(err))
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOptions()...).
				Value(&flags.status),
		).Title("Project").
			WithHideFunc(func() bool { return !flags.save }),
	).WithTheme(formTheme())
}

// validateMeasurement adapts errors.ParseMeasurement to a form validator.
func validateMeasurement(name string, optional bool) func(string) error {
	return func(s string) error {
		if optional && strings.TrimSpace(s) == "" {
			return nil
		}
		if _, err := errors.ParseMeasurement(name, s); err != nil {
			return stderrors.New(errors.UserMessage(err))
		}
		return nil
	}
}

// runCalcForm fills flags from the interactive form.
func runCalcForm(ctx context.Context, flags *calcFlags) error {
	if flags.status == "" {
		flags.status = string(store.StatusCompleted)
	}
	if err := newCalcForm(flags).RunWithContext(ctx); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return context.Canceled
		}
		return err
	}
	return nil
}
