package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// stdout receives all command output. Tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Colors & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")

	// Tile classes, close to the drawing palette on dark terminals.
	colorEdge   = lipgloss.Color("229")
	colorCorner = lipgloss.Color("217")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for names and addresses.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
)

var (
	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleTransient   = lipgloss.NewStyle().Foreground(colorGray)
)

// classStyles color the counts of each tile class in result tables.
var classStyles = map[tile.Classification]lipgloss.Style{
	tile.Whole:  lipgloss.NewStyle().Foreground(colorWhite),
	tile.Edge:   lipgloss.NewStyle().Foreground(colorEdge),
	tile.Corner: lipgloss.NewStyle().Foreground(colorCorner),
}

// status line prefixes
var (
	iconSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	iconError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	iconWarning = lipgloss.NewStyle().Foreground(colorYellow).Render("!")
	iconInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	iconArrow   = StyleDim.Render("→")
)

// =============================================================================
// Status Output
// =============================================================================

func statusLine(icon, format string, args ...any) {
	fmt.Fprintln(stdout, icon+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusLine(iconSuccess, format, args...) }

func printError(format string, args ...any) { statusLine(iconError, format, args...) }

func printInfo(format string, args ...any) { statusLine(iconInfo, format, args...) }

func printWarning(format string, args ...any) {
	statusLine(iconWarning, "%s", lipgloss.NewStyle().Foreground(colorYellow).Render(fmt.Sprintf(format, args...)))
}

// PrintError writes err to w. Coded errors returned as-is by a command show
// their message without the code.
func PrintError(w io.Writer, err error) {
	msg := err.Error()
	var e *errors.Error
	if stderrors.As(err, &e) && e == err {
		msg = errors.UserMessage(err)
	}
	fmt.Fprintln(w, iconError+" "+msg)
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+iconArrow+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints "293 tiles · 266 cells · cached" under a result.
func printStats(tiles, cells int, cached bool) {
	var parts []string
	if tiles > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d tiles", tiles)))
	}
	if cells > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d cells", cells)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleTransient.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
