package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	tableLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	tableValueStyle  = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	tableNumberStyle = lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1).Align(lipgloss.Right)
)

// =============================================================================
// Result Tables
// =============================================================================

// resultRows returns the label/value rows shown for a record.
func resultRows(rec *tile.Record) [][]string {
	r := rec.Result
	rows := [][]string{
		{"Pattern", rec.Pattern.Title()},
		{"Room", fmt.Sprintf("%g x %g m (%.2f m²)", rec.Room.LengthM, rec.Room.WidthM, r.RoomAreaM2)},
		{"Tile", fmt.Sprintf("%g x %g cm, %g mm joint", rec.Tile.LengthCm, rec.Tile.WidthCm, rec.Tile.SpacingMm)},
		{"Grid", fmt.Sprintf("%d x %d", r.TilesAlongLength, r.TilesAlongWidth)},
		{"Tiles needed", fmt.Sprint(r.TilesNeeded)},
		{"Whole tiles", fmt.Sprint(r.WholeTiles)},
		{"Cut tiles", fmt.Sprint(r.CutTiles)},
		{"Edge tiles", fmt.Sprint(r.EdgeTiles)},
		{"Corner tiles", fmt.Sprint(r.CornerTiles)},
		{"With waste", fmt.Sprint(r.TotalTilesWithWaste)},
	}
	if r.SavedTiles > 0 {
		rows = append(rows, []string{"Saved tiles", fmt.Sprint(r.SavedTiles)})
	}
	if r.EstimatedCost > 0 {
		rows = append(rows, []string{"Est. cost", fmt.Sprintf("%.2f", r.EstimatedCost)})
	}
	rows = append(rows, []string{"Est. hours", fmt.Sprintf("%.1f", r.EstimatedInstallHours)})
	return rows
}

// classRows maps result labels to the tile class they count.
var classRows = map[string]tile.Classification{
	"Whole tiles":  tile.Whole,
	"Edge tiles":   tile.Edge,
	"Corner tiles": tile.Corner,
}

// renderResultTable renders the rows of rec as a two-column table.
func renderResultTable(rec *tile.Record) string {
	rows := resultRows(rec)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return tableLabelStyle
			}
			if row >= 0 && row < len(rows) {
				if class, ok := classRows[rows[row][0]]; ok {
					return classStyles[class].Padding(0, 1)
				}
			}
			return tableValueStyle
		}).
		Render()
}

// printRecord prints the result table of rec followed by its statistics.
func printRecord(rec *tile.Record, cached bool) {
	fmt.Fprintln(stdout, renderResultTable(rec))
	switch {
	case rec.Pattern == tile.Brick && rec.Approximate:
		printDetail("Drawing leaves a %.1f cm strip at the end of odd rows", tile.BrickStripM(rec.Room, rec.Result)*100)
	case rec.Approximate:
		printDetail("Drawing approximates the %s pattern on a grid", rec.Pattern)
	}
	printStats(rec.Result.TilesNeeded, len(rec.Cells), cached)
}

// printCalculation prints the header of a saved calculation and its record.
func printCalculation(calc *store.Calculation) {
	fmt.Fprintln(stdout, StyleTitle.Render(calc.Name))
	printKeyValue("ID", calc.ID)
	printKeyValue("Status", calc.Status.Label())
	printKeyValue("Created", calc.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
	printNewline()
	if calc.Record != nil {
		printRecord(calc.Record, false)
	}
}

// renderComparison renders one row per pattern for side-by-side results.
func renderComparison(results []*pipeline.Result) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		r := res.Record.Result
		rows = append(rows, []string{
			res.Record.Pattern.Title(),
			fmt.Sprint(r.TilesNeeded),
			fmt.Sprint(r.CutTiles),
			fmt.Sprintf("%.0f%%", (r.PatternWasteFactor-1)*100),
			fmt.Sprint(r.TotalTilesWithWaste),
			fmt.Sprintf("%.1f", r.EstimatedInstallHours),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Pattern", "Tiles", "Cut", "Waste", "To buy", "Hours").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0:
				return tableValueStyle
			}
			return tableNumberStyle
		}).
		Render()
}

// =============================================================================
// Artifact Output
// =============================================================================

// artifactPath returns the file written for format. A single-format run
// writes to output verbatim; otherwise output is a base path.
func artifactPath(output, format string, single bool) string {
	if output != "" && single {
		return output
	}
	base := output
	if base == "" {
		base = defaultBase
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if pipeline.IsReportFormat(format) {
		return base + "-report." + strings.TrimPrefix(format, "report.")
	}
	return base + "." + format
}

// writeArtifacts writes each artifact in format order and lists the files.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	single := len(formats) == 1
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(output, format, single)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
