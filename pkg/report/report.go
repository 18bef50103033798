// Package report produces printable calculation reports.
//
// [Markdown] writes a text report; [PDF] writes an A4 document with the
// same content typeset in Latin Modern, followed by a page with the layout
// drawing.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Meta is the project information printed in a report header.
type Meta struct {
	Project   string
	Status    string
	CreatedAt time.Time
	// Generated is the print date. Zero means now.
	Generated time.Time
}

func (m Meta) generated() time.Time {
	if m.Generated.IsZero() {
		return time.Now()
	}
	return m.Generated
}

// dateLayout is the date format used in report headers.
const dateLayout = "January 2, 2006"

// row is one line of the results table.
type row struct {
	label string
	value string
}

func resultRows(r tile.LayoutResult) []row {
	return []row{
		{"Total Tiles Needed", fmt.Sprint(r.TilesNeeded)},
		{"Whole Tiles", fmt.Sprint(r.WholeTiles)},
		{"Cut Tiles", fmt.Sprint(r.CutTiles)},
		{"Edge Tiles", fmt.Sprint(r.EdgeTiles)},
		{"Corner Tiles", fmt.Sprint(r.CornerTiles)},
		{fmt.Sprintf("Total with %d%% Contingency", tile.ContingencyPercent), fmt.Sprint(r.TotalTilesWithWaste)},
		{"Tiles Along Length", fmt.Sprint(r.TilesAlongLength)},
		{"Tiles Along Width", fmt.Sprint(r.TilesAlongWidth)},
		{"Estimated Cost", fmt.Sprintf("%.2f", r.EstimatedCost)},
		{"Estimated Installation", fmt.Sprintf("%g h", r.EstimatedInstallHours)},
	}
}

// Markdown writes the report as Markdown.
func Markdown(w io.Writer, rec *tile.Record, meta Meta) error {
	var b strings.Builder
	b.WriteString("# Tile Calculation Report\n\n")
	if meta.Project != "" {
		fmt.Fprintf(&b, "**Project:** %s\n\n", meta.Project)
	}
	if meta.Status != "" {
		fmt.Fprintf(&b, "**Status:** %s\n\n", meta.Status)
	}
	fmt.Fprintf(&b, "Generated on %s\n\n", meta.generated().Format(dateLayout))

	b.WriteString("## Results\n\n")
	b.WriteString("| Measurement | Value |\n|---|---|\n")
	for _, r := range resultRows(rec.Result) {
		fmt.Fprintf(&b, "| %s | %s |\n", r.label, r.value)
	}
	b.WriteString("\n")
	if rec.Approximate {
		b.WriteString("> The tile positions for this pattern are an approximation.\n\n")
	}
	b.WriteString(rec.Explain())

	_, err := io.WriteString(w, b.String())
	return err
}

// plainLines strips Markdown header marks from text and splits it in lines.
func plainLines(md string) []string {
	lines := strings.Split(strings.TrimSpace(md), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimLeft(l, "#"))
	}
	return lines
}
