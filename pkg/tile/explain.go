package tile

import (
	"fmt"
	"strings"
)

// Explain renders a Markdown narrative of a calculation. Every number comes
// from the inputs or from r; nothing is recomputed here.
func Explain(room Room, spec TileSpec, p Pattern, r LayoutResult) string {
	var b strings.Builder

	b.WriteString("## Tile Calculation\n\n")

	b.WriteString("### Room\n")
	fmt.Fprintf(&b, "- Length: %g m\n", room.LengthM)
	fmt.Fprintf(&b, "- Width: %g m\n", room.WidthM)
	fmt.Fprintf(&b, "- Area: %.2f m²\n\n", r.RoomAreaM2)

	b.WriteString("### Tile\n")
	fmt.Fprintf(&b, "- Size: %g cm × %g cm\n", spec.LengthCm, spec.WidthCm)
	fmt.Fprintf(&b, "- Spacing: %g mm\n", spec.SpacingMm)
	fmt.Fprintf(&b, "- Pattern: %s\n\n", p.Title())

	b.WriteString("### Method\n")
	b.WriteString(methodText(p))
	b.WriteString("\n")
	fmt.Fprintf(&b, "1. Tiles along length: %g m ÷ %.4g m = %d\n", room.LengthM, r.PitchLengthM, r.TilesAlongLength)
	fmt.Fprintf(&b, "2. Tiles along width: %g m ÷ %.4g m = %d\n", room.WidthM, r.PitchWidthM, r.TilesAlongWidth)
	fmt.Fprintf(&b, "3. Tiles needed: %d\n", r.TilesNeeded)
	fmt.Fprintf(&b, "   - Whole: %d\n", r.WholeTiles)
	fmt.Fprintf(&b, "   - Cut: %d\n", r.CutTiles)
	fmt.Fprintf(&b, "   - Edge: %d, corner: %d\n\n", r.EdgeTiles, r.CornerTiles)

	b.WriteString("### Purchase\n")
	fmt.Fprintf(&b, "- Tiles with %d%% contingency: %d\n", ContingencyPercent, r.TotalTilesWithWaste)
	fmt.Fprintf(&b, "- Pattern waste factor: %.2f\n", r.PatternWasteFactor)
	fmt.Fprintf(&b, "- Tile area: %.2f m²\n", r.TotalTileAreaM2)
	if r.SavedTiles > 0 {
		fmt.Fprintf(&b, "- Tiles saved by layout: %d\n", r.SavedTiles)
	}
	fmt.Fprintf(&b, "- Estimated cost: %.2f\n", r.EstimatedCost)
	fmt.Fprintf(&b, "- Estimated installation: %g h\n\n", r.EstimatedInstallHours)

	b.WriteString("### Recommendations\n")
	b.WriteString("- Buy the contingency amount to cover breakage and future repairs.\n")
	b.WriteString("- Take all tiles from the same batch to avoid color variation.\n")
	b.WriteString("- Plan cuts along the least visible walls first.\n")
	return b.String()
}

func methodText(p Pattern) string {
	switch p {
	case Grid:
		return "Straight rows and columns. Each axis count is the room side divided by tile size plus one joint, rounded up.\n"
	case Brick:
		return "Rows are offset by half a tile. The offset forces cuts along the outer row and column of every course.\n"
	case Herringbone:
		return "Tiles interlock in pairs at 45 degrees. The pitch is derived from the tile diagonal; the layout is an approximation.\n"
	case Diagonal:
		return "The grid is rotated 45 degrees to the walls. Triangular pieces along the walls add to the count; the layout is an approximation.\n"
	default:
		return "\n"
	}
}
