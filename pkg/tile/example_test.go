package tile_test

import (
	"fmt"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

func ExampleComputeLayout() {
	room := tile.Room{LengthM: 5.5, WidthM: 4.2}
	spec := tile.TileSpec{LengthCm: 30, WidthCm: 30, SpacingMm: 2}

	rec, err := tile.ComputeLayout(room, spec, tile.Grid)
	if err != nil {
		fmt.Println(err)
		return
	}
	r := rec.Result
	fmt.Printf("%d x %d = %d tiles\n", r.TilesAlongLength, r.TilesAlongWidth, r.TilesNeeded)
	fmt.Println("To buy:", r.TotalTilesWithWaste)
	fmt.Println("Edge/corner:", r.EdgeTiles, r.CornerTiles)
	// Output:
	// 19 x 14 = 266 tiles
	// To buy: 293
	// Edge/corner: 58 4
}

func ExampleParseInput() {
	room, spec, p, err := tile.ParseInput(tile.RawInput{
		RoomLength: "2,5",
		RoomWidth:  "2",
		TileLength: "60",
		TileWidth:  "30",
		Spacing:    "3",
		Pattern:    "Brick",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(room.LengthM, spec.LengthCm, p)

	_, _, _, err = tile.ParseInput(tile.RawInput{
		RoomLength: "4", RoomWidth: "3", TileLength: "30", TileWidth: "30", Pattern: "hexagonal",
	})
	fmt.Println(err)
	// Output:
	// 2.5 60 brick
	// UNSUPPORTED_PATTERN: unsupported pattern "hexagonal" (must be one of: grid, brick, herringbone, diagonal)
}
