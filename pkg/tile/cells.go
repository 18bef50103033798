package tile

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

// Classification tells whether a placed tile stays whole or must be cut.
type Classification string

const (
	Whole  Classification = "whole"
	Edge   Classification = "edge"   // on exactly one first/last row or column
	Corner Classification = "corner" // on a first/last row and a first/last column
)

// Cell is one placed tile position. Coordinates are meters from the room
// origin; X runs along the room length, Y along its width.
type Cell struct {
	Row     int            `json:"row"`
	Col     int            `json:"col"`
	XM      float64        `json:"x_m"`
	YM      float64        `json:"y_m"`
	WidthM  float64        `json:"width_m"`
	HeightM float64        `json:"height_m"`
	Class   Classification `json:"class"`

	// AngleDeg is the rotation of the tile around the cell center.
	AngleDeg float64 `json:"angle_deg,omitempty"`
	// CoveredM2 is the part of the cell bound that lies inside the room.
	CoveredM2 float64 `json:"covered_m2"`
}

// Bound returns the axis-aligned bound of the cell.
func (c Cell) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.XM, c.YM},
		Max: orb.Point{c.XM + c.WidthM, c.YM + c.HeightM},
	}
}

// RoomBound returns the room as a bound anchored at the origin.
func RoomBound(room Room) orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{room.LengthM, room.WidthM}}
}

// GenerateCells places the tiles of p in row-major order: rows over the room
// width, columns over the room length. The axis counts match [Count] for the
// same inputs.
//
// Grid cells are exact. Odd Brick rows start half a pitch before the near
// wall and keep the Grid count, so they can stop short of the far wall; see
// [BrickStripM]. Herringbone and Diagonal cells sit on the footprint pitch
// with a rotation and only approximate the real layout.
func GenerateCells(p Pattern, room Room, dims Dimensions, policy Policy) ([]Cell, error) {
	policy = policy.WithDefaults()
	l, w, err := axisCounts(p, room, dims, policy)
	if err != nil {
		return nil, err
	}

	rb := RoomBound(room)
	cells := make([]Cell, 0, l.n*w.n)
	for row := 0; row < w.n; row++ {
		for col := 0; col < l.n; col++ {
			c := Cell{
				Row:   row,
				Col:   col,
				XM:    float64(col) * l.pitch,
				YM:    float64(row) * w.pitch,
				Class: classify(row, col, w.n, l.n),
			}
			switch p {
			case Grid:
				c.WidthM, c.HeightM = dims.TileLengthM, dims.TileWidthM
			case Brick:
				c.WidthM, c.HeightM = dims.TileLengthM, dims.TileWidthM
				if row%2 == 1 {
					c.XM -= l.pitch / 2
				}
			case Herringbone:
				c.WidthM, c.HeightM = l.pitch-dims.SpacingM, w.pitch-dims.SpacingM
				c.AngleDeg = 45
				if (row+col)%2 == 1 {
					c.AngleDeg = -45
				}
			case Diagonal:
				c.WidthM, c.HeightM = l.pitch-dims.SpacingM, w.pitch-dims.SpacingM
				c.AngleDeg = 45
			}
			c.CoveredM2 = coveredArea(c.Bound(), rb)
			cells = append(cells, c)
		}
	}
	return cells, nil
}

// BrickStripM returns the width of the strip along the far wall that the
// odd rows of a Brick layout leave without a cell. It is zero when the
// even rows overhang the far wall by at least half a pitch, or when the
// layout has a single row.
func BrickStripM(room Room, r LayoutResult) float64 {
	if r.TilesAlongWidth < 2 {
		return 0
	}
	end := (float64(r.TilesAlongLength) - 0.5) * r.PitchLengthM
	if gap := room.LengthM - end; gap > roundingTolerance {
		return gap
	}
	return 0
}

func classify(row, col, rows, cols int) Classification {
	onRow := row == 0 || row == rows-1
	onCol := col == 0 || col == cols-1
	switch {
	case onRow && onCol:
		return Corner
	case onRow || onCol:
		return Edge
	default:
		return Whole
	}
}

func coveredArea(cell, room orb.Bound) float64 {
	if !cell.Intersects(room) {
		return 0
	}
	w := math.Min(cell.Right(), room.Right()) - math.Max(cell.Left(), room.Left())
	h := math.Min(cell.Top(), room.Top()) - math.Max(cell.Bottom(), room.Bottom())
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// ClassCounts tallies cells by classification.
func ClassCounts(cells []Cell) map[Classification]int {
	m := make(map[Classification]int, 3)
	for _, c := range cells {
		m[c.Class]++
	}
	return m
}

// VerifyGrid cross-checks a Grid cell list against its result. Strips
// (either axis < 2) are not checked. A mismatch is an internal error.
func VerifyGrid(r LayoutResult, cells []Cell) error {
	if r.TilesAlongLength < 2 || r.TilesAlongWidth < 2 {
		return nil
	}
	if len(cells) != r.TilesAlongLength*r.TilesAlongWidth {
		return errors.New(errors.ErrCodeInternal, "grid has %d cells, want %d",
			len(cells), r.TilesAlongLength*r.TilesAlongWidth)
	}
	counts := ClassCounts(cells)
	if counts[Corner] != 4 {
		return errors.New(errors.ErrCodeInternal, "grid has %d corner cells, want 4", counts[Corner])
	}
	if got := counts[Edge] + counts[Corner]; got != r.PerimeterTiles() {
		return errors.New(errors.ErrCodeInternal, "grid has %d perimeter cells, result says %d",
			got, r.PerimeterTiles())
	}
	return nil
}
