package tile

import (
	"math"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

// Counts is the raw output of a pattern strategy, before aggregation.
type Counts struct {
	TilesAlongLength int     `json:"tiles_along_length"`
	TilesAlongWidth  int     `json:"tiles_along_width"`
	PitchLengthM     float64 `json:"pitch_length_m"`
	PitchWidthM      float64 `json:"pitch_width_m"`
	TilesNeeded      int     `json:"tiles_needed"`
	WholeTiles       int     `json:"whole_tiles"`
	CutTiles         int     `json:"cut_tiles"`
	EdgeTiles        int     `json:"edge_tiles"`
	CornerTiles      int     `json:"corner_tiles"`
	WasteFactor      float64 `json:"waste_factor"`
	SavedTiles       int     `json:"saved_tiles"`
}

// Count runs the strategy for p. Unknown patterns fail with
// UNSUPPORTED_PATTERN. A zero axis count, or a grid above MaxLayoutTiles,
// fails with DEGENERATE_LAYOUT.
func Count(p Pattern, room Room, dims Dimensions, policy Policy) (Counts, error) {
	policy = policy.WithDefaults()
	l, w, err := axisCounts(p, room, dims, policy)
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	switch p {
	case Grid:
		c = countGrid(room, dims, l, w)
	case Brick:
		c = countBrick(l, w, policy)
	case Herringbone:
		c = countHerringbone(room, dims, l, w, policy)
	case Diagonal:
		c = countDiagonal(room, dims, l, w, policy)
	default:
		return Counts{}, p.Validate()
	}
	c.TilesAlongLength, c.TilesAlongWidth = l.n, w.n
	c.PitchLengthM, c.PitchWidthM = l.pitch, w.pitch
	c.CutTiles = c.TilesNeeded - c.WholeTiles
	return c, nil
}

// axis is the tile count along one room side and the pitch that produced it.
type axis struct {
	n     int
	pitch float64
}

// pitches returns the placement pitch along length and width for p.
func pitches(p Pattern, dims Dimensions, policy Policy) (float64, float64, error) {
	switch p {
	case Grid, Brick:
		return dims.EffectiveLengthM, dims.EffectiveWidthM, nil
	case Herringbone:
		d := math.Hypot(dims.TileLengthM, dims.TileWidthM)*policy.FootprintFactor + dims.SpacingM
		return d, d, nil
	case Diagonal:
		return dims.TileLengthM*policy.FootprintFactor + dims.SpacingM,
			dims.TileWidthM*policy.FootprintFactor + dims.SpacingM, nil
	default:
		return 0, 0, p.Validate()
	}
}

// GridSize returns the tiles along the room length and width for p, rounded
// up the way [Count] rounds. The values are floats so that callers can bound
// a layout before its counts are converted to int.
func GridSize(p Pattern, room Room, dims Dimensions, policy Policy) (float64, float64, error) {
	pl, pw, err := pitches(p, dims, policy.WithDefaults())
	if err != nil {
		return 0, 0, err
	}
	return math.Ceil(room.LengthM/pl - roundingTolerance), math.Ceil(room.WidthM/pw - roundingTolerance), nil
}

func axisCounts(p Pattern, room Room, dims Dimensions, policy Policy) (axis, axis, error) {
	pl, pw, err := pitches(p, dims, policy)
	if err != nil {
		return axis{}, axis{}, err
	}
	fl, fw, err := GridSize(p, room, dims, policy)
	if err != nil {
		return axis{}, axis{}, err
	}
	if fl < 1 || fw < 1 {
		return axis{}, axis{}, errors.New(errors.ErrCodeDegenerateLayout,
			"%s layout has %g x %g tiles for a %gm x %gm room", p, fl, fw, room.LengthM, room.WidthM)
	}
	// Rejects NaN and Inf as well.
	if !(fl <= MaxLayoutTiles && fw <= MaxLayoutTiles && fl*fw <= MaxLayoutTiles) {
		return axis{}, axis{}, errors.New(errors.ErrCodeDegenerateLayout,
			"%s layout needs %g x %g tiles for a %gm x %gm room, limit is %d tiles",
			p, fl, fw, room.LengthM, room.WidthM, MaxLayoutTiles)
	}
	return axis{n: int(fl), pitch: pl}, axis{n: int(fw), pitch: pw}, nil
}

// perimeter splits the border cells of an l x w grid into non-corner edge
// cells and corner cells. Strips (either side < 2) have no defined split.
func perimeter(l, w int) (edge, corner int) {
	if l < 2 || w < 2 {
		return 0, 0
	}
	return 2*(l-2) + 2*(w-2), 4
}

// rotatedPerimeter is the edge estimate for rotated patterns.
func rotatedPerimeter(room Room, dims Dimensions, l, w axis) (edge, corner int) {
	if l.n < 2 || w.n < 2 {
		return 0, 0
	}
	return ceilCount((room.LengthM + room.WidthM) / (dims.TileLengthM + dims.TileWidthM)), 4
}

func countGrid(room Room, dims Dimensions, l, w axis) Counts {
	n := l.n * w.n
	edge, corner := perimeter(l.n, w.n)
	saved := int(math.Round(room.Area()/dims.TileArea() - float64(n)))
	return Counts{
		TilesNeeded: n,
		WholeTiles:  n,
		EdgeTiles:   edge,
		CornerTiles: corner,
		WasteFactor: 1.0,
		SavedTiles:  max(0, saved),
	}
}

func countBrick(l, w axis, policy Policy) Counts {
	edge, corner := perimeter(l.n, w.n)
	return Counts{
		TilesNeeded: l.n * w.n,
		WholeTiles:  (l.n - 1) * (w.n - 1),
		EdgeTiles:   edge,
		CornerTiles: corner,
		WasteFactor: policy.BrickWaste,
	}
}

func countHerringbone(room Room, dims Dimensions, l, w axis, policy Policy) Counts {
	// Tiles are laid in interlocking pairs.
	n := 2 * ceilCount(float64(l.n*w.n)/2)
	edge, corner := rotatedPerimeter(room, dims, l, w)
	return Counts{
		TilesNeeded: n,
		WholeTiles:  floorCount(float64(n) * policy.HerringboneWholeRatio),
		EdgeTiles:   edge,
		CornerTiles: corner,
		WasteFactor: policy.HerringboneWaste,
	}
}

func countDiagonal(room Room, dims Dimensions, l, w axis, policy Policy) Counts {
	n := ceilCount(float64(l.n*w.n) * policy.DiagonalOverlap)
	edge, corner := rotatedPerimeter(room, dims, l, w)
	return Counts{
		TilesNeeded: n,
		WholeTiles:  floorCount(float64(n) * policy.DiagonalWholeRatio),
		EdgeTiles:   edge,
		CornerTiles: corner,
		WasteFactor: policy.DiagonalWaste,
	}
}
