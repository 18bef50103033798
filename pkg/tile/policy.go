package tile

import (
	"math"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

// ContingencyPercent is the fixed purchase contingency added on top of
// tilesNeeded to obtain TotalTilesWithWaste.
const ContingencyPercent = 10

// MaxLayoutTiles bounds the tiles along length times the tiles along width
// of one layout. Larger grids are rejected before any count or cell is
// computed.
const MaxLayoutTiles = 4_000_000

// roundingTolerance absorbs float error before ceil/floor, so that values like
// 0.9/0.3 or 0.7*30 round the way exact arithmetic would.
const roundingTolerance = 1e-9

// Default policy values.
const (
	DefaultFootprintFactor       = 0.7
	DefaultBrickWaste            = 1.05
	DefaultHerringboneWaste      = 1.15
	DefaultDiagonalWaste         = 1.1
	DefaultHerringboneWholeRatio = 0.7
	DefaultDiagonalWholeRatio    = 0.75
	DefaultDiagonalOverlap       = 1.1
)

// Policy holds the empirical factors used by the non-grid strategies.
// They approximate real-world behaviour and are not exact geometry.
type Policy struct {
	// FootprintFactor scales the tile footprint to a placement pitch for
	// Herringbone and Diagonal.
	FootprintFactor float64 `json:"footprint_factor" toml:"footprint_factor" yaml:"footprint_factor"`

	BrickWaste       float64 `json:"brick_waste" toml:"brick_waste" yaml:"brick_waste"`
	HerringboneWaste float64 `json:"herringbone_waste" toml:"herringbone_waste" yaml:"herringbone_waste"`
	DiagonalWaste    float64 `json:"diagonal_waste" toml:"diagonal_waste" yaml:"diagonal_waste"`

	// Share of tilesNeeded that stays whole.
	HerringboneWholeRatio float64 `json:"herringbone_whole_ratio" toml:"herringbone_whole_ratio" yaml:"herringbone_whole_ratio"`
	DiagonalWholeRatio    float64 `json:"diagonal_whole_ratio" toml:"diagonal_whole_ratio" yaml:"diagonal_whole_ratio"`

	// DiagonalOverlap inflates the diagonal grid count for the triangular
	// pieces along the walls.
	DiagonalOverlap float64 `json:"diagonal_overlap" toml:"diagonal_overlap" yaml:"diagonal_overlap"`
}

// DefaultPolicy returns the factors of the reference calculator.
func DefaultPolicy() Policy {
	return Policy{
		FootprintFactor:       DefaultFootprintFactor,
		BrickWaste:            DefaultBrickWaste,
		HerringboneWaste:      DefaultHerringboneWaste,
		DiagonalWaste:         DefaultDiagonalWaste,
		HerringboneWholeRatio: DefaultHerringboneWholeRatio,
		DiagonalWholeRatio:    DefaultDiagonalWholeRatio,
		DiagonalOverlap:       DefaultDiagonalOverlap,
	}
}

// WithDefaults returns a copy of p where zero fields carry their default value.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&p.FootprintFactor, d.FootprintFactor)
	fill(&p.BrickWaste, d.BrickWaste)
	fill(&p.HerringboneWaste, d.HerringboneWaste)
	fill(&p.DiagonalWaste, d.DiagonalWaste)
	fill(&p.HerringboneWholeRatio, d.HerringboneWholeRatio)
	fill(&p.DiagonalWholeRatio, d.DiagonalWholeRatio)
	fill(&p.DiagonalOverlap, d.DiagonalOverlap)
	return p
}

// Validate checks the factor ranges. It is meant for configuration loading;
// the strategies assume a valid policy.
func (p Policy) Validate() error {
	checks := []struct {
		name     string
		v, lo, hi float64
	}{
		{"footprint_factor", p.FootprintFactor, math.SmallestNonzeroFloat64, 1},
		{"brick_waste", p.BrickWaste, 1, math.MaxFloat64},
		{"herringbone_waste", p.HerringboneWaste, 1, math.MaxFloat64},
		{"diagonal_waste", p.DiagonalWaste, 1, math.MaxFloat64},
		{"herringbone_whole_ratio", p.HerringboneWholeRatio, 0, 1},
		{"diagonal_whole_ratio", p.DiagonalWholeRatio, 0, 1},
		{"diagonal_overlap", p.DiagonalOverlap, 1, math.MaxFloat64},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || c.v < c.lo || c.v > c.hi {
			return errors.New(errors.ErrCodeInvalidInput, "policy %s out of range: %v", c.name, c.v)
		}
	}
	return nil
}

// Estimator turns a purchase count into cost and labour estimates.
type Estimator struct {
	UnitCost     float64 `json:"unit_cost" toml:"unit_cost" yaml:"unit_cost"`
	TilesPerHour float64 `json:"tiles_per_hour" toml:"tiles_per_hour" yaml:"tiles_per_hour"`
}

// Default estimator values.
const (
	DefaultUnitCost     = 5.0
	DefaultTilesPerHour = 10.0
)

// DefaultEstimator returns a unit cost of 5 and an install rate of 10 tiles per hour.
func DefaultEstimator() Estimator {
	return Estimator{UnitCost: DefaultUnitCost, TilesPerHour: DefaultTilesPerHour}
}

// Validate checks that the cost is not negative and the rate is positive.
func (e Estimator) Validate() error {
	if math.IsNaN(e.UnitCost) || math.IsInf(e.UnitCost, 0) || e.UnitCost < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unit cost must be >= 0, got %v", e.UnitCost)
	}
	if math.IsNaN(e.TilesPerHour) || math.IsInf(e.TilesPerHour, 0) || e.TilesPerHour <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tiles per hour must be > 0, got %v", e.TilesPerHour)
	}
	return nil
}

func ceilCount(x float64) int {
	return int(math.Ceil(x - roundingTolerance))
}

func floorCount(x float64) int {
	return int(math.Floor(x + roundingTolerance))
}
