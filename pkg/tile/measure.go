package tile

import (
	"github.com/matzehuels/tilecalc/pkg/errors"
)

// Unit conversion factors to meters.
const (
	cmPerMeter = 100.0
	mmPerMeter = 1000.0
)

// Room is the floor to cover, measured in meters.
type Room struct {
	LengthM float64 `json:"length_m" bson:"length_m"`
	WidthM  float64 `json:"width_m" bson:"width_m"`
}

// Area returns the floor area in square meters.
func (r Room) Area() float64 {
	return r.LengthM * r.WidthM
}

// Validate checks that both room measurements are positive and finite.
func (r Room) Validate() error {
	if err := errors.ValidateDimension("room length", r.LengthM); err != nil {
		return err
	}
	return errors.ValidateDimension("room width", r.WidthM)
}

// TileSpec describes one tile unit: its size in centimeters and the joint
// spacing to neighbouring tiles in millimeters.
type TileSpec struct {
	LengthCm  float64 `json:"length_cm" bson:"length_cm"`
	WidthCm   float64 `json:"width_cm" bson:"width_cm"`
	SpacingMm float64 `json:"spacing_mm" bson:"spacing_mm"`
}

// Validate checks that the tile size is positive and the spacing is not negative.
func (t TileSpec) Validate() error {
	if err := errors.ValidateDimension("tile length", t.LengthCm); err != nil {
		return err
	}
	if err := errors.ValidateDimension("tile width", t.WidthCm); err != nil {
		return err
	}
	return errors.ValidateSpacing("tile spacing", t.SpacingMm)
}

// Dimensions holds tile measurements converted to meters.
// Effective sizes include one joint.
type Dimensions struct {
	TileLengthM      float64 `json:"tile_length_m"`
	TileWidthM       float64 `json:"tile_width_m"`
	SpacingM         float64 `json:"spacing_m"`
	EffectiveLengthM float64 `json:"effective_length_m"`
	EffectiveWidthM  float64 `json:"effective_width_m"`
}

// TileArea returns the area of one tile without its joint.
func (d Dimensions) TileArea() float64 {
	return d.TileLengthM * d.TileWidthM
}

// Normalize validates room and tile and converts the tile measurements to meters.
// It fails with INVALID_DIMENSION before any pattern logic can run.
func Normalize(room Room, spec TileSpec) (Dimensions, error) {
	if err := room.Validate(); err != nil {
		return Dimensions{}, err
	}
	if err := spec.Validate(); err != nil {
		return Dimensions{}, err
	}

	d := Dimensions{
		TileLengthM: spec.LengthCm / cmPerMeter,
		TileWidthM:  spec.WidthCm / cmPerMeter,
		SpacingM:    spec.SpacingMm / mmPerMeter,
	}
	d.EffectiveLengthM = d.TileLengthM + d.SpacingM
	d.EffectiveWidthM = d.TileWidthM + d.SpacingM
	return d, nil
}
