package tile

// LayoutResult is the aggregated outcome of one calculation.
//
// Invariants: WholeTiles+CutTiles == TilesNeeded and
// TotalTilesWithWaste >= TilesNeeded. All counts are rounded up.
type LayoutResult struct {
	TilesNeeded      int `json:"tiles_needed" bson:"tiles_needed"`
	WholeTiles       int `json:"whole_tiles" bson:"whole_tiles"`
	CutTiles         int `json:"cut_tiles" bson:"cut_tiles"`
	EdgeTiles        int `json:"edge_tiles" bson:"edge_tiles"`
	CornerTiles      int `json:"corner_tiles" bson:"corner_tiles"`
	TilesAlongLength int `json:"tiles_along_length" bson:"tiles_along_length"`
	TilesAlongWidth  int `json:"tiles_along_width" bson:"tiles_along_width"`

	PitchLengthM float64 `json:"pitch_length_m" bson:"pitch_length_m"`
	PitchWidthM  float64 `json:"pitch_width_m" bson:"pitch_width_m"`

	RoomAreaM2      float64 `json:"room_area_m2" bson:"room_area_m2"`
	TotalTileAreaM2 float64 `json:"total_tile_area_m2" bson:"total_tile_area_m2"`

	PatternWasteFactor  float64 `json:"pattern_waste_factor" bson:"pattern_waste_factor"`
	TotalTilesWithWaste int     `json:"total_tiles_with_waste" bson:"total_tiles_with_waste"`
	SavedTiles          int     `json:"saved_tiles" bson:"saved_tiles"`

	EstimatedCost         float64 `json:"estimated_cost" bson:"estimated_cost"`
	EstimatedInstallHours float64 `json:"estimated_install_hours" bson:"estimated_install_hours"`
}

// PerimeterTiles returns EdgeTiles + CornerTiles.
func (r LayoutResult) PerimeterTiles() int {
	return r.EdgeTiles + r.CornerTiles
}

// Aggregate combines strategy counts with area, contingency and estimates.
func Aggregate(c Counts, room Room, dims Dimensions, est Estimator) LayoutResult {
	if est.TilesPerHour <= 0 {
		est.TilesPerHour = DefaultTilesPerHour
	}
	withWaste := ceilCount(float64(c.TilesNeeded) * (1 + ContingencyPercent/100.0))

	return LayoutResult{
		TilesNeeded:      c.TilesNeeded,
		WholeTiles:       c.WholeTiles,
		CutTiles:         c.CutTiles,
		EdgeTiles:        c.EdgeTiles,
		CornerTiles:      c.CornerTiles,
		TilesAlongLength: c.TilesAlongLength,
		TilesAlongWidth:  c.TilesAlongWidth,
		PitchLengthM:     c.PitchLengthM,
		PitchWidthM:      c.PitchWidthM,

		RoomAreaM2:      room.Area(),
		TotalTileAreaM2: float64(c.TilesNeeded) * dims.TileArea(),

		PatternWasteFactor:  c.WasteFactor,
		TotalTilesWithWaste: withWaste,
		SavedTiles:          c.SavedTiles,

		EstimatedCost:         float64(withWaste) * est.UnitCost,
		EstimatedInstallHours: float64(ceilCount(float64(withWaste) / est.TilesPerHour)),
	}
}
