package store

import (
	"strconv"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Stats summarizes a set of calculations for the dashboard.
type Stats struct {
	TotalCalculations int                  `json:"total_calculations"`
	CompletedProjects int                  `json:"completed_projects"`
	TotalTiles        int                  `json:"total_tiles"`
	SavedTiles        int                  `json:"saved_tiles"`
	TotalAreaM2       float64              `json:"total_area_m2"`
	ByPattern         map[tile.Pattern]int `json:"by_pattern"`
	ByStatus          map[Status]int       `json:"by_status"`
}

// Summarize aggregates calcs. TotalTiles counts tiles to buy, including
// contingency.
func Summarize(calcs []*Calculation) Stats {
	s := Stats{
		ByPattern: make(map[tile.Pattern]int),
		ByStatus:  make(map[Status]int),
	}
	for _, c := range calcs {
		s.TotalCalculations++
		s.ByStatus[c.Status]++
		if c.Status == StatusCompleted {
			s.CompletedProjects++
		}
		if c.Record == nil {
			continue
		}
		s.ByPattern[c.Record.Pattern]++
		s.TotalTiles += c.Record.Result.TotalTilesWithWaste
		s.SavedTiles += c.Record.Result.SavedTiles
		s.TotalAreaM2 += c.Record.Result.RoomAreaM2
	}
	return s
}

func formatMeters(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
