package render

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

// layoutJSON is the exported layout document.
type layoutJSON struct {
	Pattern     tile.Pattern      `json:"pattern"`
	Approximate bool              `json:"approximate"`
	Room        tile.Room         `json:"room"`
	Tile        tile.TileSpec     `json:"tile"`
	Result      tile.LayoutResult `json:"result"`
	Cells       []tile.Cell       `json:"cells"`
}

// JSON writes the record, including its ordered cell list, as indented JSON.
func JSON(w io.Writer, rec *tile.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(layoutJSON{
		Pattern:     rec.Pattern,
		Approximate: rec.Approximate,
		Room:        rec.Room,
		Tile:        rec.Tile,
		Result:      rec.Result,
		Cells:       rec.Cells,
	})
}
