package cache

import (
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Keyer derives cache keys from calculation inputs.
type Keyer interface {
	// RecordKey returns the key of a computed record.
	RecordKey(opts RecordKeyOpts) string
	// ArtifactKey returns the key of a rendered output for a record hash.
	ArtifactKey(recordHash string, opts ArtifactKeyOpts) string
}

// RecordKeyOpts is everything a computed record depends on.
type RecordKeyOpts struct {
	Room      tile.Room      `json:"room"`
	Tile      tile.TileSpec  `json:"tile"`
	Pattern   tile.Pattern   `json:"pattern"`
	Policy    tile.Policy    `json:"policy"`
	Estimator tile.Estimator `json:"estimator"`
}

// ArtifactKeyOpts identifies one rendering of a record.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Kind    string  `json:"kind"` // "layout" or "report"
	Scale   float64 `json:"scale,omitempty"`
	DPI     float64 `json:"dpi,omitempty"`
	Shading bool    `json:"shading,omitempty"`
	Palette string  `json:"palette,omitempty"` // hash of the palette colors
}

// DefaultKeyer hashes the JSON encoding of the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RecordKey returns "record:<sha256>".
func (DefaultKeyer) RecordKey(opts RecordKeyOpts) string {
	opts.Policy = opts.Policy.WithDefaults()
	return hashKey("record", opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(recordHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", recordHash, opts)
}

var _ Keyer = DefaultKeyer{}
