package tile

import (
	"slices"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

// Record is the complete outcome of one calculation.
type Record struct {
	Room    Room         `json:"room"`
	Tile    TileSpec     `json:"tile"`
	Pattern Pattern      `json:"pattern"`
	Result  LayoutResult `json:"result"`
	Cells   []Cell       `json:"cells"`

	// Approximate is set when Cells is a visual approximation: always for
	// Herringbone and Diagonal, and for Brick when odd rows leave a strip
	// along the far wall.
	Approximate bool `json:"approximate"`
}

// Clone returns a copy of r that shares no memory with it.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Cells = slices.Clone(r.Cells)
	return &cp
}

// Explain returns the Markdown narrative for the record.
func (r *Record) Explain() string {
	return Explain(r.Room, r.Tile, r.Pattern, r.Result)
}

// Option configures ComputeLayout.
type Option func(*computeConfig)

type computeConfig struct {
	policy    Policy
	estimator Estimator
}

// WithPolicy overrides the pattern factors. Zero fields keep their default.
func WithPolicy(p Policy) Option {
	return func(c *computeConfig) { c.policy = p.WithDefaults() }
}

// WithEstimator overrides unit cost and install rate.
func WithEstimator(e Estimator) Option {
	return func(c *computeConfig) { c.estimator = e }
}

// ComputeLayout normalizes the inputs, runs the strategy for p, aggregates the
// result and generates the cell list. It performs no I/O.
func ComputeLayout(room Room, spec TileSpec, p Pattern, opts ...Option) (*Record, error) {
	cfg := computeConfig{policy: DefaultPolicy(), estimator: DefaultEstimator()}
	for _, opt := range opts {
		opt(&cfg)
	}

	dims, err := Normalize(room, spec)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	counts, err := Count(p, room, dims, cfg.policy)
	if err != nil {
		return nil, err
	}
	result := Aggregate(counts, room, dims, cfg.estimator)

	cells, err := GenerateCells(p, room, dims, cfg.policy)
	if err != nil {
		return nil, err
	}
	if p == Grid {
		if err := VerifyGrid(result, cells); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "grid cross-check")
		}
	}

	return &Record{
		Room:        room,
		Tile:        spec,
		Pattern:     p,
		Result:      result,
		Cells:       cells,
		Approximate: !p.Rectangular() || (p == Brick && BrickStripM(room, result) > 0),
	}, nil
}

// RawInput is the unparsed text of the calculator form.
type RawInput struct {
	RoomLength string `json:"roomLength"`
	RoomWidth  string `json:"roomWidth"`
	TileLength string `json:"tileLength"`
	TileWidth  string `json:"tileWidth"`
	Spacing    string `json:"spacing"`
	Pattern    string `json:"pattern"`
}

// ParseInput converts form text to typed values. An empty spacing means no
// joint. Failures are INVALID_DIMENSION or UNSUPPORTED_PATTERN.
func ParseInput(in RawInput) (Room, TileSpec, Pattern, error) {
	var (
		room Room
		spec TileSpec
		err  error
	)
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"room length", in.RoomLength, &room.LengthM},
		{"room width", in.RoomWidth, &room.WidthM},
		{"tile length", in.TileLength, &spec.LengthCm},
		{"tile width", in.TileWidth, &spec.WidthCm},
	}
	for _, f := range fields {
		if *f.dst, err = errors.ParseMeasurement(f.name, f.raw); err != nil {
			return Room{}, TileSpec{}, "", err
		}
	}
	if in.Spacing != "" {
		if spec.SpacingMm, err = errors.ParseMeasurement("tile spacing", in.Spacing); err != nil {
			return Room{}, TileSpec{}, "", err
		}
	}
	if err := room.Validate(); err != nil {
		return Room{}, TileSpec{}, "", err
	}
	if err := spec.Validate(); err != nil {
		return Room{}, TileSpec{}, "", err
	}
	p, err := ParsePattern(in.Pattern)
	if err != nil {
		return Room{}, TileSpec{}, "", err
	}
	return room, spec, p, nil
}
