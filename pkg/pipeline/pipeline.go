// Package pipeline provides the calculation pipeline shared by the CLI and
// the HTTP API.
//
// # Architecture
//
// A run has up to three stages:
//
//  1. Compute: normalize the inputs and compute the layout record (cached)
//  2. Save: persist the record as a named calculation and publish an event
//  3. Render: draw the layout and reports in the requested formats
//
// Each stage can be run on its own through the [Runner] methods.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Room:    tile.Room{LengthM: 5.5, WidthM: 4.2},
//	    Tile:    tile.TileSpec{LengthCm: 30, WidthCm: 30, SpacingMm: 3},
//	    Pattern: tile.Grid,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilecalc/pkg/cache"
	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxCells bounds the grid size (tiles along length times tiles
	// along width) a single calculation may produce.
	DefaultMaxCells = 250_000

	// DefaultParallelism is the number of concurrent calculations in a batch.
	DefaultParallelism = 4
)

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = render.FormatJSON

	// Report formats.
	FormatReportPDF = "report.pdf"
	FormatReportMD  = "report.md"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:       true,
	FormatPNG:       true,
	FormatPDF:       true,
	FormatJSON:      true,
	FormatReportPDF: true,
	FormatReportMD:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one calculation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Compute options
	Room      tile.Room       `json:"room"`
	Tile      tile.TileSpec   `json:"tile"`
	Pattern   tile.Pattern    `json:"pattern"`
	Policy    *tile.Policy    `json:"policy,omitempty"`
	Estimator *tile.Estimator `json:"estimator,omitempty"`
	MaxCells  int             `json:"max_cells,omitempty"`
	Refresh   bool            `json:"refresh,omitempty"`

	// Save options
	Save   bool   `json:"save,omitempty"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`

	// Render options
	Formats []string        `json:"formats,omitempty"`
	Scale   float64         `json:"scale,omitempty"`
	DPI     float64         `json:"dpi,omitempty"`
	Shading bool            `json:"shading,omitempty"`
	Palette *render.Palette `json:"palette,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Record is the computed layout.
	Record *tile.Record

	// RecordHash is the content hash of the record.
	RecordHash string

	// Calculation is the saved calculation, nil unless Options.Save is set.
	Calculation *store.Calculation

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CellCount   int
	TilesNeeded int
	ComputeTime time.Duration
	SaveTime    time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ComputeHit bool // Whether the record came from cache
	RenderHit  bool // Whether all layout artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, report.pdf, report.md)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// IsReportFormat reports whether format is rendered by the report package.
func IsReportFormat(format string) bool {
	return format == FormatReportPDF || format == FormatReportMD
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the inputs and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompute(); err != nil {
		return err
	}
	if o.Save {
		if err := errors.ValidateName(o.Name); err != nil {
			return err
		}
		if _, err := store.ParseStatus(o.Status); err != nil {
			return err
		}
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompute checks the room, tile and pattern and applies compute defaults.
func (o *Options) ValidateForCompute() error {
	if err := o.Room.Validate(); err != nil {
		return err
	}
	if err := o.Tile.Validate(); err != nil {
		return err
	}
	p, err := tile.ParsePattern(string(o.Pattern))
	if err != nil {
		return err
	}
	o.Pattern = p
	if o.Policy != nil {
		if err := o.Policy.WithDefaults().Validate(); err != nil {
			return err
		}
	}
	if o.Estimator != nil {
		if err := o.Estimator.Validate(); err != nil {
			return err
		}
	}
	if o.MaxCells == 0 {
		o.MaxCells = DefaultMaxCells
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Scale == 0 {
		o.Scale = render.DefaultScale
	}
	if o.DPI == 0 {
		o.DPI = render.DefaultDPI
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !(o.Scale > 0 && o.Scale <= render.MaxScale) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %v", render.MaxScale, o.Scale)
	}
	if !(o.DPI > 0 && o.DPI <= render.MaxDPI) {
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be in (0, %g], got %v", render.MaxDPI, o.DPI)
	}
	if o.Palette != nil {
		return o.Palette.Validate()
	}
	return nil
}

// ComputeOptions returns the tile options for the configured overrides.
func (o *Options) ComputeOptions() []tile.Option {
	var opts []tile.Option
	if o.Policy != nil {
		opts = append(opts, tile.WithPolicy(*o.Policy))
	}
	if o.Estimator != nil {
		opts = append(opts, tile.WithEstimator(*o.Estimator))
	}
	return opts
}

// RenderOptions returns the render options for the configured look.
func (o *Options) RenderOptions() []render.Option {
	opts := []render.Option{render.WithScale(o.Scale), render.WithDPI(o.DPI)}
	if o.Palette != nil {
		opts = append(opts, render.WithPalette(*o.Palette))
	}
	if o.Shading {
		opts = append(opts, render.WithCoverageShading())
	}
	return opts
}

// RecordKeyOpts returns cache key options for the record.
func (o *Options) RecordKeyOpts() cache.RecordKeyOpts {
	k := cache.RecordKeyOpts{
		Room:      o.Room,
		Tile:      o.Tile,
		Pattern:   o.Pattern,
		Policy:    tile.DefaultPolicy(),
		Estimator: tile.DefaultEstimator(),
	}
	if o.Policy != nil {
		k.Policy = *o.Policy
	}
	if o.Estimator != nil {
		k.Estimator = *o.Estimator
	}
	return k
}

// ArtifactKeyOpts returns cache key options for a layout format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:  format,
		Kind:    "layout",
		Scale:   o.Scale,
		DPI:     o.DPI,
		Shading: o.Shading,
	}
	if o.Palette != nil {
		k.Palette = cache.Hash(fmt.Appendf(nil, "%+v", *o.Palette))
	}
	return k
}

// layoutFormats returns the requested formats drawn by the render package.
func (o *Options) layoutFormats() []string {
	return slices.DeleteFunc(slices.Clone(o.Formats), IsReportFormat)
}
