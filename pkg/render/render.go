package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists every supported format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// ParseFormat normalizes a format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch f {
	case FormatSVG, FormatPNG, FormatPDF, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be one of: svg, png, pdf, json)", s)
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Defaults.
const (
	DefaultScale    = 100.0 // mm per room meter
	DefaultMargin   = 10.0  // mm around the room
	DefaultDPI      = 96.0
	MaxScale        = 1000.0
	MaxMargin       = 1000.0
	MaxDPI          = 1200.0
	MaxPixels       = 50_000_000 // PNG width times height
	jointStrokeMM   = 0.25
	outlineStrokeMM = 0.8
)

// Option configures a rendering.
type Option func(*renderer)

type renderer struct {
	scale   float64
	margin  float64
	dpi     float64
	palette Palette
	shade   bool
}

// WithScale sets millimeters per room meter.
func WithScale(mmPerMeter float64) Option {
	return func(r *renderer) { r.scale = mmPerMeter }
}

// WithMargin sets the blank border around the room in millimeters.
func WithMargin(mm float64) Option {
	return func(r *renderer) { r.margin = mm }
}

// WithDPI sets the PNG resolution.
func WithDPI(dpi float64) Option {
	return func(r *renderer) { r.dpi = dpi }
}

// WithPalette replaces the default colors.
func WithPalette(p Palette) Option {
	return func(r *renderer) { r.palette = p }
}

// WithCoverageShading tints cut cells by the share of the tile that is cut away.
func WithCoverageShading() Option {
	return func(r *renderer) { r.shade = true }
}

func newRenderer(opts ...Option) (*renderer, error) {
	r := &renderer{scale: DefaultScale, margin: DefaultMargin, dpi: DefaultDPI, palette: DefaultPalette()}
	for _, opt := range opts {
		opt(r)
	}
	// NaN fails every comparison, so the bounds are written to reject it.
	if !(r.scale > 0 && r.scale <= MaxScale) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g] mm per meter, got %v", MaxScale, r.scale)
	}
	if math.IsNaN(r.margin) || r.margin > MaxMargin {
		return nil, errors.New(errors.ErrCodeInvalidInput, "margin must be at most %g mm, got %v", MaxMargin, r.margin)
	}
	if r.margin < 0 {
		r.margin = 0
	}
	if r.dpi == 0 {
		r.dpi = DefaultDPI
	}
	if !(r.dpi > 0 && r.dpi <= MaxDPI) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dpi must be in (0, %g], got %v", MaxDPI, r.dpi)
	}
	return r, nil
}

// size returns the canvas size in millimeters.
func (r *renderer) size(rec *tile.Record) (float64, float64) {
	return rec.Room.LengthM*r.scale + 2*r.margin, rec.Room.WidthM*r.scale + 2*r.margin
}

// pixels returns the raster size at the configured DPI.
func (r *renderer) pixels(rec *tile.Record) (float64, float64) {
	w, h := r.size(rec)
	return math.Ceil(w * r.dpi / 25.4), math.Ceil(h * r.dpi / 25.4)
}

// Target is implemented by the svg, pdf and rasterizer renderers and by
// *canvas.Canvas.
type Target interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// Size returns the drawing size of rec in millimeters.
func Size(rec *tile.Record, opts ...Option) (width, height float64, err error) {
	r, err := newRenderer(opts...)
	if err != nil {
		return 0, 0, err
	}
	width, height = r.size(rec)
	return width, height, nil
}

// Draw paints rec onto dst with its origin at the bottom left.
func Draw(dst Target, rec *tile.Record, opts ...Option) error {
	r, colors, err := prepare(rec, opts)
	if err != nil {
		return err
	}
	r.draw(dst, rec, colors)
	return nil
}

// draw paints the background, the cells, the outside mask and the room outline.
func (r *renderer) draw(dst Target, rec *tile.Record, colors resolvedPalette) {
	width, height := r.size(rec)
	roomW, roomH := rec.Room.LengthM*r.scale, rec.Room.WidthM*r.scale

	bg := canvas.DefaultStyle
	bg.Fill = canvas.Paint{Color: colors.background}
	bg.Stroke = canvas.Paint{Color: canvas.Transparent}
	dst.RenderPath(canvas.Rectangle(width, height), bg, canvas.Identity)

	// Joints show as the room floor between tiles.
	floor := bg
	floor.Fill = canvas.Paint{Color: colors.joint}
	dst.RenderPath(canvas.Rectangle(roomW, roomH), floor, canvas.Identity.Translate(r.margin, r.margin))

	tileArea := rec.Tile.LengthCm * rec.Tile.WidthCm / 1e4
	for _, c := range rec.Cells {
		if c.CoveredM2 <= 0 {
			continue
		}
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: colors.fill(c, tileArea, r.shade)}
		style.Stroke = canvas.Paint{Color: colors.border}
		style.StrokeWidth = jointStrokeMM
		path, m := r.cellPath(c, rec.Pattern, height)
		dst.RenderPath(path, style, m)
	}

	// Mask everything outside the room.
	for _, band := range [][4]float64{
		{0, 0, width, r.margin},
		{0, height - r.margin, width, r.margin},
		{0, 0, r.margin, height},
		{width - r.margin, 0, r.margin, height},
	} {
		if band[2] <= 0 || band[3] <= 0 {
			continue
		}
		dst.RenderPath(canvas.Rectangle(band[2], band[3]), bg, canvas.Identity.Translate(band[0], band[1]))
	}

	outline := canvas.DefaultStyle
	outline.Fill = canvas.Paint{Color: canvas.Transparent}
	outline.Stroke = canvas.Paint{Color: colors.outline}
	outline.StrokeWidth = outlineStrokeMM
	dst.RenderPath(canvas.Rectangle(roomW, roomH), outline, canvas.Identity.Translate(r.margin, r.margin))
}

// cellPath returns the tile shape and its placement. Room Y grows downwards,
// canvas Y upwards.
func (r *renderer) cellPath(c tile.Cell, p tile.Pattern, height float64) (*canvas.Path, canvas.Matrix) {
	w, h := c.WidthM*r.scale, c.HeightM*r.scale
	x := r.margin + c.XM*r.scale
	y := height - r.margin - c.YM*r.scale - h

	if c.AngleDeg == 0 {
		return canvas.Rectangle(w, h), canvas.Identity.Translate(x, y)
	}

	// Rotated tiles are sized to sit inside their footprint box: diagonal
	// tiles as a diamond, herringbone tiles as a long plank.
	tw, th := w/math.Sqrt2, h/math.Sqrt2
	if p == tile.Herringbone {
		tw, th = w*0.9, h*0.45
	}
	m := canvas.Identity.Translate(x+w/2, y+h/2).Rotate(c.AngleDeg).Translate(-tw/2, -th/2)
	return canvas.Rectangle(tw, th), m
}

// Render draws rec in one format.
func Render(format string, rec *tile.Record, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatSVG:
		err = SVG(&buf, rec, opts...)
	case FormatPNG:
		err = PNG(&buf, rec, opts...)
	case FormatPDF:
		err = PDF(&buf, rec, opts...)
	case FormatJSON:
		err = JSON(&buf, rec)
	default:
		_, err = ParseFormat(format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAll draws rec in every requested format concurrently.
func RenderAll(ctx context.Context, rec *tile.Record, formats []string, opts ...Option) (map[string][]byte, error) {
	results := make([][]byte, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := Render(f, rec, opts...)
			if err != nil {
				return fmt.Errorf("render %s: %w", f, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(formats))
	for i, f := range formats {
		out[f] = results[i]
	}
	return out, nil
}
