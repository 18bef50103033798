package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Palette holds hex colors for a layout drawing.
type Palette struct {
	Whole      string `json:"whole" toml:"whole" yaml:"whole"`
	Edge       string `json:"edge" toml:"edge" yaml:"edge"`
	Corner     string `json:"corner" toml:"corner" yaml:"corner"`
	Border     string `json:"border" toml:"border" yaml:"border"`
	Joint      string `json:"joint" toml:"joint" yaml:"joint"`
	Outline    string `json:"outline" toml:"outline" yaml:"outline"`
	Background string `json:"background" toml:"background" yaml:"background"`
}

// DefaultPalette is white whole tiles, pale yellow edges and pale red corners.
func DefaultPalette() Palette {
	return Palette{
		Whole:      "#ffffff",
		Edge:       "#ffffcc",
		Corner:     "#ffcccc",
		Border:     "#cccccc",
		Joint:      "#e8e8e8",
		Outline:    "#333333",
		Background: "#ffffff",
	}
}

// Validate reports the first color that is not a valid hex value.
func (p Palette) Validate() error {
	_, err := p.resolve()
	return err
}

type resolvedPalette struct {
	whole, edge, corner colorful.Color
	border, joint       color.RGBA
	outline, background color.RGBA
	cut                 colorful.Color
}

func (p Palette) resolve() (resolvedPalette, error) {
	def := DefaultPalette()
	fields := []struct {
		name string
		hex  string
		def  string
		dst  *colorful.Color
	}{
		{"whole", p.Whole, def.Whole, new(colorful.Color)},
		{"edge", p.Edge, def.Edge, new(colorful.Color)},
		{"corner", p.Corner, def.Corner, new(colorful.Color)},
		{"border", p.Border, def.Border, new(colorful.Color)},
		{"joint", p.Joint, def.Joint, new(colorful.Color)},
		{"outline", p.Outline, def.Outline, new(colorful.Color)},
		{"background", p.Background, def.Background, new(colorful.Color)},
	}
	for _, f := range fields {
		hex := f.hex
		if hex == "" {
			hex = f.def
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return resolvedPalette{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "palette %s: invalid color %q", f.name, hex)
		}
		*f.dst = c
	}

	return resolvedPalette{
		whole:      *fields[0].dst,
		edge:       *fields[1].dst,
		corner:     *fields[2].dst,
		border:     rgba(*fields[3].dst),
		joint:      rgba(*fields[4].dst),
		outline:    rgba(*fields[5].dst),
		background: rgba(*fields[6].dst),
		// Shaded cells fade towards the corner color in Lab space.
		cut: fields[2].dst.BlendLab(*fields[5].dst, 0.25),
	}, nil
}

// fill returns the fill color of a cell. With shading, the class color is
// blended towards the cut color by the uncovered share of the tile.
func (p resolvedPalette) fill(c tile.Cell, tileAreaM2 float64, shade bool) color.RGBA {
	var base colorful.Color
	switch c.Class {
	case tile.Corner:
		base = p.corner
	case tile.Edge:
		base = p.edge
	default:
		base = p.whole
	}
	if !shade || c.AngleDeg != 0 || tileAreaM2 <= 0 {
		return rgba(base)
	}
	cutShare := 1 - c.CoveredM2/tileAreaM2
	if cutShare <= 0 {
		return rgba(base)
	}
	if cutShare > 1 {
		cutShare = 1
	}
	return rgba(base.BlendLab(p.cut, cutShare).Clamped())
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
