package render

import (
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// PNG rasterizes the layout of rec at the configured DPI.
func PNG(w io.Writer, rec *tile.Record, opts ...Option) error {
	r, colors, err := prepare(rec, opts)
	if err != nil {
		return err
	}
	if pw, ph := r.pixels(rec); !(pw*ph <= MaxPixels) {
		return errors.New(errors.ErrCodeTooLarge,
			"png would be %.0f x %.0f px, limit is %d px; lower the dpi or scale", pw, ph, MaxPixels)
	}
	width, height := r.size(rec)
	rast := rasterizer.New(width, height, canvas.DPI(r.dpi), canvas.DefaultColorSpace)
	r.draw(rast, rec, colors)
	return png.Encode(w, rast)
}
