package render

import (
	"io"

	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

// PDF writes the layout of rec as a single-page PDF sized to the drawing.
func PDF(w io.Writer, rec *tile.Record, opts ...Option) error {
	r, colors, err := prepare(rec, opts)
	if err != nil {
		return err
	}
	width, height := r.size(rec)
	p := pdf.New(w, width, height, nil)
	r.draw(p, rec, colors)
	return p.Close()
}
