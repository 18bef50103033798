package render

import (
	"io"

	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

// SVG writes the layout of rec as SVG.
func SVG(w io.Writer, rec *tile.Record, opts ...Option) error {
	r, colors, err := prepare(rec, opts)
	if err != nil {
		return err
	}
	width, height := r.size(rec)
	s := svg.New(w, width, height, nil)
	r.draw(s, rec, colors)
	return s.Close()
}

func prepare(rec *tile.Record, opts []Option) (*renderer, resolvedPalette, error) {
	r, err := newRenderer(opts...)
	if err != nil {
		return nil, resolvedPalette{}, err
	}
	colors, err := r.palette.resolve()
	if err != nil {
		return nil, resolvedPalette{}, err
	}
	return r, colors, nil
}
