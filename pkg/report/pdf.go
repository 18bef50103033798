package report

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// A4 page geometry in millimeters.
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	pageMargin = 18.0
	ptToMM     = 0.3528
	lineSpread = 1.45
)

var (
	fontOnce   sync.Once
	fontFamily *canvas.FontFamily
	fontErr    error
)

func loadFonts() (*canvas.FontFamily, error) {
	fontOnce.Do(func() {
		fam := canvas.NewFontFamily("Latin Modern Roman")
		if err := fam.LoadFont(lmroman10regular.TTF, 0, canvas.FontRegular); err != nil {
			fontErr = fmt.Errorf("load regular font: %w", err)
			return
		}
		if err := fam.LoadFont(lmroman10bold.TTF, 0, canvas.FontBold); err != nil {
			fontErr = fmt.Errorf("load bold font: %w", err)
			return
		}
		fontFamily = fam
	})
	return fontFamily, fontErr
}

// page lays out text lines top to bottom and starts new pages as needed.
type page struct {
	fam   *canvas.FontFamily
	pages []*canvas.Canvas
	ctx   *canvas.Context
	y     float64
}

func newPage(fam *canvas.FontFamily) *page {
	p := &page{fam: fam}
	p.next()
	return p
}

func (p *page) next() {
	c := canvas.New(pageWidth, pageHeight)
	p.pages = append(p.pages, c)
	p.ctx = canvas.NewContext(c)
	p.y = pageHeight - pageMargin
}

func (p *page) face(sizePt float64, bold bool) *canvas.FontFace {
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	return p.fam.Face(sizePt, color.Black, style, canvas.FontNormal)
}

// text writes one line at column x (mm from the left margin).
func (p *page) text(s string, sizePt float64, bold bool, align canvas.TextAlign, x float64) {
	lh := sizePt * ptToMM * lineSpread
	if p.y-lh < pageMargin {
		p.next()
	}
	p.y -= lh
	left := pageMargin + x
	switch align {
	case canvas.Center:
		left = pageWidth / 2
	case canvas.Right:
		left = pageWidth - pageMargin
	}
	p.ctx.DrawText(left, p.y, canvas.NewTextLine(p.face(sizePt, bold), s, align))
}

// pair writes a label and a value on the same line.
func (p *page) pair(label, value string, sizePt float64, bold bool) {
	p.text(label, sizePt, bold, canvas.Left, 0)
	p.ctx.DrawText(pageMargin+90, p.y, canvas.NewTextLine(p.face(sizePt, bold), value, canvas.Left))
}

func (p *page) gap(mm float64) {
	p.y -= mm
}

// PDF writes an A4 report followed by a page with the layout drawing.
// Render options apply to the drawing.
func PDF(w io.Writer, rec *tile.Record, meta Meta, opts ...render.Option) error {
	fam, err := loadFonts()
	if err != nil {
		return err
	}
	layoutW, layoutH, err := render.Size(rec, opts...)
	if err != nil {
		return err
	}

	p := newPage(fam)
	p.text("Tile Calculation Report", 24, true, canvas.Center, 0)
	if meta.Project != "" {
		p.text("Project: "+meta.Project, 16, true, canvas.Center, 0)
	}
	p.gap(2)
	p.text("Generated on: "+meta.generated().Format(dateLayout), 11, false, canvas.Right, 0)
	if meta.Status != "" {
		p.text("Status: "+meta.Status, 11, false, canvas.Right, 0)
	}
	p.gap(6)

	p.text("Calculation Results", 14, true, canvas.Left, 0)
	p.gap(1)
	p.pair("Measurement", "Value", 12, true)
	for _, r := range resultRows(rec.Result) {
		p.pair(r.label, r.value, 12, false)
	}
	p.gap(6)

	for _, line := range plainLines(rec.Explain()) {
		if line == "" {
			p.gap(2)
			continue
		}
		p.text(line, 10, false, canvas.Left, 0)
	}

	doc := pdf.New(w, pageWidth, pageHeight, nil)
	for i, c := range p.pages {
		if i > 0 {
			doc.NewPage(pageWidth, pageHeight)
		}
		c.RenderTo(doc)
	}
	doc.NewPage(layoutW, layoutH)
	if err := render.Draw(doc, rec, opts...); err != nil {
		return err
	}
	return doc.Close()
}
