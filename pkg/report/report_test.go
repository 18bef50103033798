package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

func testRecord(t *testing.T, p tile.Pattern) *tile.Record {
	t.Helper()
	rec, err := tile.ComputeLayout(
		tile.Room{LengthM: 5.5, WidthM: 4.2},
		tile.TileSpec{LengthCm: 30, WidthCm: 30, SpacingMm: 2},
		p,
	)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	return rec
}

var testMeta = Meta{
	Project:   "Kitchen Renovation",
	Status:    "Completed",
	Generated: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, testRecord(t, tile.Grid), testMeta); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Tile Calculation Report",
		"**Project:** Kitchen Renovation",
		"Generated on June 10, 2024",
		"| Total Tiles Needed | 266 |",
		"| Total with 10% Contingency | 293 |",
		"| Tiles Along Length | 19 |",
		"### Recommendations",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "approximation.\n\n") {
		t.Error("grid report should not carry the approximation note")
	}
}

func TestMarkdownApproximate(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, testRecord(t, tile.Herringbone), Meta{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "> The tile positions for this pattern are an approximation.") {
		t.Error("herringbone report should carry the approximation note")
	}
	if strings.Contains(buf.String(), "**Project:**") {
		t.Error("empty project should be omitted")
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, testRecord(t, tile.Brick), testMeta, render.WithScale(50)); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
	if buf.Len() < 1000 {
		t.Errorf("PDF suspiciously small: %d bytes", buf.Len())
	}
}

func TestPDFBadOptions(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, testRecord(t, tile.Grid), testMeta, render.WithScale(-1)); err == nil {
		t.Error("expected error for negative scale")
	}
}

func TestPlainLines(t *testing.T) {
	got := plainLines("## Title\n\n### Room\n- Length: 2 m\n")
	want := []string{"Title", "", "Room", "- Length: 2 m"}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPageBreaks(t *testing.T) {
	fam, err := loadFonts()
	if err != nil {
		t.Fatalf("loadFonts: %v", err)
	}
	p := newPage(fam)
	for i := 0; i < 200; i++ {
		p.text("line", 12, false, 0, 0)
	}
	if len(p.pages) < 2 {
		t.Errorf("200 lines should span several pages, got %d", len(p.pages))
	}
	if p.y < pageMargin {
		t.Errorf("cursor below margin: %v", p.y)
	}
}
