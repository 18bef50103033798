package tile

import (
	"math"
	"testing"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in      string
		want    Pattern
		wantErr bool
	}{
		{"grid", Grid, false},
		{" Brick ", Brick, false},
		{"HERRINGBONE", Herringbone, false},
		{"diagonal", Diagonal, false},
		{"hexagonal", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePattern(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePattern(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeUnsupportedPattern) {
			t.Errorf("ParsePattern(%q) code = %s", tt.in, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParsePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPatternTitle(t *testing.T) {
	if got := Herringbone.Title(); got != "Herringbone" {
		t.Errorf("Title = %q", got)
	}
	if Pattern("").Title() != "" {
		t.Error("empty pattern title should be empty")
	}
}

func TestNormalize(t *testing.T) {
	d, err := Normalize(roomA, tileA)
	if err != nil {
		t.Fatal(err)
	}
	if d.TileLengthM != 0.3 || d.TileWidthM != 0.3 || d.SpacingM != 0.002 {
		t.Errorf("dims = %+v", d)
	}
	if d.EffectiveLengthM != d.TileLengthM+d.SpacingM {
		t.Errorf("EffectiveLengthM = %v", d.EffectiveLengthM)
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		room Room
		spec TileSpec
	}{
		{"zero room length", Room{0, 4}, tileA},
		{"negative room width", Room{4, -1}, tileA},
		{"zero tile width", roomA, TileSpec{30, 0, 2}},
		{"negative spacing", roomA, TileSpec{30, 30, -1}},
		{"nan tile length", roomA, TileSpec{math.NaN(), 30, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.room, tt.spec)
			if !errors.Is(err, errors.ErrCodeInvalidDimension) {
				t.Errorf("err = %v, want INVALID_DIMENSION", err)
			}
		})
	}

	if _, err := Normalize(roomA, TileSpec{30, 30, 0}); err != nil {
		t.Errorf("zero spacing should be allowed: %v", err)
	}
}

func TestParseInput(t *testing.T) {
	room, spec, p, err := ParseInput(RawInput{
		RoomLength: "5.5", RoomWidth: " 4,2 ", TileLength: "30", TileWidth: "30", Pattern: "grid",
	})
	if err != nil {
		t.Fatal(err)
	}
	if room.LengthM != 5.5 || room.WidthM != 4.2 {
		t.Errorf("room = %+v", room)
	}
	if spec.SpacingMm != 0 {
		t.Errorf("empty spacing should be 0, got %v", spec.SpacingMm)
	}
	if p != Grid {
		t.Errorf("pattern = %q", p)
	}
}

func TestParseInputErrors(t *testing.T) {
	valid := RawInput{RoomLength: "4", RoomWidth: "3", TileLength: "30", TileWidth: "30", Spacing: "2", Pattern: "grid"}

	tests := []struct {
		name   string
		modify func(*RawInput)
		code   errors.Code
	}{
		{"empty room length", func(in *RawInput) { in.RoomLength = "" }, errors.ErrCodeInvalidDimension},
		{"text tile width", func(in *RawInput) { in.TileWidth = "wide" }, errors.ErrCodeInvalidDimension},
		{"zero tile length", func(in *RawInput) { in.TileLength = "0" }, errors.ErrCodeInvalidDimension},
		{"negative spacing", func(in *RawInput) { in.Spacing = "-2" }, errors.ErrCodeInvalidDimension},
		{"unknown pattern", func(in *RawInput) { in.Pattern = "hexagonal" }, errors.ErrCodeUnsupportedPattern},
		{"dimension before pattern", func(in *RawInput) { in.TileLength = "0"; in.Pattern = "hexagonal" }, errors.ErrCodeInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)
			_, _, _, err := ParseInput(in)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Errorf("default policy invalid: %v", err)
	}
	p := DefaultPolicy()
	p.BrickWaste = 0.9
	if err := p.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	p = DefaultPolicy()
	p.DiagonalWholeRatio = 1.5
	if err := p.Validate(); err == nil {
		t.Error("ratio above 1 should be rejected")
	}
}

func TestEstimatorValidate(t *testing.T) {
	if err := DefaultEstimator().Validate(); err != nil {
		t.Errorf("default estimator invalid: %v", err)
	}
	if err := (Estimator{UnitCost: -1, TilesPerHour: 10}).Validate(); err == nil {
		t.Error("negative cost should be rejected")
	}
	if err := (Estimator{UnitCost: 1, TilesPerHour: 0}).Validate(); err == nil {
		t.Error("zero rate should be rejected")
	}
}
