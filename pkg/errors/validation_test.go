package errors

import (
	"math"
	"testing"
)

func TestValidateDimension(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"positive", 5.5, false},
		{"tiny", 0.001, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
		{"negative inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimension("room length", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimension(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDimension) {
				t.Errorf("ValidateDimension(%v) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateSpacing(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 2, false},

		{"negative", -0.5, true},
		{"nan", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpacing("spacing", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpacing(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"integer", "30", 30, false},
		{"decimal", "5.5", 5.5, false},
		{"decimal comma", "4,2", 4.2, false},
		{"whitespace", "  2 ", 2, false},
		{"negative parses", "-1", -1, false},

		{"empty", "", 0, true},
		{"blank", "   ", 0, true},
		{"letters", "abc", 0, true},
		{"unit suffix", "30cm", 0, true},
		{"thousands separator", "1,000.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeasurement("tile length", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMeasurement(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !Is(err, ErrCodeInvalidDimension) {
					t.Errorf("ParseMeasurement(%q) returned wrong error code: %v", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseMeasurement(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "Kitchen floor", false},
		{"unicode", "Salle de bain é", false},

		{"too long", string(make([]byte, 200)), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCalculationID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "0b7e2d3c-6f9a-4c1e-9a55-3f0d2c8b1e47", false},

		{"empty", "", true},
		{"garbage", "123", true},
		{"path traversal", "../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCalculationID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCalculationID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateCalculationID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidDimension,
		ErrCodeUnsupportedPattern,
		ErrCodeDegenerateLayout,
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidID,
		ErrCodeTooLarge,
		ErrCodeNotFound,
		ErrCodeInternal,
		ErrCodeUnavailable,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
