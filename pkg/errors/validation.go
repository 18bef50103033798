package errors

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxNameLength bounds project names stored with a calculation.
const maxNameLength = 120

// ValidateDimension checks that a measurement is finite and strictly positive.
// The name is used verbatim in the error message (e.g. "room length").
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidDimension, "%s must be a finite number", name)
	}
	if v <= 0 {
		return New(ErrCodeInvalidDimension, "%s must be greater than zero, got %g", name, v)
	}
	return nil
}

// ValidateSpacing checks that a spacing is finite and not negative. Zero is allowed.
func ValidateSpacing(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidDimension, "%s must be a finite number", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidDimension, "%s cannot be negative, got %g", name, v)
	}
	return nil
}

// ParseMeasurement parses a raw form value into a float.
//
// Surrounding whitespace is ignored and a decimal comma is accepted ("2,5").
// Empty and non-numeric values fail with INVALID_DIMENSION. Range checks are
// left to [ValidateDimension] and [ValidateSpacing].
func ParseMeasurement(name, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, New(ErrCodeInvalidDimension, "%s is required", name)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidDimension, err, "%s is not a number: %q", name, raw)
	}
	return v, nil
}

// ValidateName validates a calculation project name.
//
// Names are optional, but when present they must not exceed 120 characters
// or contain control characters.
func ValidateName(name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateCalculationID checks that id is a canonical UUID as produced by the store.
func ValidateCalculationID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "calculation id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid calculation id: %q", id)
	}
	return nil
}
