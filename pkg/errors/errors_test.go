package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDimension, "room length must be positive, got %g", -2.5)

	if err.Code != ErrCodeInvalidDimension {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDimension)
	}
	if want := "INVALID_DIMENSION: room length must be positive, got -2.5"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "save calculation")

	if want := "INTERNAL_ERROR: save calculation: disk full"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("the cause should stay reachable through errors.Is")
	}
}

func TestIs(t *testing.T) {
	inner := New(ErrCodeUnsupportedPattern, "unsupported pattern %q", "hexagon")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"same code", inner, ErrCodeUnsupportedPattern, true},
		{"other code", inner, ErrCodeInvalidDimension, false},
		{"fmt wrapped", fmt.Errorf("parse input: %w", inner), ErrCodeUnsupportedPattern, true},
		{"outer code of a chain", Wrap(ErrCodeInvalidInput, inner, "bad request"), ErrCodeInvalidInput, true},
		{"inner code of a chain", Wrap(ErrCodeInvalidInput, inner, "bad request"), ErrCodeUnsupportedPattern, true},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("compute: %w", New(ErrCodeDegenerateLayout, "zero tiles along the room length"))
	if got := GetCode(wrapped); got != ErrCodeDegenerateLayout {
		t.Errorf("GetCode(wrapped) = %q, want %q", got, ErrCodeDegenerateLayout)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidDimension, "tile width is required")); got != "tile width is required" {
		t.Errorf("UserMessage(coded) = %q", got)
	}
	if got := UserMessage(errors.New("connection refused")); got != "connection refused" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidDimension, http.StatusBadRequest},
		{ErrCodeUnsupportedPattern, http.StatusBadRequest},
		{ErrCodeInvalidID, http.StatusBadRequest},
		{ErrCodeDegenerateLayout, http.StatusUnprocessableEntity},
		{ErrCodeTooLarge, http.StatusUnprocessableEntity},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(New(ErrCodeDegenerateLayout, "zero tiles")) {
		t.Error("degenerate layout should be a validation error")
	}
	if !IsValidation(Wrap(ErrCodeInvalidDimension, nil, "bad")) {
		t.Error("invalid dimension should be a validation error")
	}
	if IsValidation(New(ErrCodeInternal, "boom")) {
		t.Error("internal error should not be a validation error")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("plain error should not be a validation error")
	}
}
