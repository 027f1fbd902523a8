package errors

import (
	"math"
	"testing"
)

func TestValidateDPI(t *testing.T) {
	tests := []struct {
		name    string
		dpi     float64
		wantErr bool
	}{
		{"default", 96, false},
		{"double", 192, false},
		{"fractional", 0.5, false},

		{"zero", 0, true},
		{"negative", -5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDPI(tt.dpi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDPI(%v) error = %v, wantErr %v", tt.dpi, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDPI) {
				t.Errorf("ValidateDPI(%v) returned wrong error code: %v", tt.dpi, err)
			}
		})
	}
}

func TestParseDPI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"integer", "96", 96, false},
		{"float", "150.5", 150.5, false},
		{"padded", "  300 ", 300, false},

		{"empty", "", 0, true},
		{"text", "abc", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDPI(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDPI(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDPI(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "drawing.svg", false},
		{"absolute", "/tmp/icons/icon.svg", false},
		{"with spaces", "my icons/logo final.svg", false},

		{"empty", "", true},
		{"null byte", "foo\x00bar.svg", true},
		{"newline", "foo\nbar.svg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
