package errors

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ValidateDPI checks that dpi is a finite, strictly positive number.
// Every backend calls it before touching the input file.
func ValidateDPI(dpi float64) error {
	if math.IsNaN(dpi) || math.IsInf(dpi, 0) {
		return New(ErrCodeInvalidDPI, "DPI must be a finite number")
	}
	if dpi <= 0 {
		return New(ErrCodeInvalidDPI, "DPI must be greater than zero")
	}
	return nil
}

// ParseDPI parses a user-entered DPI value (e.g. from a text field) and
// validates it. Surrounding whitespace is ignored.
func ParseDPI(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidDPI, "please enter a numeric DPI value")
	}
	dpi, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, New(ErrCodeInvalidDPI, "please enter a numeric DPI value")
	}
	if err := ValidateDPI(dpi); err != nil {
		return 0, err
	}
	return dpi, nil
}

// ValidatePath rejects paths that cannot name a file: empty strings and
// strings containing NUL or other control characters (pasted terminal
// payloads sometimes carry them).
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters: %q", path)
		}
	}
	return nil
}
