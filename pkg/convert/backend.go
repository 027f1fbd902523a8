package convert

import (
	"context"
	"sort"
	"strings"

	"github.com/matzehuels/svg2pdf/pkg/errors"
)

// DefaultDPI is the resolution SVG user units are defined against. A
// conversion at this DPI applies no rescaling.
const DefaultDPI = 96.0

// Backend renders a single SVG file into a PDF file.
type Backend interface {
	// Name identifies the backend on the command line and in cache keys.
	Name() string

	// Available reports why the backend cannot run on this machine, or nil.
	Available() error

	// Render converts input into output at dpi. A non-positive dpi fails
	// before input is read. Delegate failures are returned as
	// errors.ErrCodeRender errors.
	Render(ctx context.Context, input, output string, dpi float64) error
}

// backends maps backend names to their constructors.
var backends = map[string]func() Backend{
	"canvas": func() Backend { return NewCanvasBackend() },
	"rsvg":   func() Backend { return NewRsvgBackend() },
}

// NewBackend returns the backend registered under name (case-insensitive).
func NewBackend(name string) (Backend, error) {
	ctor, ok := backends[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.New(errors.ErrCodeBackendNotFound,
			"unknown backend: %s (must be one of: %s)", name, strings.Join(Backends(), ", "))
	}
	return ctor(), nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScaleFactor is the linear factor a drawing is scaled by when rendered at
// dpi instead of DefaultDPI.
func ScaleFactor(dpi float64) float64 {
	return dpi / DefaultDPI
}

// renderError wraps a delegate failure for input.
func renderError(input string, err error) error {
	return errors.Wrap(errors.ErrCodeRender, err, "convert %s", input)
}
