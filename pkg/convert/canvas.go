package convert

import (
	"context"
	"os"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"

	"github.com/matzehuels/svg2pdf/pkg/errors"
)

// CanvasBackend renders with github.com/tdewolff/canvas. The delegate has
// no notion of DPI, so the parsed drawing is rescaled by dpi/96 (page size
// and drawing transform) before the PDF is written.
type CanvasBackend struct{}

// NewCanvasBackend creates the pure-Go backend.
func NewCanvasBackend() *CanvasBackend {
	return &CanvasBackend{}
}

// Name returns "canvas".
func (*CanvasBackend) Name() string { return "canvas" }

// Available always succeeds; the backend is compiled in.
func (*CanvasBackend) Available() error { return nil }

// Render parses input, scales it to dpi and writes a PDF to output.
func (b *CanvasBackend) Render(ctx context.Context, input, output string, dpi float64) error {
	if err := errors.ValidateDPI(dpi); err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return renderError(input, err)
	}
	defer f.Close()

	drawing, err := canvas.ParseSVG(f)
	if err != nil {
		return renderError(input, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	page := scaleDrawing(drawing, ScaleFactor(dpi))
	if err := page.WriteFile(output, renderers.PDF()); err != nil {
		return renderError(input, err)
	}
	return nil
}

// scaleDrawing returns c re-recorded onto a page whose width and height
// are multiplied by s, with every drawing operation transformed by the same
// factor. A factor of 1 returns c unchanged.
func scaleDrawing(c *canvas.Canvas, s float64) *canvas.Canvas {
	if s == 1 {
		return c
	}
	scaled := canvas.New(c.W*s, c.H*s)
	c.RenderViewTo(scaled, canvas.Identity.Scale(s, s))
	return scaled
}

var _ Backend = (*CanvasBackend)(nil)
