package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/svg2pdf/pkg/errors"
)

const rsvgBinary = "rsvg-convert"

// RsvgBackend shells out to rsvg-convert (librsvg), which takes the DPI
// directly, so no rescaling happens on our side.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RsvgBackend struct {
	binary string
}

// NewRsvgBackend creates a backend that runs rsvg-convert from PATH.
func NewRsvgBackend() *RsvgBackend {
	return &RsvgBackend{binary: rsvgBinary}
}

// Name returns "rsvg".
func (*RsvgBackend) Name() string { return "rsvg" }

// Available checks that rsvg-convert can be found.
func (b *RsvgBackend) Available() error {
	if _, err := exec.LookPath(b.binary); err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err,
			"the rsvg backend requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}
	return nil
}

// Render runs rsvg-convert with the requested DPI on both axes.
func (b *RsvgBackend) Render(ctx context.Context, input, output string, dpi float64) error {
	if err := errors.ValidateDPI(dpi); err != nil {
		return err
	}
	if err := b.Available(); err != nil {
		return err
	}

	d := strconv.FormatFloat(dpi, 'f', -1, 64)
	cmd := exec.CommandContext(ctx, b.binary, rsvgArgs(input, output, d)...)

	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return renderError(input, fmt.Errorf("%s: %v: %s", b.binary, err, strings.TrimSpace(errBuf.String())))
	}
	return nil
}

func rsvgArgs(input, output, dpi string) []string {
	return []string{"-f", "pdf", "--dpi-x", dpi, "--dpi-y", dpi, "-o", output, input}
}

var _ Backend = (*RsvgBackend)(nil)
