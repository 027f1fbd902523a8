package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/svg2pdf/pkg/errors"
	"github.com/matzehuels/svg2pdf/pkg/observability"
)

// Surface is where the desktop pipeline reports to. Log appends one line
// to an append-only log; Alert shows a blocking error dialog.
type Surface interface {
	Log(message string)
	Alert(title, message string)
}

// Submission is one drop or browse event.
type Submission struct {
	Paths     []string
	OutputDir string // optional; created when set
	DPI       string // raw text of the DPI control
}

// Summary counts what a submission did.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
}

// Desktop runs submissions from an interactive front-end. Unlike Batch it
// never aborts: a missing input is logged and skipped.
type Desktop struct {
	Backend Backend
	Logger  *log.Logger
}

// Alert titles shown by the desktop pipeline.
const (
	TitleInvalidDPI       = "Invalid DPI"
	TitleOutputError      = "Output error"
	TitleConversionFailed = "Conversion failed"
)

// OnFilesSubmitted converts the paths of sub one after another and reports
// every outcome to surface. An invalid DPI or an output directory that
// cannot be created raises an alert and converts nothing.
func (d *Desktop) OnFilesSubmitted(ctx context.Context, surface Surface, sub Submission) Summary {
	var sum Summary
	if len(sub.Paths) == 0 {
		return sum
	}

	dpi, err := errors.ParseDPI(sub.DPI)
	if err != nil {
		surface.Alert(TitleInvalidDPI, sentence(errors.UserMessage(err)))
		return sum
	}

	outDir := strings.TrimSpace(sub.OutputDir)
	if outDir != "" {
		outDir = expandHome(outDir)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			surface.Alert(TitleOutputError, fmt.Sprintf("Failed to create directory: %v", err))
			return sum
		}
	}

	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}

	runID := uuid.NewString()
	hooks := observability.Convert()
	hooks.OnBatchStart(ctx, runID, len(sub.Paths), d.Backend.Name())
	start := time.Now()
	defer func() {
		hooks.OnBatchComplete(ctx, runID, sum.Converted, sum.Skipped, sum.Failed, time.Since(start))
	}()

	for _, raw := range sub.Paths {
		if ctx.Err() != nil {
			return sum
		}

		input := cleanDropped(raw)
		if input == "" {
			continue
		}
		if !exists(input) {
			surface.Log("Skipping missing file: " + input)
			hooks.OnFileSkipped(ctx, runID, input, "missing")
			sum.Skipped++
			continue
		}
		if !IsSVG(input) {
			surface.Log("Skipping non-SVG file: " + input)
			hooks.OnFileSkipped(ctx, runID, input, "not an svg file")
			sum.Skipped++
			continue
		}

		output, err := d.render(ctx, runID, input, outDir, dpi)
		if err != nil {
			logger.Debug("conversion failed", "input", input, "err", err)
			surface.Alert(TitleConversionFailed,
				fmt.Sprintf("Could not convert %s: %s", filepath.Base(input), errors.UserMessage(err)))
			sum.Failed++
			continue
		}

		surface.Log(fmt.Sprintf("Converted %s → %s", input, output))
		logConverted(logger, output)
		sum.Converted++
	}
	return sum
}

func (d *Desktop) render(ctx context.Context, runID, input, outDir string, dpi float64) (output string, err error) {
	start := time.Now()
	observability.Convert().OnFileStart(ctx, runID, input)
	defer func() {
		observability.Convert().OnFileComplete(ctx, runID, input, output, time.Since(start), err)
	}()

	output, err = ResolveOutputPath(input, outDir, outDir != "")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return output, err
	}
	if err := d.Backend.Render(ctx, input, output, dpi); err != nil {
		return output, err
	}
	return output, nil
}

// cleanDropped trims a dropped path and removes the braces some toolkits
// wrap around paths containing spaces.
func cleanDropped(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 && strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
		p = p[1 : len(p)-1]
	}
	return expandHome(p)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// sentence capitalizes msg and terminates it with a period.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	if !strings.HasSuffix(msg, ".") {
		r = append(r, '.')
	}
	return string(r)
}
