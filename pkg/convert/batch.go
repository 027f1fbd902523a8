package convert

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/matzehuels/svg2pdf/pkg/errors"
	"github.com/matzehuels/svg2pdf/pkg/observability"
	"github.com/matzehuels/svg2pdf/pkg/pdfinfo"
)

// Reporter receives per-file outcomes of a batch in input order.
type Reporter interface {
	Converted(input, output string)
	Skipped(input string)
	Missing(input string)
	Failed(input, output string, err error)
}

// Request describes one batch conversion.
type Request struct {
	Inputs []string
	Output string  // "" for sibling files, a file for one input, a directory otherwise
	DPI    float64 // must be positive
}

// Status is the outcome of a single input.
type Status int

const (
	StatusConverted Status = iota
	StatusSkipped
	StatusMissing
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusSkipped:
		return "skipped"
	case StatusMissing:
		return "missing"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome records what happened to one input.
type Outcome struct {
	Input    string
	Output   string
	Status   Status
	Err      error
	Duration time.Duration
}

// Result aggregates the outcomes of a batch.
type Result struct {
	RunID    string
	Outcomes []Outcome
	Aborted  bool // a missing input stopped the run
	Duration time.Duration
}

// Count returns the number of outcomes with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether the run finished without failures or missing inputs.
func (r *Result) OK() bool {
	return !r.Aborted && r.Count(StatusFailed) == 0 && r.Count(StatusMissing) == 0
}

// Batch converts a list of inputs sequentially with one backend.
type Batch struct {
	Backend  Backend
	Reporter Reporter
	Logger   *log.Logger

	// KeepGoing turns a missing input into a per-file failure instead of
	// aborting the run.
	KeepGoing bool
}

// Run converts req.Inputs in order.
//
// Usage errors (bad DPI, non-directory output for several inputs) are
// returned before anything is converted. A missing input aborts the run
// with errors.ErrCodeFileNotFound unless KeepGoing is set. Non-SVG inputs
// are skipped. Render failures are reported per file and the run continues;
// the returned error is then errors.ErrCodeConversionFailed. The Result is
// non-nil whenever the run started.
func (b *Batch) Run(ctx context.Context, req Request) (*Result, error) {
	if err := errors.ValidateDPI(req.DPI); err != nil {
		return nil, err
	}
	if len(req.Inputs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input files given")
	}
	multiple := len(req.Inputs) > 1
	if err := PrepareOutputDir(req.Output, multiple); err != nil {
		return nil, err
	}

	logger := b.Logger
	if logger == nil {
		logger = log.Default()
	}
	reporter := b.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	hooks := observability.Convert()
	hooks.OnBatchStart(ctx, result.RunID, len(req.Inputs), b.Backend.Name())
	logger.Debug("starting batch", "run", result.RunID, "inputs", len(req.Inputs),
		"backend", b.Backend.Name(), "dpi", req.DPI)

	defer func() {
		result.Duration = time.Since(start)
		hooks.OnBatchComplete(ctx, result.RunID, result.Count(StatusConverted),
			result.Count(StatusSkipped), result.Count(StatusFailed)+result.Count(StatusMissing),
			result.Duration)
	}()

	for _, input := range req.Inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if !exists(input) {
			reporter.Missing(input)
			hooks.OnFileSkipped(ctx, result.RunID, input, "missing")
			err := errors.New(errors.ErrCodeFileNotFound, "input file not found: %s", input)
			result.Outcomes = append(result.Outcomes, Outcome{Input: input, Status: StatusMissing, Err: err})
			if !b.KeepGoing {
				result.Aborted = true
				return result, err
			}
			continue
		}

		if !IsSVG(input) {
			reporter.Skipped(input)
			hooks.OnFileSkipped(ctx, result.RunID, input, "not an svg file")
			result.Outcomes = append(result.Outcomes, Outcome{Input: input, Status: StatusSkipped})
			continue
		}

		out := b.convert(ctx, logger, result.RunID, input, req.Output, req.DPI, multiple)
		result.Outcomes = append(result.Outcomes, out)
		if out.Status == StatusFailed {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			reporter.Failed(input, out.Output, out.Err)
			continue
		}
		reporter.Converted(input, out.Output)
	}

	if failed := result.Count(StatusFailed) + result.Count(StatusMissing); failed > 0 {
		return result, errors.New(errors.ErrCodeConversionFailed,
			"%d of %d conversions failed", failed, len(req.Inputs)-result.Count(StatusSkipped))
	}
	return result, nil
}

// convert resolves the output path for one SVG input and renders it.
func (b *Batch) convert(ctx context.Context, logger *log.Logger, runID, input, output string, dpi float64, multiple bool) (o Outcome) {
	o = Outcome{Input: input, Status: StatusFailed}
	start := time.Now()
	observability.Convert().OnFileStart(ctx, runID, input)
	defer func() {
		o.Duration = time.Since(start)
		observability.Convert().OnFileComplete(ctx, runID, input, o.Output, o.Duration, o.Err)
	}()

	dest, err := ResolveOutputPath(input, output, multiple)
	if err != nil {
		o.Err = err
		return o
	}
	o.Output = dest

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		o.Err = errors.Wrap(errors.ErrCodeInvalidOutput, err, "create directory for %s", dest)
		return o
	}

	if err := b.Backend.Render(ctx, input, dest, dpi); err != nil {
		o.Err = err
		return o
	}

	o.Status = StatusConverted
	logConverted(logger, dest)
	return o
}

// logConverted writes size and page dimensions of a fresh PDF at debug level.
func logConverted(logger *log.Logger, path string) {
	if logger.GetLevel() > log.DebugLevel {
		return
	}
	fi, err := os.Stat(path)
	if err != nil {
		return
	}
	info, err := pdfinfo.ReadFile(path)
	if err != nil {
		logger.Debug("wrote pdf", "path", path, "size", humanize.Bytes(uint64(fi.Size())))
		return
	}
	page := info.First()
	logger.Debug("wrote pdf", "path", path, "size", humanize.Bytes(uint64(fi.Size())),
		"pages", len(info.Pages), "width", page.Width, "height", page.Height)
}

type nopReporter struct{}

func (nopReporter) Converted(string, string)     {}
func (nopReporter) Skipped(string)               {}
func (nopReporter) Missing(string)               {}
func (nopReporter) Failed(string, string, error) {}
