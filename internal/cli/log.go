package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2pdf/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Converted 3 files (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability hooks
// =============================================================================

// logHooks writes conversion and cache events to the debug log. It is
// registered when --verbose is set.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnBatchStart(_ context.Context, runID string, inputs int, backend string) {
	h.logger.Debug("batch started", "run", runID, "inputs", inputs, "backend", backend)
}

func (h logHooks) OnBatchComplete(_ context.Context, runID string, converted, skipped, failed int, d time.Duration) {
	h.logger.Debug("batch finished", "run", runID, "converted", converted, "skipped", skipped,
		"failed", failed, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnFileStart(_ context.Context, runID, input string) {
	h.logger.Debug("converting", "run", runID, "input", input)
}

func (h logHooks) OnFileSkipped(_ context.Context, runID, input, reason string) {
	h.logger.Debug("skipped", "run", runID, "input", input, "reason", reason)
}

func (h logHooks) OnFileComplete(_ context.Context, runID, input, output string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("conversion failed", "run", runID, "input", input, "err", err)
		return
	}
	h.logger.Debug("converted", "run", runID, "input", input, "output", output, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, backend string) {
	h.logger.Debug("cache hit", "backend", backend)
}

func (h logHooks) OnCacheMiss(_ context.Context, backend string) {
	h.logger.Debug("cache miss", "backend", backend)
}

func (h logHooks) OnCacheSet(_ context.Context, backend string, size int) {
	h.logger.Debug("cache set", "backend", backend, "bytes", size)
}

var (
	_ observability.ConvertHooks = logHooks{}
	_ observability.CacheHooks   = logHooks{}
)
