package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 200 100">
<rect x="10" y="10" width="180" height="80" fill="#3366cc"/>
</svg>`

// fakeBackend writes a small placeholder instead of a real PDF.
type fakeBackend struct {
	mu    sync.Mutex
	calls []fakeCall
	fail  map[string]error // keyed by input base name
}

type fakeCall struct {
	Input, Output string
	DPI           float64
}

func (*fakeBackend) Name() string     { return "fake" }
func (*fakeBackend) Available() error { return nil }

func (b *fakeBackend) Render(_ context.Context, input, output string, dpi float64) error {
	b.mu.Lock()
	b.calls = append(b.calls, fakeCall{input, output, dpi})
	b.mu.Unlock()
	if err := b.fail[filepath.Base(input)]; err != nil {
		return renderError(input, err)
	}
	return os.WriteFile(output, []byte(fmt.Sprintf("%%PDF-fake %s %g", filepath.Base(input), dpi)), 0644)
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// recordingReporter captures reporter events as "kind:input" strings.
type recordingReporter struct {
	events []string
}

func (r *recordingReporter) Converted(in, out string) {
	r.events = append(r.events, "converted:"+filepath.Base(in)+"->"+out)
}
func (r *recordingReporter) Skipped(in string) { r.events = append(r.events, "skipped:"+filepath.Base(in)) }
func (r *recordingReporter) Missing(in string) { r.events = append(r.events, "missing:"+filepath.Base(in)) }
func (r *recordingReporter) Failed(in, _ string, _ error) {
	r.events = append(r.events, "failed:"+filepath.Base(in))
}

// recordingSurface captures desktop log lines and alerts.
type recordingSurface struct {
	logs   []string
	alerts []string // "title: message"
}

func (s *recordingSurface) Log(msg string) { s.logs = append(s.logs, msg) }
func (s *recordingSurface) Alert(title, msg string) {
	s.alerts = append(s.alerts, title+": "+msg)
}

func (s *recordingSurface) logged(prefix string) bool {
	for _, l := range s.logs {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// writeFiles creates files with testSVG content under dir and returns
// their paths in order.
func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(testSVG), 0644); err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}
	return paths
}
