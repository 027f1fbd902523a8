package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/svg2pdf/pkg/errors"
	"github.com/matzehuels/svg2pdf/pkg/observability"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="120" height="60" viewBox="0 0 120 60">
<circle cx="30" cy="30" r="20" fill="#cc3333"/>
</svg>`

// runCLI executes the root command with args and returns what it printed.
// Config and cache locations point into temporary directories unless the
// caller already set them.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	if os.Getenv("XDG_CONFIG_HOME") == "" {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	}
	if os.Getenv("XDG_CACHE_HOME") == "" {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
	}
	t.Cleanup(observability.Reset)

	var stdout, stderr bytes.Buffer
	c := New(&stdout, &stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSVGs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte(testSVG), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected PDF at %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("%s does not start with a PDF header", path)
	}
}

func TestConvertSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := writeSVGs(t, dir, "logo.svg")[0]

	stdout, _, err := runCLI(t, in)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	want := filepath.Join(dir, "logo.pdf")
	assertPDF(t, want)
	if !strings.Contains(stdout, "Converted "+in+" -> "+want) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConvertSingleFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeSVGs(t, dir, "logo.svg")[0]
	out := filepath.Join(dir, "renamed.pdf")

	if _, _, err := runCLI(t, "-o", out, "--no-cache", in); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	assertPDF(t, out)
}

func TestConvertMultipleIntoDir(t *testing.T) {
	dir := t.TempDir()
	inputs := writeSVGs(t, dir, "a.svg", "b.svg")
	out := filepath.Join(dir, "build", "pdf")

	args := append([]string{"-o", out, "--no-cache"}, inputs...)
	stdout, _, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	assertPDF(t, filepath.Join(out, "a.pdf"))
	assertPDF(t, filepath.Join(out, "b.pdf"))
	if n := strings.Count(stdout, "Converted "); n != 2 {
		t.Errorf("stdout has %d Converted lines, want 2", n)
	}
}

func TestConvertMultipleOutputIsFile(t *testing.T) {
	dir := t.TempDir()
	inputs := writeSVGs(t, dir, "a.svg", "b.svg")
	file := filepath.Join(dir, "taken.pdf")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	args := append([]string{"-o", file}, inputs...)
	_, _, err := runCLI(t, args...)
	if !errors.IsUsage(err) {
		t.Fatalf("err = %v, want usage error", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.pdf")); err == nil {
		t.Error("nothing should be converted when the output is invalid")
	}
}

func TestConvertInvalidDPI(t *testing.T) {
	dir := t.TempDir()
	in := writeSVGs(t, dir, "a.svg")[0]

	for _, dpi := range []string{"0", "-96"} {
		_, _, err := runCLI(t, "--dpi="+dpi, in)
		if !errors.Is(err, errors.ErrCodeInvalidDPI) {
			t.Errorf("--dpi=%s: err = %v, want %s", dpi, err, errors.ErrCodeInvalidDPI)
		}
	}
}

func TestConvertMissingInput(t *testing.T) {
	dir := t.TempDir()
	inputs := writeSVGs(t, dir, "a.svg", "c.svg")
	missing := filepath.Join(dir, "b.svg")
	out := filepath.Join(dir, "out")

	_, stderr, err := runCLI(t, "-o", out, inputs[0], missing, inputs[1])
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
	if !strings.Contains(stderr, "Input file not found: "+missing) {
		t.Errorf("stderr = %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "c.pdf")); err == nil {
		t.Error("run should stop at the missing input")
	}

	_, _, err = runCLI(t, "--keep-going", "-o", out, inputs[0], missing, inputs[1])
	if !errors.Is(err, errors.ErrCodeConversionFailed) {
		t.Fatalf("--keep-going err = %v, want %s", err, errors.ErrCodeConversionFailed)
	}
	assertPDF(t, filepath.Join(out, "c.pdf"))
}

func TestConvertSkipsNonSVG(t *testing.T) {
	dir := t.TempDir()
	in := writeSVGs(t, dir, "a.svg")[0]
	png := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(png, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "-o", filepath.Join(dir, "out"), in, png)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(stderr, "Skipping non-SVG file: "+png) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestConvertUnknownBackend(t *testing.T) {
	in := writeSVGs(t, t.TempDir(), "a.svg")[0]
	_, _, err := runCLI(t, "--backend", "inkscape", in)
	if !errors.Is(err, errors.ErrCodeBackendNotFound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeBackendNotFound)
	}
}

func TestConvertRequiresArgs(t *testing.T) {
	if _, _, err := runCLI(t); err == nil {
		t.Error("expected an error without inputs")
	}
}

func TestConvertConfigDefaults(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	dir := t.TempDir()
	out := filepath.Join(dir, "from-config")

	cfgDir := filepath.Join(cfgHome, "svg2pdf")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "[convert]\ndpi = 150\noutput_dir = \"" + filepath.ToSlash(out) + "\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	in := writeSVGs(t, dir, "a.svg")[0]
	if _, _, err := runCLI(t, "--no-cache", in); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	assertPDF(t, filepath.Join(out, "a.pdf"))

	// Flags win over the file.
	explicit := filepath.Join(dir, "explicit.pdf")
	if _, _, err := runCLI(t, "--no-cache", "-o", explicit, in); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	assertPDF(t, explicit)
}

func TestConvertExplicitConfigMissing(t *testing.T) {
	in := writeSVGs(t, t.TempDir(), "a.svg")[0]
	_, _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), in)
	if err == nil {
		t.Error("expected an error for a missing --config file")
	}
}

func TestConvertCacheHit(t *testing.T) {
	dir := t.TempDir()
	in := writeSVGs(t, dir, "a.svg")[0]

	if _, _, err := runCLI(t, in); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(filepath.Join(dir, "a.pdf"))
	os.Remove(filepath.Join(dir, "a.pdf"))

	if _, _, err := runCLI(t, in); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(filepath.Join(dir, "a.pdf"))
	if !bytes.Equal(first, second) {
		t.Error("second run should reproduce the cached PDF")
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := runCLI(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "svg2pdf version") {
		t.Errorf("--version output = %q", stdout)
	}
}
