package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/svg2pdf/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Convert.DPI != DefaultDPI {
		t.Errorf("DPI = %v, want %v", cfg.Convert.DPI, DefaultDPI)
	}
	if cfg.Convert.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Convert.Backend, DefaultBackend)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
[convert]
dpi = 150
backend = "rsvg"

[cache]
redis_url = "redis://localhost:6379/0"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Convert.DPI != 150 {
		t.Errorf("DPI = %v, want 150", cfg.Convert.DPI)
	}
	if cfg.Convert.Backend != "rsvg" {
		t.Errorf("Backend = %q, want rsvg", cfg.Convert.Backend)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache.enabled should keep its default")
	}
	if cfg.Desktop.Debounce != "500ms" {
		t.Errorf("Debounce = %q, want default 500ms", cfg.Desktop.Debounce)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero dpi", "[convert]\ndpi = 0\n"},
		{"negative dpi", "[convert]\ndpi = -5.0\n"},
		{"bad ttl", "[cache]\nttl = \"forever\"\n"},
		{"negative debounce", "[desktop]\ndebounce = \"-1s\"\n"},
		{"syntax", "[convert\ndpi = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()

	ttl, err := cfg.CacheTTL()
	if err != nil || ttl != 720*time.Hour {
		t.Errorf("CacheTTL() = %v, %v; want 720h", ttl, err)
	}

	debounce, err := cfg.DebounceInterval()
	if err != nil || debounce != 500*time.Millisecond {
		t.Errorf("DebounceInterval() = %v, %v; want 500ms", debounce, err)
	}

	cfg.Cache.TTL = ""
	if ttl, err := cfg.CacheTTL(); err != nil || ttl != 0 {
		t.Errorf("empty ttl = %v, %v; want 0", ttl, err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/pdf", filepath.Join(home, "pdf")},
		{"/abs/path", "/abs/path"},
		{"rel/~/x", "rel/~/x"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[convert]", "dpi = 96.0", `backend = "canvas"`, "[cache]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Encode() output missing %q:\n%s", want, out)
		}
	}
}
