package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2pdf/pkg/cache"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	data map[string][]byte
	err  error // returned by every call when set
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.data[key] = append([]byte(nil), data...)
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestCachedBackend(t *testing.T) {
	dir := t.TempDir()
	in := writeFiles(t, dir, "a.svg")[0]
	first := filepath.Join(dir, "first.pdf")
	second := filepath.Join(dir, "second.pdf")

	inner := &fakeBackend{}
	mc := newMemCache()
	b := Cached(inner, mc, time.Hour, log.New(os.Stderr))
	ctx := context.Background()

	if err := b.Render(ctx, in, first, 96); err != nil {
		t.Fatal(err)
	}
	if len(mc.data) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(mc.data))
	}
	if err := b.Render(ctx, in, second, 96); err != nil {
		t.Fatal(err)
	}
	if inner.callCount() != 1 {
		t.Errorf("inner renders = %d, want 1 (second run should hit the cache)", inner.callCount())
	}

	a, _ := os.ReadFile(first)
	c, _ := os.ReadFile(second)
	if !bytes.Equal(a, c) {
		t.Errorf("cache hit wrote %q, want %q", c, a)
	}

	// A different DPI must not reuse the entry.
	if err := b.Render(ctx, in, second, 192); err != nil {
		t.Fatal(err)
	}
	if inner.callCount() != 2 {
		t.Errorf("inner renders = %d, want 2 after DPI change", inner.callCount())
	}
}

func TestCachedBackendChangedInput(t *testing.T) {
	dir := t.TempDir()
	in := writeFiles(t, dir, "a.svg")[0]
	out := filepath.Join(dir, "a.pdf")

	inner := &fakeBackend{}
	b := Cached(inner, newMemCache(), 0, nil)
	ctx := context.Background()

	if err := b.Render(ctx, in, out, 96); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(in, []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"/>`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := b.Render(ctx, in, out, 96); err != nil {
		t.Fatal(err)
	}
	if inner.callCount() != 2 {
		t.Errorf("inner renders = %d, want 2 after input change", inner.callCount())
	}
}

func TestCachedBackendCacheErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeFiles(t, dir, "a.svg")[0]
	out := filepath.Join(dir, "a.pdf")

	mc := newMemCache()
	mc.err = errors.New("cache down")
	b := Cached(&fakeBackend{}, mc, time.Hour, nil)

	if err := b.Render(context.Background(), in, out, 96); err != nil {
		t.Errorf("Render() error = %v, cache failures must not fail a conversion", err)
	}
	if !exists(out) {
		t.Error("output not written")
	}
}

func TestCachedBackendNilCache(t *testing.T) {
	inner := &fakeBackend{}
	if got := Cached(inner, nil, 0, nil); got != Backend(inner) {
		t.Error("Cached(b, nil) should return b")
	}
}

func TestCachedBackendFileCache(t *testing.T) {
	dir := t.TempDir()
	in := writeFiles(t, dir, "a.svg")[0]

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	inner := &fakeBackend{}
	b := Cached(inner, fc, time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Render(ctx, in, filepath.Join(dir, "a.pdf"), 96); err != nil {
			t.Fatal(err)
		}
	}
	if inner.callCount() != 1 {
		t.Errorf("inner renders = %d, want 1", inner.callCount())
	}
}
