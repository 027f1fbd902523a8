package convert

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2pdf/pkg/cache"
	"github.com/matzehuels/svg2pdf/pkg/errors"
	"github.com/matzehuels/svg2pdf/pkg/observability"
)

// cachedBackend serves renders from a cache.Cache and fills it on misses.
type cachedBackend struct {
	Backend
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

// Cached wraps b so that converting the same SVG content at the same DPI
// reuses the previously rendered PDF. Cache errors are logged at debug
// level and never fail a conversion. A nil cache returns b unchanged.
func Cached(b Backend, c cache.Cache, ttl time.Duration, logger *log.Logger) Backend {
	if c == nil {
		return b
	}
	if logger == nil {
		logger = log.Default()
	}
	return &cachedBackend{Backend: b, cache: c, ttl: ttl, logger: logger}
}

// Render writes the cached PDF for input when present, otherwise renders
// with the wrapped backend and stores the result.
func (b *cachedBackend) Render(ctx context.Context, input, output string, dpi float64) error {
	if err := errors.ValidateDPI(dpi); err != nil {
		return err
	}

	svg, err := os.ReadFile(input)
	if err != nil {
		return renderError(input, err)
	}
	key := cache.RenderKey(b.Name(), svg, dpi)

	data, hit, err := b.cache.Get(ctx, key)
	if err != nil {
		b.logger.Debugf("Cache read failed for %s: %v", input, err)
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, b.Name())
		b.logger.Debugf("Cache hit for %s", input)
		if err := os.WriteFile(output, data, 0644); err != nil {
			return renderError(input, err)
		}
		return nil
	}
	observability.Cache().OnCacheMiss(ctx, b.Name())

	if err := b.Backend.Render(ctx, input, output, dpi); err != nil {
		return err
	}

	pdf, err := os.ReadFile(output)
	if err != nil {
		b.logger.Debugf("Cannot read %s back for caching: %v", output, err)
		return nil
	}
	if err := b.cache.Set(ctx, key, pdf, b.ttl); err != nil {
		b.logger.Debugf("Cache write failed for %s: %v", input, err)
		return nil
	}
	observability.Cache().OnCacheSet(ctx, b.Name(), len(pdf))
	return nil
}
