package template

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCacheSize is the number of transpiled modules kept in memory.
const DefaultCacheSize = 256

// CachingTranspiler memoizes transpilation by source content and settings.
// Templates shared by several entries are transpiled once per process.
type CachingTranspiler struct {
	next  ports.Transpiler
	cache *lru.Cache[uint64, string]
}

// NewCachingTranspiler wraps next with an LRU cache holding up to size modules.
func NewCachingTranspiler(next ports.Transpiler, size int) (*CachingTranspiler, error) {
	cache, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create transpile cache")
	}
	return &CachingTranspiler{next: next, cache: cache}, nil
}

// Transpile returns the cached module for identical input or delegates to the wrapped transpiler.
func (c *CachingTranspiler) Transpile(
	ctx context.Context, filename, source string, cfg domain.TranspileConfig,
) (string, error) {
	key := cacheKey(filename, source, cfg)
	if code, ok := c.cache.Get(key); ok {
		return code, nil
	}
	code, err := c.next.Transpile(ctx, filename, source, cfg)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, code)
	return code, nil
}

// Purge drops every cached module.
func (c *CachingTranspiler) Purge() {
	c.cache.Purge()
}

// Len reports the number of cached modules.
func (c *CachingTranspiler) Len() int {
	return c.cache.Len()
}

// cacheKey digests everything that influences the output.
// Preprocessors run before transpilation, so only their output matters.
func cacheKey(filename, source string, cfg domain.TranspileConfig) uint64 {
	d := xxhash.New()
	for _, part := range []string{
		filename,
		cfg.Generate,
		strconv.FormatBool(cfg.Hydratable),
		strconv.FormatBool(cfg.Dev),
		strconv.FormatBool(cfg.PreserveComments),
		strconv.FormatBool(cfg.PreserveWhitespace),
		strconv.FormatBool(cfg.CSS),
		source,
	} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
