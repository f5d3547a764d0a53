package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

// CountyResolver supplies a county name for a coordinate. Resolution is
// an enrichment step: a failed lookup leaves the record's county empty
// rather than failing the run.
type CountyResolver interface {
	County(ctx context.Context, latitude, longitude float64) (string, error)
}

// StaticCountyResolver resolves from a fixed coordinate table keyed by
// coordinates rounded to six decimal places, roughly 10 cm.
type StaticCountyResolver map[string]string

// CountyKey builds the lookup key used by the static and caching
// resolvers.
func CountyKey(latitude, longitude float64) string {
	return fmt.Sprintf("%.6f,%.6f", latitude, longitude)
}

// County implements CountyResolver.
func (s StaticCountyResolver) County(_ context.Context, latitude, longitude float64) (string, error) {
	county, ok := s[CountyKey(latitude, longitude)]
	if !ok {
		return "", errors.ErrNotFound
	}
	return county, nil
}

// CachingCountyResolver memoizes another resolver and can persist its
// table as JSON between runs. Negative results are cached too, so a
// missing county is only looked up once.
type CachingCountyResolver struct {
	inner CountyResolver

	mu    sync.Mutex
	cache map[string]string
	hits  int
}

// NewCachingCountyResolver wraps a resolver with an in-memory cache.
func NewCachingCountyResolver(inner CountyResolver) *CachingCountyResolver {
	return &CachingCountyResolver{
		inner: inner,
		cache: map[string]string{},
	}
}

// County implements CountyResolver.
func (c *CachingCountyResolver) County(ctx context.Context, latitude, longitude float64) (string, error) {
	key := CountyKey(latitude, longitude)

	c.mu.Lock()
	if county, ok := c.cache[key]; ok {
		c.hits++
		c.mu.Unlock()
		if county == "" {
			return "", errors.ErrNotFound
		}
		return county, nil
	}
	c.mu.Unlock()

	county, err := c.inner.County(ctx, latitude, longitude)
	if err != nil && !errors.IsNotFound(err) {
		return "", err
	}

	c.mu.Lock()
	c.cache[key] = county
	c.mu.Unlock()

	if county == "" {
		return "", errors.ErrNotFound
	}
	return county, nil
}

// Hits reports how many lookups were served from cache.
func (c *CachingCountyResolver) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Load merges a previously saved cache file. A missing file is not an
// error.
func (c *CachingCountyResolver) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.WrapIO("read", path, err)
	}

	var cached map[string]string
	if err := json.Unmarshal(data, &cached); err != nil {
		return errors.NewParseError("json", path, "corrupt county cache", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range cached {
		if _, ok := c.cache[k]; !ok {
			c.cache[k] = v
		}
	}
	return nil
}

// Save writes the cache table to path as JSON.
func (c *CachingCountyResolver) Save(path string) error {
	c.mu.Lock()
	data, err := json.MarshalIndent(c.cache, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return errors.WrapIO("marshal", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// CountyResolverFunc adapts a function to the CountyResolver interface.
type CountyResolverFunc func(ctx context.Context, latitude, longitude float64) (string, error)

// County implements CountyResolver.
func (f CountyResolverFunc) County(ctx context.Context, latitude, longitude float64) (string, error) {
	return f(ctx, latitude, longitude)
}
