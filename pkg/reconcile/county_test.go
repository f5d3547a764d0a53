package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

func TestStaticCountyResolver(t *testing.T) {
	resolver := StaticCountyResolver{
		CountyKey(33.9390, -83.4536): "Clarke County",
	}

	county, err := resolver.County(context.Background(), 33.9390, -83.4536)
	require.NoError(t, err)
	assert.Equal(t, "Clarke County", county)

	_, err = resolver.County(context.Background(), 0, 0)
	assert.True(t, errors.IsNotFound(err))
}

func TestCachingCountyResolver(t *testing.T) {
	calls := 0
	inner := CountyResolverFunc(func(_ context.Context, lat, lon float64) (string, error) {
		calls++
		if lat == 33.9390 {
			return "Clarke County", nil
		}
		return "", errors.ErrNotFound
	})

	resolver := NewCachingCountyResolver(inner)

	for i := 0; i < 3; i++ {
		county, err := resolver.County(context.Background(), 33.9390, -83.4536)
		require.NoError(t, err)
		assert.Equal(t, "Clarke County", county)
	}
	assert.Equal(t, 1, calls, "repeated lookups hit the cache")
	assert.Equal(t, 2, resolver.Hits())

	_, err := resolver.County(context.Background(), 1.0, 1.0)
	assert.True(t, errors.IsNotFound(err))
	_, err = resolver.County(context.Background(), 1.0, 1.0)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 2, calls, "negative results are cached too")
}

func TestCachingCountyResolverPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counties.json")

	inner := StaticCountyResolver{
		CountyKey(33.9390, -83.4536): "Clarke County",
	}

	first := NewCachingCountyResolver(inner)
	_, err := first.County(context.Background(), 33.9390, -83.4536)
	require.NoError(t, err)
	require.NoError(t, first.Save(path))

	second := NewCachingCountyResolver(StaticCountyResolver{})
	require.NoError(t, second.Load(path))

	county, err := second.County(context.Background(), 33.9390, -83.4536)
	require.NoError(t, err)
	assert.Equal(t, "Clarke County", county, "loaded cache answers without the inner resolver")
}

func TestCachingCountyResolverLoadMissing(t *testing.T) {
	resolver := NewCachingCountyResolver(StaticCountyResolver{})
	assert.NoError(t, resolver.Load(filepath.Join(t.TempDir(), "absent.json")))
}

func TestCachingCountyResolverLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	resolver := NewCachingCountyResolver(StaticCountyResolver{})
	err := resolver.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}
