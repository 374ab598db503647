package cache

import (
	"context"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/shipstores/config"
)

func TestItemCachePatternCoversAllVesselKeys(t *testing.T) {
	pattern := ItemCachePattern(7)

	// The admin view (vessel 0) and every vessel-scoped entry must fall under
	// the pattern so a global toggle drops them all at once.
	for _, vesselID := range []uint{0, 1, 42} {
		key := ItemCacheKey(7, vesselID)
		ok, err := path.Match(pattern, key)
		require.NoError(t, err)
		require.True(t, ok, key)
	}

	ok, err := path.Match(pattern, ItemCacheKey(77, 1))
	require.NoError(t, err)
	require.False(t, ok, "pattern must not bleed into other item ids")
}

func TestDisabledCacheIsInert(t *testing.T) {
	c, err := NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	var out struct{}
	require.Error(t, c.Get(ctx, "k", &out))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.DeletePattern(ctx, ItemCachePattern(1)))
	require.NoError(t, c.Close())
}
