package linkcheck

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_PutGetRoundTrip(t *testing.T) {
	cache, err := OpenCache(":memory:", time.Hour)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_, ok, err := cache.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Put(ctx, &CacheEntry{
		URL: "https://example.com", Broken: true, Status: 404, CheckedAt: time.Now(),
	}))

	entry, ok, err := cache.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, entry.Broken)
	require.Equal(t, 404, entry.Status)
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	cache, err := OpenCache(":memory:", time.Minute)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, &CacheEntry{
		URL: "https://example.com", Status: 200, CheckedAt: time.Now().Add(-2 * time.Minute),
	}))

	_, ok, err := cache.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_ReplaceUpdatesVerdict(t *testing.T) {
	cache, err := OpenCache(":memory:", time.Hour)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, &CacheEntry{URL: "u", Broken: true, Status: 500, CheckedAt: time.Now()}))
	require.NoError(t, cache.Put(ctx, &CacheEntry{URL: "u", Broken: false, Status: 200, CheckedAt: time.Now()}))

	entry, ok, err := cache.Get(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, entry.Broken)
}

func TestOpenCache_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "linkcache.db")
	cache, err := OpenCache(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	require.FileExists(t, path)
}
