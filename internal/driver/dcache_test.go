package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache("ferrum", t.TempDir())
	require.NoError(t, err)

	key := unitDigest(Unit{Path: "a.fe", Source: unsafeSource})
	var out DiskPayload
	hit, err := cache.Get(key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	d := New(Options{})
	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "a.fe", Source: unsafeSource})
	require.NoError(t, err)

	require.NoError(t, cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion, Path: "a.fe", Diagnostics: res.Diagnostics}))
	hit, err = cache.Get(key, &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "a.fe", out.Path)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, res.Diagnostics[0].Message, out.Diagnostics[0].Message)
	assert.Equal(t, res.Diagnostics[0].Primary.Span, out.Diagnostics[0].Primary.Span)

	require.NoError(t, cache.DropAll())
	hit, err = cache.Get(key, &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDigestDependsOnPathAndSource(t *testing.T) {
	a := unitDigest(Unit{Path: "a.fe", Source: cleanSource})
	assert.Equal(t, a, unitDigest(Unit{Path: "a.fe", Source: cleanSource}))
	assert.NotEqual(t, a, unitDigest(Unit{Path: "b.fe", Source: cleanSource}))
	assert.NotEqual(t, a, unitDigest(Unit{Path: "a.fe", Source: cleanSource + "\n"}))
}

func TestDriverServesCachedDiagnostics(t *testing.T) {
	cache, err := OpenDiskCache("ferrum", t.TempDir())
	require.NoError(t, err)
	unit := Unit{Path: "a.fe", Source: unsafeSource}

	first := New(Options{Cache: cache})
	res, err := first.AnalyzeUnit(context.Background(), unit)
	require.NoError(t, err)
	assert.False(t, res.Cached)

	second := New(Options{Cache: cache})
	cached, err := second.AnalyzeUnit(context.Background(), unit)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Nil(t, cached.Typed)
	assert.True(t, cached.Failed())
	assert.Equal(t, first.Engine().Render(false), second.Engine().Render(false))
}

func TestCacheIgnoredWithBackend(t *testing.T) {
	cache, err := OpenDiskCache("ferrum", t.TempDir())
	require.NoError(t, err)
	unit := Unit{Path: "add.fe", Source: cleanSource}

	backend := &recordingBackend{}
	for range 2 {
		d := New(Options{Cache: cache, Backend: backend})
		res, err := d.AnalyzeUnit(context.Background(), unit)
		require.NoError(t, err)
		assert.False(t, res.Cached)
	}
	assert.Len(t, backend.modules, 2)
}
