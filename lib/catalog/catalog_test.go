package catalog_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rapidroute/rapidroute-go/lib/catalog"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

var scenarioPaths = []route.Path{
	{"s", "1", "2", "snk"},
	{"s", "1", "3", "2", "snk"},
	{"s", "4", "5", "snk"},
}

func TestInMemory(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	key := catalog.Key{Src: "s", Snk: "snk", MaxDepth: 8}
	added, err := cat.TryAddPaths(key, scenarioPaths)
	require.NoError(t, err)
	require.True(t, added)

	added, err = cat.TryAddPaths(key, scenarioPaths[:1])
	require.NoError(t, err)
	require.False(t, added)

	paths, err := cat.Get(key)
	require.NoError(t, err)
	require.Equal(t, scenarioPaths, paths)

	_, err = cat.Get(catalog.Key{Src: "s", Snk: "snk", MaxDepth: 4})
	require.True(t, errors.Is(err, route.ErrNoPathFound))

	_, err = cat.TryAddPaths(catalog.Key{Src: "x", Snk: "snk", MaxDepth: 8}, scenarioPaths)
	require.True(t, errors.Is(err, route.ErrInvalidInput))
	_, err = cat.Get(catalog.Key{Src: "s", Snk: "snk", MaxDepth: 0})
	require.True(t, errors.Is(err, route.ErrInvalidInput))
}

func TestKeysAndSeen(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	keys := []catalog.Key{
		{Src: "s", Snk: "snk", MaxDepth: 8},
		{Src: "s", Snk: "snk", MaxDepth: 3},
		{Src: "a", Snk: "b", MaxDepth: 300},
	}
	for _, key := range keys {
		_, err := cat.TryAddPaths(key, nil)
		require.NoError(t, err)
	}

	got, err := cat.Keys()
	require.NoError(t, err)
	require.Equal(t, []catalog.Key{keys[2], keys[1], keys[0]}, got)

	added, err := cat.TryAddPath(scenarioPaths[0])
	require.NoError(t, err)
	require.True(t, added)
	added, err = cat.TryAddPath(scenarioPaths[0])
	require.NoError(t, err)
	require.False(t, added)

	got, err = cat.Keys()
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog")
	key := catalog.Key{Src: "s", Snk: "snk", MaxDepth: 8}

	cat, err := catalog.Open(catalog.Opts{DbPathName: dbPath})
	require.NoError(t, err)
	_, err = cat.TryAddPaths(key, scenarioPaths)
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	_, err = cat.Get(key)
	require.True(t, errors.Is(err, route.ErrCatalogClosed))
	require.NoError(t, cat.Close())

	cat, err = catalog.Open(catalog.Opts{DbPathName: dbPath})
	require.NoError(t, err)
	defer cat.Close()
	paths, err := cat.Get(key)
	require.NoError(t, err)
	require.Len(t, paths, 3)
}

func TestReadOnlyNeedsPath(t *testing.T) {
	_, err := catalog.Open(catalog.Opts{ReadOnly: true})
	require.True(t, errors.Is(err, route.ErrInvalidInput))
}
