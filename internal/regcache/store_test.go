package regcache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/regcache"
)

func openTestStore(t *testing.T) *regcache.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := regcache.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLookupMissOnEmptyCache(t *testing.T) {
	s := openTestStore(t)
	row, ok, err := s.Lookup("/work", "http", "^1.2.0")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, row)
}

func TestPutThenLookupHit(t *testing.T) {
	s := openTestStore(t)
	row := regcache.NewResolvedVersion("/work", "http", "1.5.0", "registry+https://pkgs.rask-lang.org", "sha256:ab", []string{"net"}, "^1.2.0")
	require.NoError(t, s.Put(row))

	got, ok, err := s.Lookup("/work", "http", "^1.2.0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.5.0", got.Version)

	caps, err := got.CapabilityList()
	require.NoError(t, err)
	assert.Equal(t, []string{"net"}, caps)
}

func TestLookupMissWhenConstraintSetChanged(t *testing.T) {
	s := openTestStore(t)
	row := regcache.NewResolvedVersion("/work", "http", "1.5.0", "registry+https://pkgs.rask-lang.org", "sha256:ab", nil, "^1.2.0")
	require.NoError(t, s.Put(row))

	_, ok, err := s.Lookup("/work", "http", "^2.0.0")
	require.NoError(t, err)
	assert.False(t, ok, "a different accumulated constraint set must invalidate the cached entry")
}

func TestPutUpsertsExistingRow(t *testing.T) {
	s := openTestStore(t)
	first := regcache.NewResolvedVersion("/work", "http", "1.5.0", "registry+https://pkgs.rask-lang.org", "sha256:ab", nil, "^1.2.0")
	require.NoError(t, s.Put(first))

	second := regcache.NewResolvedVersion("/work", "http", "1.6.0", "registry+https://pkgs.rask-lang.org", "sha256:cd", nil, "^1.2.0")
	require.NoError(t, s.Put(second))

	got, ok, err := s.Lookup("/work", "http", "^1.2.0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.6.0", got.Version)
}

func TestInvalidateRemovesWorkspaceEntries(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(regcache.NewResolvedVersion("/work", "http", "1.5.0", "registry+https://x", "sha256:ab", nil, "^1.0.0")))
	require.NoError(t, s.Put(regcache.NewResolvedVersion("/work", "json", "0.3.1", "registry+https://x", "sha256:cd", nil, "~0.3.0")))

	require.NoError(t, s.Invalidate("/work"))

	_, ok, err := s.Lookup("/work", "http", "^1.0.0")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Lookup("/work", "json", "~0.3.0")
	require.NoError(t, err)
	assert.False(t, ok)
}
