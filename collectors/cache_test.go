package collectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SeenRoundTrip(t *testing.T) {
	cache, err := OpenCache("")
	require.NoError(t, err)
	defer cache.Close()

	assert.False(t, cache.Seen("news-test-1"))

	cache.MarkSeen(Article{ID: "news-test-1", Title: "Titel", Source: "test"})
	assert.True(t, cache.Seen("news-test-1"))
	assert.False(t, cache.Seen("news-test-2"))
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	cache, err := OpenCache(dir)
	require.NoError(t, err)
	cache.MarkSeen(Article{ID: "news-test-1", Title: "Titel"})
	require.NoError(t, cache.Close())

	reopened, err := OpenCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.Seen("news-test-1"))
}
