package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrag/types"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "cache.gob"))

	record := &types.EmbeddingCache{
		ChunkTexts: []string{"alpha", "beta"},
		Vectors:    [][]float32{{0.1, 0.2}, {0.3, 0.4}},
	}
	require.NoError(t, s.Save(ctx, record))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.ChunkTexts, loaded.ChunkTexts)
	assert.Equal(t, record.Vectors, loaded.Vectors)
	assert.True(t, loaded.Valid(2))
	assert.False(t, loaded.Valid(3))
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.gob"))

	record, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.False(t, record.Valid(0))
}

func TestFileStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "cache.gob"))

	require.NoError(t, s.Delete(ctx))

	require.NoError(t, s.Save(ctx, &types.EmbeddingCache{
		ChunkTexts: []string{"x"},
		Vectors:    [][]float32{{1}},
	}))
	require.NoError(t, s.Delete(ctx))

	record, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, s.Delete(ctx))
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "cache.gob"))

	require.NoError(t, s.Save(ctx, &types.EmbeddingCache{
		ChunkTexts: []string{"old"},
		Vectors:    [][]float32{{1}},
	}))
	require.NoError(t, s.Save(ctx, &types.EmbeddingCache{
		ChunkTexts: []string{"new one", "new two"},
		Vectors:    [][]float32{{2}, {3}},
	}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, []string{"new one", "new two"}, loaded.ChunkTexts)
}
