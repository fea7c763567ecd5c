package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrag/types"
)

// stubEmbedder maps texts to fixed vectors and can be told to fail the
// probe, the batch or individual queries.
type stubEmbedder struct {
	vectors    map[string][]float32
	failProbe  bool
	failBatch  bool
	failEmbed  bool
	embedCalls int
	batchCalls int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.embedCalls++
	if text == "ping" && s.failProbe {
		return nil, errors.New("backend down")
	}
	if text != "ping" && s.failEmbed {
		return nil, errors.New("embed failed")
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	if s.failBatch {
		return nil, errors.New("batch failed")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// memCache is an in-memory CacheStore for builder tests.
type memCache struct {
	record *types.EmbeddingCache
	saves  int
}

func (m *memCache) Load(context.Context) (*types.EmbeddingCache, error) { return m.record, nil }

func (m *memCache) Save(_ context.Context, record *types.EmbeddingCache) error {
	m.record = record
	m.saves++
	return nil
}

func (m *memCache) Delete(context.Context) error {
	m.record = nil
	return nil
}

func chunksOf(texts ...string) []types.Chunk {
	out := make([]types.Chunk, len(texts))
	for i, t := range texts {
		out[i] = types.Chunk{SourceID: "doc.txt", Content: t, Index: i}
	}
	return out
}

func TestBuildEmbeddingMode(t *testing.T) {
	emb := &stubEmbedder{}
	cache := &memCache{}
	b := NewBuilder(emb, cache, nil)

	idx, err := b.Build(context.Background(), chunksOf("one", "two"))
	require.NoError(t, err)
	assert.Equal(t, ModeEmbedding, idx.Mode)
	require.Len(t, idx.Vectors, 2)
	assert.Equal(t, 1, cache.saves)
}

func TestBuildFallsBackWhenProbeFails(t *testing.T) {
	emb := &stubEmbedder{failProbe: true}
	b := NewBuilder(emb, &memCache{}, nil)

	idx, err := b.Build(context.Background(), chunksOf("one"))
	require.NoError(t, err)
	assert.Equal(t, ModeKeyword, idx.Mode)
	assert.Nil(t, idx.Vectors)
}

func TestBuildKeywordModeWhenDisabled(t *testing.T) {
	emb := &stubEmbedder{}
	b := NewBuilder(emb, &memCache{}, nil)
	b.DisableEmbedding = true

	idx, err := b.Build(context.Background(), chunksOf("one"))
	require.NoError(t, err)
	assert.Equal(t, ModeKeyword, idx.Mode)
	assert.Zero(t, emb.embedCalls)
}

func TestBuildReusesValidCache(t *testing.T) {
	cached := &types.EmbeddingCache{
		ChunkTexts: []string{"one", "two"},
		Vectors:    [][]float32{{1, 0, 0}, {0, 1, 0}},
	}
	emb := &stubEmbedder{}
	cache := &memCache{record: cached}
	b := NewBuilder(emb, cache, nil)

	idx, err := b.Build(context.Background(), chunksOf("one", "two"))
	require.NoError(t, err)
	assert.Equal(t, ModeEmbedding, idx.Mode)
	assert.Equal(t, cached.Vectors, idx.Vectors)
	assert.Zero(t, emb.batchCalls)
	assert.Zero(t, cache.saves)
}

func TestBuildRecomputesOnCountMismatch(t *testing.T) {
	cache := &memCache{record: &types.EmbeddingCache{
		ChunkTexts: []string{"stale"},
		Vectors:    [][]float32{{1, 0, 0}},
	}}
	emb := &stubEmbedder{}
	b := NewBuilder(emb, cache, nil)

	idx, err := b.Build(context.Background(), chunksOf("one", "two"))
	require.NoError(t, err)
	require.Len(t, idx.Vectors, 2)
	assert.Equal(t, 1, emb.batchCalls)
	assert.Equal(t, 1, cache.saves)
	assert.Equal(t, []string{"one", "two"}, cache.record.ChunkTexts)
}

func TestBuildRecomputesAfterCacheDrop(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{}
	cache := &memCache{}
	b := NewBuilder(emb, cache, nil)

	_, err := b.Build(ctx, chunksOf("one", "two"))
	require.NoError(t, err)
	require.Equal(t, 1, emb.batchCalls)

	// Same chunk count as the dropped record still recomputes.
	require.NoError(t, cache.Delete(ctx))
	_, err = b.Build(ctx, chunksOf("one", "two"))
	require.NoError(t, err)
	assert.Equal(t, 2, emb.batchCalls)
}

func TestBuildBatchFailureIsError(t *testing.T) {
	emb := &stubEmbedder{failBatch: true}
	b := NewBuilder(emb, &memCache{}, nil)

	_, err := b.Build(context.Background(), chunksOf("one"))
	assert.ErrorIs(t, err, ErrEmbeddingBackend)
}
