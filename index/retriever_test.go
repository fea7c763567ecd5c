package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrag/config"
	"policyrag/types"
)

func embeddingIndex(vectors map[string][]float32, texts ...string) *Index {
	chunks := chunksOf(texts...)
	vecs := make([][]float32, len(chunks))
	for i, ch := range chunks {
		vecs[i] = vectors[ch.Content]
	}
	return &Index{Mode: ModeEmbedding, Chunks: chunks, Vectors: vecs}
}

func TestRetrieveBySimilarityOrderAndFloor(t *testing.T) {
	vectors := map[string][]float32{
		"q":       {1, 0, 0},
		"close":   {0.9, 0.436, 0},
		"mid":     {0.5, 0.866, 0},
		"far":     {0, 1, 0},
		"against": {-1, 0, 0},
	}
	idx := embeddingIndex(vectors, "far", "close", "against", "mid")
	emb := &stubEmbedder{vectors: vectors}
	r := NewRetriever(idx, emb, nil, 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "q", 3)
	require.Len(t, got, 2)
	assert.Equal(t, "close", got[0].Chunk.Content)
	assert.Equal(t, "mid", got[1].Chunk.Content)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestRetrieveTiesKeepCorpusOrder(t *testing.T) {
	vectors := map[string][]float32{
		"q": {1, 0, 0},
		"a": {0.8, 0.6, 0},
		"b": {0.8, 0.6, 0},
	}
	idx := embeddingIndex(vectors, "a", "b")
	r := NewRetriever(idx, &stubEmbedder{vectors: vectors}, nil, 0.1, 2, nil)

	got := r.Retrieve(context.Background(), "q", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Chunk.Content)
	assert.Equal(t, "b", got[1].Chunk.Content)
}

func TestRetrieveNothingAboveFloor(t *testing.T) {
	vectors := map[string][]float32{
		"q": {1, 0, 0},
		"x": {0, 1, 0},
	}
	idx := embeddingIndex(vectors, "x")
	r := NewRetriever(idx, &stubEmbedder{vectors: vectors}, nil, 0.1, 3, nil)

	assert.Empty(t, r.Retrieve(context.Background(), "q", 3))
}

func TestRetrieveDegradesToKeywordsOnEmbedFailure(t *testing.T) {
	vectors := map[string][]float32{"attendance": {1, 0, 0}}
	idx := embeddingIndex(vectors, "the attendance rules are strict")
	emb := &stubEmbedder{vectors: vectors, failEmbed: true}
	r := NewRetriever(idx, emb, nil, 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "attendance", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "the attendance rules are strict", got[0].Chunk.Content)
}

func keywordIndex(chunks ...types.Chunk) *Index {
	return &Index{Mode: ModeKeyword, Chunks: chunks}
}

func TestKeywordSynonymExpansion(t *testing.T) {
	idx := keywordIndex(
		types.Chunk{SourceID: "handbook.pdf", Content: "Continuous assessment applies across the experience.", Index: 0},
		types.Chunk{SourceID: "menu.txt", Content: "Lunch options for the cafeteria.", Index: 0},
	)
	r := NewRetriever(idx, nil, config.DefaultSynonyms(), 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "care", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "handbook.pdf", got[0].Chunk.SourceID)
}

func TestKeywordSourceNameWeighting(t *testing.T) {
	idx := keywordIndex(
		types.Chunk{SourceID: "notes.txt", Content: "policy appears once here", Index: 0},
		types.Chunk{SourceID: "policy.txt", Content: "unrelated body text", Index: 0},
	)
	r := NewRetriever(idx, nil, nil, 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "policy", 3)
	require.Len(t, got, 2)
	// notes.txt: one content match plus the exact-substring bonus.
	// policy.txt: source-name match only, weighted three times.
	assert.Equal(t, "notes.txt", got[0].Chunk.SourceID)
	assert.Equal(t, 6.0, got[0].Score)
	assert.Equal(t, "policy.txt", got[1].Chunk.SourceID)
	assert.Equal(t, 3.0, got[1].Score)
}

func TestKeywordPunctuatedQuery(t *testing.T) {
	idx := keywordIndex(
		types.Chunk{SourceID: "policy.txt", Content: "The CARE policy requires continuous assessment of reduction experience.", Index: 0},
	)
	r := NewRetriever(idx, nil, config.DefaultSynonyms(), 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "What is CARE?", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "policy.txt", got[0].Chunk.SourceID)
	assert.Positive(t, got[0].Score)
}

func TestKeywordPhraseBonus(t *testing.T) {
	idx := keywordIndex(
		types.Chunk{SourceID: "a.txt", Content: "grading scale is strict", Index: 0},
		types.Chunk{SourceID: "b.txt", Content: "the grading rules and the scale", Index: 0},
	)
	r := NewRetriever(idx, nil, nil, 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "grading scale", 3)
	require.Len(t, got, 2)
	// Both contain both words; only a.txt has the exact phrase.
	assert.Equal(t, "a.txt", got[0].Chunk.SourceID)
	assert.Equal(t, 7.0, got[0].Score)
	assert.Equal(t, 2.0, got[1].Score)
}

func TestKeywordUnrelatedQueryEmpty(t *testing.T) {
	idx := keywordIndex(
		types.Chunk{SourceID: "a.txt", Content: "attendance and certification policy", Index: 0},
	)
	r := NewRetriever(idx, nil, config.DefaultSynonyms(), 0.1, 3, nil)

	assert.Empty(t, r.Retrieve(context.Background(), "quantum chromodynamics", 3))
}

func TestKeywordTopKLimit(t *testing.T) {
	var chunks []types.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, types.Chunk{SourceID: "doc.txt", Content: "policy text", Index: i})
	}
	r := NewRetriever(keywordIndex(chunks...), nil, nil, 0.1, 3, nil)

	got := r.Retrieve(context.Background(), "policy", 2)
	assert.Len(t, got, 2)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := NewRetriever(keywordIndex(), nil, nil, 0.1, 3, nil)
	assert.Empty(t, r.Retrieve(context.Background(), "anything", 3))
}
