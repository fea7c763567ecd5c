// Package index builds the searchable representation over the chunked
// corpus and serves top-k retrieval against it. Two modes exist: dense
// embeddings (preferred) and a keyword scorer used when the embedding
// backend is unavailable. The mode is fixed at build time.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"policyrag/model"
	"policyrag/store"
	"policyrag/types"
)

// ErrEmbeddingBackend means the embedding backend accepted the probe but
// failed while computing the corpus embeddings. Index construction is an
// administrative action, so this surfaces instead of degrading silently.
var ErrEmbeddingBackend = errors.New("embedding backend failed during index build")

type Mode string

const (
	ModeEmbedding Mode = "embedding"
	ModeKeyword   Mode = "keyword"
)

// Index is the queryable result of a build: the chunk sequence plus, in
// embedding mode, one vector per chunk aligned by position.
type Index struct {
	Mode    Mode
	Chunks  []types.Chunk
	Vectors [][]float32
}

// Builder constructs an Index, reusing the persisted embedding cache when
// its chunk count matches the current corpus.
type Builder struct {
	embedder model.Embedder
	cache    store.CacheStore
	logger   *slog.Logger

	// DisableEmbedding forces keyword mode without probing the backend.
	DisableEmbedding bool
}

func NewBuilder(embedder model.Embedder, cache store.CacheStore, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: embedder, cache: cache, logger: logger}
}

// Build computes the index for the given chunk sequence. An unavailable
// embedding backend selects keyword mode with a warning; a backend that
// fails mid-computation is an error.
func (b *Builder) Build(ctx context.Context, chunks []types.Chunk) (*Index, error) {
	if b.DisableEmbedding || b.embedder == nil {
		b.logger.Info("embedding disabled, building keyword index", "chunks", len(chunks))
		return &Index{Mode: ModeKeyword, Chunks: chunks}, nil
	}

	if _, err := b.embedder.Embed(ctx, "ping"); err != nil {
		b.logger.Warn("embedding backend unavailable, falling back to keyword mode", "error", err)
		return &Index{Mode: ModeKeyword, Chunks: chunks}, nil
	}

	vectors, err := b.embedVectors(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return &Index{Mode: ModeEmbedding, Chunks: chunks, Vectors: vectors}, nil
}

func (b *Builder) embedVectors(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	if record, err := b.cache.Load(ctx); err != nil {
		b.logger.Warn("could not read embedding cache, recomputing", "error", err)
	} else if record.Valid(len(chunks)) {
		b.logger.Info("reusing cached embeddings", "chunks", len(chunks))
		return record.Vectors, nil
	}

	b.logger.Info("computing document embeddings", "chunks", len(chunks))
	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingBackend, err)
	}

	record := &types.EmbeddingCache{ChunkTexts: texts, Vectors: vectors}
	if err := b.cache.Save(ctx, record); err != nil {
		// The index is still usable; only restart cost is affected.
		b.logger.Warn("could not persist embedding cache", "error", err)
	}
	return vectors, nil
}
