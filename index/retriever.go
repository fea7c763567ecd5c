package index

import (
	"context"
	"log/slog"
	"sort"

	"policyrag/config"
	"policyrag/model"
	"policyrag/types"
)

// Retriever answers top-k queries against a built Index. Retrieval never
// returns an error: a query that matches nothing yields an empty slice,
// and an embedding failure at query time degrades to the keyword scorer
// for that query.
type Retriever struct {
	index         *Index
	embedder      model.Embedder
	synonyms      config.Synonyms
	minSimilarity float64
	defaultK      int
	logger        *slog.Logger
}

func NewRetriever(idx *Index, embedder model.Embedder, synonyms config.Synonyms, minSimilarity float64, defaultK int, logger *slog.Logger) *Retriever {
	if defaultK <= 0 {
		defaultK = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		index:         idx,
		embedder:      embedder,
		synonyms:      synonyms,
		minSimilarity: minSimilarity,
		defaultK:      defaultK,
		logger:        logger,
	}
}

// Mode reports the mode of the underlying index.
func (r *Retriever) Mode() Mode {
	return r.index.Mode
}

// Retrieve returns up to k chunks relevant to the query, best first.
// k <= 0 selects the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []types.Retrieved {
	if k <= 0 {
		k = r.defaultK
	}
	if len(r.index.Chunks) == 0 {
		return nil
	}

	if r.index.Mode == ModeEmbedding {
		results, err := r.bySimilarity(ctx, query, k)
		if err == nil {
			return results
		}
		r.logger.Warn("query embedding failed, degrading to keyword search", "error", err)
	}
	return r.byKeywords(query, k)
}

func (r *Retriever) bySimilarity(ctx context.Context, query string, k int) ([]types.Retrieved, error) {
	qv, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]types.Retrieved, 0, len(r.index.Chunks))
	for i, vec := range r.index.Vectors {
		score := dot(qv, vec)
		if score > r.minSimilarity {
			scored = append(scored, types.Retrieved{Chunk: r.index.Chunks[i], Score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// dot is cosine similarity for unit vectors, which the embedder guarantees.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
