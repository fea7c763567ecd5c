// Package model holds the clients for the external ML backends: the
// embedding model, the generative models, and the rate governor that
// spaces every outbound call to them.
package model

import "context"

// Embedder converts text into a fixed-dimension vector. Implementations
// return L2-normalized vectors so that cosine similarity reduces to a dot
// product.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
