// Package store persists the embedding cache record across process
// restarts. The record is written whole and deleted whole; it is never
// partially updated.
package store

import (
	"context"

	"policyrag/types"
)

// CacheStore is the persisted key-value store for the embedding cache.
// Load returns (nil, nil) when no record exists. Delete of a missing
// record is a no-op, which makes rebuilds idempotent.
type CacheStore interface {
	Load(ctx context.Context) (*types.EmbeddingCache, error)
	Save(ctx context.Context, record *types.EmbeddingCache) error
	Delete(ctx context.Context) error
}
