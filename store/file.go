package store

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"policyrag/types"
)

// FileStore keeps the embedding cache in a single gob file, the default
// backend for single-node deployments.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (*types.EmbeddingCache, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	defer f.Close()

	var record types.EmbeddingCache
	if err := gob.NewDecoder(f).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode embedding cache: %w", err)
	}
	return &record, nil
}

// Save writes the record atomically: encode to a temp file in the same
// directory, then rename over the old record.
func (s *FileStore) Save(_ context.Context, record *types.EmbeddingCache) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "embeddings-*.gob")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(record); err != nil {
		tmp.Close()
		return fmt.Errorf("encode embedding cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace embedding cache: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete embedding cache: %w", err)
	}
	return nil
}
