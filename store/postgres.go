package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"policyrag/types"
)

// PostgresStore keeps the embedding cache in a pgvector table for
// deployments that already run Postgres. Rows are ordered by position so
// the parallel-array layout of the record survives the round trip.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS embedding_cache (
		position INT PRIMARY KEY,
		chunk_text TEXT NOT NULL,
		embedding vector NOT NULL
	);
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (*types.EmbeddingCache, error) {
	rows, err := s.pool.Query(ctx, `SELECT chunk_text, embedding FROM embedding_cache ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	record := &types.EmbeddingCache{}
	for rows.Next() {
		var text string
		var vec pgvector.Vector
		if err := rows.Scan(&text, &vec); err != nil {
			return nil, err
		}
		record.ChunkTexts = append(record.ChunkTexts, text)
		record.Vectors = append(record.Vectors, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(record.ChunkTexts) == 0 {
		return nil, nil
	}
	return record, nil
}

func (s *PostgresStore) Save(ctx context.Context, record *types.EmbeddingCache) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM embedding_cache`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, text := range record.ChunkTexts {
		batch.Queue(
			`INSERT INTO embedding_cache (position, chunk_text, embedding) VALUES ($1, $2, $3)`,
			i, text, toPgVector(record.Vectors[i]),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Delete(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM embedding_cache`)
	return err
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func toPgVector(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%f", x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
