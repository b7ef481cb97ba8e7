package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"docqa/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore is a pgvector-backed VectorStorer for deployments that
// keep vectors next to the rest of their data instead of a managed index.
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

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS clauses (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		chunk_index INT NOT NULL,
		content TEXT NOT NULL,
		metadata JSONB,
		embedding vector(1536)
	);

	CREATE INDEX IF NOT EXISTS idx_clauses_embedding ON clauses USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_clauses_doc_id ON clauses(doc_id);
	`
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Upsert(ctx context.Context, docID string, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}

	query := `
	INSERT INTO clauses (id, doc_id, chunk_index, content, metadata, embedding)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		content = EXCLUDED.content,
		metadata = EXCLUDED.metadata,
		embedding = EXCLUDED.embedding
	`
	for i := range chunks {
		meta, err := json.Marshal(vectorMetadata(docID, chunks[i]))
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		_, err = p.pool.Exec(ctx, query,
			VectorID(docID, i), docID, i, chunks[i].Content, meta, pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStore) Search(ctx context.Context, vector []float32, docID string, topK int) ([]types.ClauseMatch, error) {
	if len(vector) == 0 {
		return nil, errors.New("empty query vector")
	}
	if topK <= 0 {
		topK = 5
	}

	query := `
	SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
	FROM clauses
	WHERE embedding IS NOT NULL AND ($2 = '' OR doc_id = $2)
	ORDER BY embedding <=> $1
	LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), docID, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.ClauseMatch
	for rows.Next() {
		var m types.ClauseMatch
		var meta []byte
		if err := rows.Scan(&m.ID, &m.Content, &meta, &m.Score); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
