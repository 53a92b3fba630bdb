package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrIndexUnavailable is returned by Search when the index has not been
// loaded or holds no vectors.
var ErrIndexUnavailable = errors.New("vector index unavailable or empty")

// ChunkHit is a single nearest-neighbor result, ordered by ascending
// distance. Lower distance means a stronger match.
type ChunkHit struct {
	ChunkID  string
	Distance float64
}

// Index wraps the nearest-neighbor search primitive.
type Index interface {
	Search(ctx context.Context, embedding []float32, k int) ([]ChunkHit, error)
	Size() int
}

// PgvectorIndex serves k-NN queries from the news_chunks table. The chunk
// count is fixed at construction: the corpus is read-only once serving
// starts.
type PgvectorIndex struct {
	pool *pgxpool.Pool
	size int
}

func NewPgvectorIndex(ctx context.Context, pool *pgxpool.Pool) (*PgvectorIndex, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	var size int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM news_chunks").Scan(&size); err != nil {
		return nil, fmt.Errorf("count indexed chunks: %w", err)
	}

	return &PgvectorIndex{pool: pool, size: size}, nil
}

func (idx *PgvectorIndex) Size() int {
	return idx.size
}

func (idx *PgvectorIndex) Search(ctx context.Context, embedding []float32, k int) ([]ChunkHit, error) {
	if idx.size == 0 {
		return nil, ErrIndexUnavailable
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if k > idx.size {
		k = idx.size
	}

	conn, err := idx.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := k * 4
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT id, (embedding <-> $1::vector) AS distance
        FROM news_chunks
        ORDER BY embedding <-> $1::vector
        LIMIT $2
    `, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("query nearest chunks: %w", err)
	}
	defer rows.Close()

	hits := make([]ChunkHit, 0, k)
	for rows.Next() {
		var hit ChunkHit
		if scanErr := rows.Scan(&hit.ChunkID, &hit.Distance); scanErr != nil {
			return nil, fmt.Errorf("scan chunk hit: %w", scanErr)
		}
		hits = append(hits, hit)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return hits, nil
}

var _ Index = (*PgvectorIndex)(nil)
