package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChunkMeta maps a chunk back to its owning article.
type ChunkMeta struct {
	ArticleID string
	Position  int
}

// MetadataStore is the chunk-id -> ChunkMeta lookup, fully loaded at
// startup and read-only afterwards. Keys are canonical UUID strings;
// whatever type the database driver yields is normalized during load so
// lookups never have to probe alternate representations.
type MetadataStore struct {
	chunks map[string]ChunkMeta
}

// NewMetadataStore wraps an already-normalized chunk map.
func NewMetadataStore(chunks map[string]ChunkMeta) *MetadataStore {
	if chunks == nil {
		chunks = map[string]ChunkMeta{}
	}
	return &MetadataStore{chunks: chunks}
}

func LoadMetadata(ctx context.Context, pool *pgxpool.Pool) (*MetadataStore, error) {
	rows, err := pool.Query(ctx, "SELECT id::text, article_id, chunk_index FROM news_chunks")
	if err != nil {
		return nil, fmt.Errorf("load chunk metadata: %w", err)
	}
	defer rows.Close()

	chunks := make(map[string]ChunkMeta)
	for rows.Next() {
		var (
			id   string
			meta ChunkMeta
		)
		if err := rows.Scan(&id, &meta.ArticleID, &meta.Position); err != nil {
			return nil, fmt.Errorf("scan chunk metadata: %w", err)
		}
		if id == "" || meta.ArticleID == "" {
			return nil, fmt.Errorf("chunk metadata row missing id or article id")
		}
		chunks[id] = meta
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &MetadataStore{chunks: chunks}, nil
}

func (m *MetadataStore) Lookup(chunkID string) (ChunkMeta, bool) {
	meta, ok := m.chunks[chunkID]
	return meta, ok
}

func (m *MetadataStore) Len() int {
	return len(m.chunks)
}
