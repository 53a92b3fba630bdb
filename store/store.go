package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stores bundles the three shared read-only stores the query pipeline
// depends on. Construction is an all-or-nothing startup gate: if any store
// fails to load, the service must refuse to serve queries.
type Stores struct {
	Index    Index
	Metadata *MetadataStore
	Articles *ArticleStore
}

func Open(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) (*Stores, error) {
	if logger == nil {
		logger = log.Default()
	}

	index, err := NewPgvectorIndex(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	if index.Size() == 0 {
		return nil, fmt.Errorf("vector index is empty; run fetch and ingest first")
	}

	metadata, err := LoadMetadata(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load chunk metadata: %w", err)
	}

	articles, err := LoadArticles(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load article store: %w", err)
	}
	if articles.Len() == 0 {
		return nil, fmt.Errorf("article store is empty; run fetch and ingest first")
	}

	if index.Size() != metadata.Len() {
		logger.Printf("warning: index size (%d) does not match chunk metadata count (%d)", index.Size(), metadata.Len())
	}

	logger.Printf("stores loaded: %d chunks, %d articles", metadata.Len(), articles.Len())

	return &Stores{Index: index, Metadata: metadata, Articles: articles}, nil
}
