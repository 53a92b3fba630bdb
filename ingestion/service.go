package ingestion

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/reddygtvs/Archived-News-RAG/config"
	"github.com/reddygtvs/Archived-News-RAG/database"
	"github.com/reddygtvs/Archived-News-RAG/embeddings"
	"github.com/reddygtvs/Archived-News-RAG/guardian"
)

// Lightweight/lifestyle sections add noise without adding 2015 news
// signal; articles whose ids fall under them are skipped.
var skipSections = map[string]struct{}{
	"fashion":      {},
	"food":         {},
	"travel":       {},
	"lifeandstyle": {},
	"books":        {},
	"film":         {},
	"stage":        {},
}

// Service builds the searchable corpus: it filters fetched articles,
// chunks their bodies, embeds the chunks, and stores article text plus
// chunk vectors in Postgres. Chunk rows carry no text; bodies are resolved
// through the article store at query time.
type Service struct {
	pool      *pgxpool.Pool
	embedder  embeddings.Embedder
	logger    *log.Logger
	cfg       config.IngestConfig
	dimension int
}

func NewService(pool *pgxpool.Pool, embedder embeddings.Embedder, logger *log.Logger, cfg config.IngestConfig, dimension int) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		pool:      pool,
		embedder:  embedder,
		logger:    logger,
		cfg:       cfg,
		dimension: dimension,
	}
}

// IngestFile loads a fetched JSONL corpus into Postgres. Individual
// article failures are logged and skipped so one bad record cannot abort a
// long build.
func (s *Service) IngestFile(ctx context.Context, path string) error {
	if s.embedder == nil {
		return fmt.Errorf("embedder not configured")
	}
	if err := database.EnsureSchema(ctx, s.pool, s.dimension); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	articles, err := guardian.ReadJSONL(path, func(line int, err error) {
		s.logger.Printf("skipping line %d: %v", line, err)
	})
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}

	kept := FilterArticles(articles, s.cfg.MinBodyChars)
	s.logger.Printf("ingesting %d of %d articles (chunk size %d, overlap %d)",
		len(kept), len(articles), s.cfg.ChunkSize, s.cfg.ChunkOverlap)

	ingested := 0
	for i := range kept {
		if err := s.ingestArticle(ctx, &kept[i]); err != nil {
			s.logger.Printf("ingest failed for %s: %v", kept[i].ID, err)
			continue
		}
		ingested++
	}

	s.logger.Printf("ingestion complete: %d articles stored", ingested)
	return nil
}

// FilterArticles drops articles from skipped sections and articles whose
// bodies are too short to carry useful retrieval signal.
func FilterArticles(articles []guardian.Article, minBodyChars int) []guardian.Article {
	kept := make([]guardian.Article, 0, len(articles))
	for _, article := range articles {
		if article.ID == "" || len(article.BodyText) < minBodyChars {
			continue
		}
		if inSkippedSection(article.ID) {
			continue
		}
		kept = append(kept, article)
	}
	return kept
}

func inSkippedSection(articleID string) bool {
	section, _, found := strings.Cut(articleID, "/")
	if !found {
		return false
	}
	_, skip := skipSections[strings.ToLower(section)]
	return skip
}

func (s *Service) ingestArticle(ctx context.Context, article *guardian.Article) (err error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM news_articles WHERE id = $1)", article.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check article: %w", err)
	}
	if exists {
		// The archive is immutable; an already-stored article never needs
		// re-embedding.
		return nil
	}

	publishedAt, parseErr := time.Parse(time.RFC3339, article.WebPublicationDate)
	if parseErr != nil {
		return fmt.Errorf("parse publication date %q: %w", article.WebPublicationDate, parseErr)
	}

	chunks := ChunkText(article.BodyText, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		s.logger.Printf("skip empty article %s", article.ID)
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: have %d chunks, %d embeddings", len(chunks), len(vectors))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Printf("rollback error: %v", rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO news_articles (id, title, url, body, published_at)
		VALUES ($1, $2, $3, $4, $5)
	`, article.ID, article.WebTitle, article.WebURL, article.BodyText, publishedAt); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}

	for idx := range chunks {
		vec := pgvector.NewVector(vectors[idx])
		if _, err = tx.Exec(ctx, `
			INSERT INTO news_chunks (id, article_id, chunk_index, embedding)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), article.ID, idx, vec); err != nil {
			return fmt.Errorf("insert chunk %d: %w", idx, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Printf("ingested %s (%d chunks)", article.ID, len(chunks))
	return nil
}
