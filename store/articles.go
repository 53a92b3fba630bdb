package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Article is the unit of relevance returned to the end user. Immutable and
// read-only at query time.
type Article struct {
	ID          string
	Title       string
	URL         string
	Text        string
	PublishedAt time.Time
}

// ArticleStore is the article-id -> Article lookup, fully loaded at
// startup and read-only afterwards.
type ArticleStore struct {
	articles map[string]Article
}

// NewArticleStore wraps an already-loaded article map.
func NewArticleStore(articles map[string]Article) *ArticleStore {
	if articles == nil {
		articles = map[string]Article{}
	}
	return &ArticleStore{articles: articles}
}

func LoadArticles(ctx context.Context, pool *pgxpool.Pool) (*ArticleStore, error) {
	rows, err := pool.Query(ctx, "SELECT id, title, url, body, published_at FROM news_articles")
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	defer rows.Close()

	articles := make(map[string]Article)
	for rows.Next() {
		var article Article
		if err := rows.Scan(&article.ID, &article.Title, &article.URL, &article.Text, &article.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles[article.ID] = article
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &ArticleStore{articles: articles}, nil
}

func (s *ArticleStore) Lookup(articleID string) (Article, bool) {
	article, ok := s.articles[articleID]
	return article, ok
}

func (s *ArticleStore) Len() int {
	return len(s.articles)
}
