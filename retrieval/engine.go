package retrieval

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/reddygtvs/Archived-News-RAG/store"
)

// ScoredArticle is a per-query ranking result. MinDistance is the strongest
// chunk match for the article, HitCount the number of retrieved chunks that
// resolved to it. Citation is the 1-based rank used as the inline reference
// marker in grounded answers; it is stable for the lifetime of one response.
type ScoredArticle struct {
	ID          string
	Title       string
	URL         string
	Text        string
	PublishedAt time.Time
	MinDistance float64
	HitCount    int
	Citation    int
}

// Engine converts chunk-level search hits into a ranked, deduplicated,
// size-bounded article list.
type Engine struct {
	index    store.Index
	metadata *store.MetadataStore
	articles *store.ArticleStore
	logger   *log.Logger
}

func NewEngine(index store.Index, metadata *store.MetadataStore, articles *store.ArticleStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		index:    index,
		metadata: metadata,
		articles: articles,
		logger:   logger,
	}
}

type aggregate struct {
	articleID   string
	minDistance float64
	hitCount    int
}

// RankArticles searches the index for the top fanout chunks, folds the hits
// into per-article distance groups, and returns at most maxArticles articles
// ordered by (ascending min distance, descending hit count, article id).
//
// An empty or unloaded index, zero resolvable hits, and articles missing
// from the article store all yield an empty slice, not an error: callers
// treat "no results" as a common, valid outcome.
func (e *Engine) RankArticles(ctx context.Context, queryVector []float32, fanout, maxArticles int) ([]ScoredArticle, error) {
	if maxArticles <= 0 {
		return nil, nil
	}
	if fanout < maxArticles {
		fanout = maxArticles
	}

	hits, err := e.index.Search(ctx, queryVector, fanout)
	if err != nil {
		if errors.Is(err, store.ErrIndexUnavailable) {
			e.logger.Printf("vector index unavailable, returning no articles")
			return nil, nil
		}
		return nil, err
	}

	grouped := make(map[string]*aggregate, len(hits))
	for _, hit := range hits {
		meta, ok := e.metadata.Lookup(hit.ChunkID)
		if !ok {
			// Index/metadata drift: skip the chunk, keep the request alive.
			e.logger.Printf("chunk %s has no metadata entry, skipping", hit.ChunkID)
			continue
		}

		agg, ok := grouped[meta.ArticleID]
		if !ok {
			grouped[meta.ArticleID] = &aggregate{
				articleID:   meta.ArticleID,
				minDistance: hit.Distance,
				hitCount:    1,
			}
			continue
		}

		agg.hitCount++
		if hit.Distance < agg.minDistance {
			agg.minDistance = hit.Distance
		}
	}

	if len(grouped) == 0 {
		e.logger.Printf("no retrieved chunk resolved to an article")
		return nil, nil
	}

	ranked := make([]*aggregate, 0, len(grouped))
	for _, agg := range grouped {
		ranked = append(ranked, agg)
	}
	// Min distance is the primary key: it represents the single strongest
	// semantic match. Hit count breaks ties; article id makes the order
	// reproducible under input reordering.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].minDistance != ranked[j].minDistance {
			return ranked[i].minDistance < ranked[j].minDistance
		}
		if ranked[i].hitCount != ranked[j].hitCount {
			return ranked[i].hitCount > ranked[j].hitCount
		}
		return ranked[i].articleID < ranked[j].articleID
	})

	results := make([]ScoredArticle, 0, maxArticles)
	for _, agg := range ranked {
		if len(results) >= maxArticles {
			break
		}

		article, ok := e.articles.Lookup(agg.articleID)
		if !ok {
			e.logger.Printf("article %s missing from article store, dropping", agg.articleID)
			continue
		}

		results = append(results, ScoredArticle{
			ID:          article.ID,
			Title:       article.Title,
			URL:         article.URL,
			Text:        article.Text,
			PublishedAt: article.PublishedAt,
			MinDistance: agg.minDistance,
			HitCount:    agg.hitCount,
			Citation:    len(results) + 1,
		})
	}

	for _, result := range results {
		e.logger.Printf("ranked article %d: id=%s min_dist=%.4f hits=%d title=%q",
			result.Citation, result.ID, result.MinDistance, result.HitCount, result.Title)
	}

	return results, nil
}
