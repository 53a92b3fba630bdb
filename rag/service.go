package rag

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"github.com/reddygtvs/Archived-News-RAG/config"
	"github.com/reddygtvs/Archived-News-RAG/embeddings"
	"github.com/reddygtvs/Archived-News-RAG/evaluation"
	"github.com/reddygtvs/Archived-News-RAG/llm"
	"github.com/reddygtvs/Archived-News-RAG/retrieval"
	"github.com/reddygtvs/Archived-News-RAG/store"
)

// Service drives the query pipeline: embed, search, aggregate, assemble
// context, generate, and optionally evaluate. It holds only shared
// read-only state and is safe for concurrent requests.
type Service struct {
	engine    *retrieval.Engine
	embedder  embeddings.Embedder
	model     llm.Client
	evaluator *evaluation.Evaluator

	generatorModel  string
	articleCount    int
	fanout          int
	maxArticleChars int

	logger *log.Logger
}

func NewService(stores *store.Stores, embedder embeddings.Embedder, model llm.Client, cfg config.Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	articleCount := cfg.Retrieval.ArticleCount
	if articleCount <= 0 {
		articleCount = 7
	}
	multiplier := cfg.Retrieval.Multiplier
	if multiplier < 2 {
		multiplier = 2
	}

	return &Service{
		engine:          retrieval.NewEngine(stores.Index, stores.Metadata, stores.Articles, logger),
		embedder:        embedder,
		model:           model,
		evaluator:       evaluation.NewEvaluator(model, cfg.LLM.EvaluatorModel, logger),
		generatorModel:  cfg.LLM.GeneratorModel,
		articleCount:    articleCount,
		fanout:          articleCount * multiplier,
		maxArticleChars: cfg.Retrieval.MaxArticleChars,
		logger:          logger,
	}
}

// RetrieveRelevantArticles embeds the query and ranks matching articles.
// Retrieval failures degrade to an empty result; the duration always
// reflects the full retrieval phase so callers can attribute cost.
func (s *Service) RetrieveRelevantArticles(ctx context.Context, query string) ([]retrieval.ScoredArticle, time.Duration) {
	start := time.Now()

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		s.logger.Printf("embed query failed: %v", err)
		return nil, time.Since(start)
	}
	if len(vectors) == 0 {
		s.logger.Printf("embedder returned no vectors for query %q", truncate(query, 100))
		return nil, time.Since(start)
	}

	articles, err := s.engine.RankArticles(ctx, vectors[0], s.fanout, s.articleCount)
	if err != nil {
		s.logger.Printf("rank articles failed: %v", err)
		return nil, time.Since(start)
	}

	duration := time.Since(start)
	s.logger.Printf("retrieval returned %d articles in %.4fs", len(articles), duration.Seconds())
	return articles, duration
}

// EvaluateResponses asks the evaluator model to compare a standard and a
// grounded answer. The outcome is either a complete evaluation or an
// explicit error marker; it is never a partial score map.
func (s *Service) EvaluateResponses(ctx context.Context, query, standard, ragAnswer string) (evaluation.Outcome, time.Duration) {
	return s.evaluator.Evaluate(ctx, query, standard, ragAnswer)
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max] + "..."
}
