package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/reddygtvs/Archived-News-RAG/evaluation"
	"github.com/reddygtvs/Archived-News-RAG/rag"
)

// Pipeline is the slice of the query service the runner drives.
type Pipeline interface {
	GenerateStandard(ctx context.Context, query string) (string, time.Duration)
	GenerateRAG(ctx context.Context, query string) rag.RAGResult
	EvaluateResponses(ctx context.Context, query, standard, ragAnswer string) (evaluation.Outcome, time.Duration)
}

// Query is one entry of the test query file.
type Query struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// SourceSummary is the compact retrieval snapshot stored per result line.
type SourceSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	MinDistance float64 `json:"dist"`
}

// Record is one line of the JSONL results file.
type Record struct {
	QueryID   string `json:"query_id"`
	QueryText string `json:"query_text"`
	Timestamp string `json:"timestamp"`

	StandardResponse  string  `json:"standard_response"`
	StandardWordCount int     `json:"standard_response_wc"`
	StandardSeconds   float64 `json:"standard_llm_duration"`

	RAGResponse           string          `json:"rag_response"`
	RAGWordCount          int             `json:"rag_response_wc"`
	RAGCitationCount      int             `json:"rag_citation_count"`
	RetrievedArticleCount int             `json:"rag_retrieved_articles_count"`
	RetrievedSummaries    []SourceSummary `json:"rag_retrieved_context_summary"`
	MinDistances          []float64       `json:"rag_min_distances"`
	RetrievalSeconds      float64         `json:"rag_retrieval_duration"`
	GenerationSeconds     float64         `json:"rag_llm_duration"`
	ContextChars          int             `json:"rag_context_length_chars"`
	RAGTotalSeconds       float64         `json:"rag_total_duration"`

	Evaluation        evaluation.Outcome `json:"llm_evaluation"`
	EvaluationSeconds float64            `json:"llm_evaluation_duration"`

	TotalSeconds float64 `json:"query_eval_duration_total"`
}

// citationPattern matches the numbered inline citations ([1], [2], ...)
// the grounded prompt asks for.
var citationPattern = regexp.MustCompile(`\[\d+\]`)

// Runner executes a batch evaluation: for every test query it produces a
// standard answer, a grounded answer, and an LLM evaluation, then appends a
// result record to a JSONL file. Queries are paced with a rate limiter to
// respect upstream quotas on the expensive evaluator model.
type Runner struct {
	pipeline Pipeline
	limiter  *rate.Limiter
	logger   *log.Logger
}

func NewRunner(pipeline Pipeline, pace time.Duration, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if pace <= 0 {
		pace = 5 * time.Second
	}

	return &Runner{
		pipeline: pipeline,
		limiter:  rate.NewLimiter(rate.Every(pace), 1),
		logger:   logger,
	}
}

func (r *Runner) Run(ctx context.Context, queriesPath, resultsPath string) error {
	queries, err := loadQueries(queriesPath)
	if err != nil {
		return err
	}
	r.logger.Printf("loaded %d test queries from %s", len(queries), queriesPath)

	if err := os.MkdirAll(filepath.Dir(resultsPath), 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}
	out, err := os.Create(resultsPath)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	enc := json.NewEncoder(writer)
	runStart := time.Now()

	for i, query := range queries {
		if strings.TrimSpace(query.Query) == "" {
			r.logger.Printf("skipping query %d: missing query text", i+1)
			continue
		}
		if query.ID == "" {
			query.ID = fmt.Sprintf("query_%d", i+1)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		r.logger.Printf("processing query %d/%d [%s]", i+1, len(queries), query.ID)
		record := r.runQuery(ctx, query)

		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("write result for %s: %w", query.ID, err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("flush results: %w", err)
		}
	}

	r.logger.Printf("evaluation complete: %d queries in %.2fs", len(queries), time.Since(runStart).Seconds())
	return nil
}

func (r *Runner) runQuery(ctx context.Context, query Query) Record {
	start := time.Now()

	standard, standardDuration := r.pipeline.GenerateStandard(ctx, query.Query)
	ragResult := r.pipeline.GenerateRAG(ctx, query.Query)
	outcome, evalDuration := r.pipeline.EvaluateResponses(ctx, query.Query, standard, ragResult.Answer)

	summaries := make([]SourceSummary, 0, len(ragResult.Sources))
	distances := make([]float64, 0, len(ragResult.Sources))
	for _, source := range ragResult.Sources {
		summaries = append(summaries, SourceSummary{
			ID:          source.ArticleID,
			Title:       source.Title,
			MinDistance: source.MinDistance,
		})
		distances = append(distances, source.MinDistance)
	}

	return Record{
		QueryID:   query.ID,
		QueryText: query.Query,
		Timestamp: time.Now().UTC().Format(time.RFC3339),

		StandardResponse:  standard,
		StandardWordCount: wordCount(standard),
		StandardSeconds:   standardDuration.Seconds(),

		RAGResponse:           ragResult.Answer,
		RAGWordCount:          wordCount(ragResult.Answer),
		RAGCitationCount:      len(citationPattern.FindAllString(ragResult.Answer, -1)),
		RetrievedArticleCount: len(ragResult.Sources),
		RetrievedSummaries:    summaries,
		MinDistances:          distances,
		RetrievalSeconds:      ragResult.RetrievalDuration.Seconds(),
		GenerationSeconds:     ragResult.GenerationDuration.Seconds(),
		ContextChars:          ragResult.ContextChars,
		RAGTotalSeconds:       (ragResult.RetrievalDuration + ragResult.GenerationDuration).Seconds(),

		Evaluation:        outcome,
		EvaluationSeconds: evalDuration.Seconds(),

		TotalSeconds: time.Since(start).Seconds(),
	}
}

func loadQueries(path string) ([]Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test queries: %w", err)
	}

	var queries []Query
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("decode test queries: %w", err)
	}
	return queries, nil
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
