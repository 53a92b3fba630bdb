package batch_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/batch"
	"github.com/reddygtvs/Archived-News-RAG/evaluation"
	"github.com/reddygtvs/Archived-News-RAG/rag"
	"github.com/reddygtvs/Archived-News-RAG/retrieval"
)

type stubPipeline struct {
	queries []string
}

func (s *stubPipeline) GenerateStandard(ctx context.Context, query string) (string, time.Duration) {
	return "Standard answer with five words", 100 * time.Millisecond
}

func (s *stubPipeline) GenerateRAG(ctx context.Context, query string) rag.RAGResult {
	s.queries = append(s.queries, query)
	return rag.RAGResult{
		Answer: "Grounded answer [1] citing [2] twice",
		Sources: []retrieval.Summary{
			{ArticleID: "world/a", Title: "Title A", MinDistance: 0.2},
			{ArticleID: "politics/b", Title: "Title B", MinDistance: 0.5},
		},
		RetrievalDuration:  200 * time.Millisecond,
		GenerationDuration: 1 * time.Second,
		ContextChars:       4321,
	}
}

func (s *stubPipeline) EvaluateResponses(ctx context.Context, query, standard, ragAnswer string) (evaluation.Outcome, time.Duration) {
	return evaluation.Outcome{Error: "evaluator offline"}, 50 * time.Millisecond
}

var _ batch.Pipeline = (*stubPipeline)(nil)

func writeQueries(t *testing.T, dir string, payload string) string {
	t.Helper()
	path := filepath.Join(dir, "test_queries.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func readRecords(t *testing.T, path string) []batch.Record {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []batch.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record batch.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestRunnerWritesOneRecordPerQuery(t *testing.T) {
	dir := t.TempDir()
	queriesPath := writeQueries(t, dir, `[
		{"id": "q1", "query": "What happened to Greece in 2015?"},
		{"id": "q2", "query": "Who won the 2015 UK election?"}
	]`)
	resultsPath := filepath.Join(dir, "results", "evaluation.jsonl")

	pipeline := &stubPipeline{}
	runner := batch.NewRunner(pipeline, time.Millisecond, log.New(io.Discard, "", 0))

	require.NoError(t, runner.Run(context.Background(), queriesPath, resultsPath))

	records := readRecords(t, resultsPath)
	require.Len(t, records, 2)
	require.Equal(t, []string{"What happened to Greece in 2015?", "Who won the 2015 UK election?"}, pipeline.queries)

	first := records[0]
	require.Equal(t, "q1", first.QueryID)
	require.Equal(t, "What happened to Greece in 2015?", first.QueryText)
	require.Equal(t, 5, first.StandardWordCount)
	require.Equal(t, 6, first.RAGWordCount)
	require.Equal(t, 2, first.RAGCitationCount)
	require.Equal(t, 2, first.RetrievedArticleCount)
	require.Equal(t, []float64{0.2, 0.5}, first.MinDistances)
	require.Equal(t, 4321, first.ContextChars)
	require.InDelta(t, 1.2, first.RAGTotalSeconds, 0.001)
}

func TestRunnerSkipsBlankQueries(t *testing.T) {
	dir := t.TempDir()
	queriesPath := writeQueries(t, dir, `[
		{"id": "q1", "query": "   "},
		{"query": "A real question about 2015"}
	]`)
	resultsPath := filepath.Join(dir, "results.jsonl")

	runner := batch.NewRunner(&stubPipeline{}, time.Millisecond, log.New(io.Discard, "", 0))

	require.NoError(t, runner.Run(context.Background(), queriesPath, resultsPath))

	records := readRecords(t, resultsPath)
	require.Len(t, records, 1)
	// Entries without ids are assigned positional ones.
	require.Equal(t, "query_2", records[0].QueryID)
}

func TestRunnerFailsOnMissingQueryFile(t *testing.T) {
	runner := batch.NewRunner(&stubPipeline{}, time.Millisecond, log.New(io.Discard, "", 0))

	err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "nope.json"), filepath.Join(t.TempDir(), "out.jsonl"))
	require.Error(t, err)
}

func TestRunnerFailsOnMalformedQueryFile(t *testing.T) {
	dir := t.TempDir()
	queriesPath := writeQueries(t, dir, `{"not": "a list"}`)

	runner := batch.NewRunner(&stubPipeline{}, time.Millisecond, log.New(io.Discard, "", 0))

	err := runner.Run(context.Background(), queriesPath, filepath.Join(dir, "out.jsonl"))
	require.Error(t, err)
}
