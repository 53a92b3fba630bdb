package embeddings_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/config"
	"github.com/reddygtvs/Archived-News-RAG/embeddings"
)

func TestNewEmbedderOpenAIRequiresKey(t *testing.T) {
	cfg := config.Config{}
	cfg.Embeddings.Provider = config.ProviderOpenAI

	_, err := embeddings.NewEmbedder(cfg)
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	cfg := config.Config{}
	cfg.Embeddings.Provider = "word2vec"

	_, err := embeddings.NewEmbedder(cfg)
	require.ErrorContains(t, err, "unknown embedding provider")
}

func TestNewEmbedderOllama(t *testing.T) {
	cfg := config.Config{OllamaHost: "http://localhost:11434"}
	cfg.Embeddings.Provider = config.ProviderOllama

	embedder, err := embeddings.NewEmbedder(cfg)
	require.NoError(t, err)
	require.NotNil(t, embedder)
}

func TestOpenAIEmbedderReturnsVectorsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode embeddings request: %v", err)
			return
		}

		type datum struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			data[i] = datum{Object: "embedding", Embedding: []float32{float32(i), float32(i)}, Index: i}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}))
	defer server.Close()

	embedder := embeddings.NewOpenAIEmbedder(embeddings.Options{
		Provider:      config.ProviderOpenAI,
		Model:         "text-embedding-3-small",
		Dimension:     2,
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: server.URL,
	})

	vectors, err := embedder.Embed(context.Background(), []string{"first chunk", "second chunk"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0, 0}, {1, 1}}, vectors)
}

func TestOpenAIEmbedderRejectsDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "data": [{"object": "embedding", "embedding": [0.1, 0.2, 0.3], "index": 0}]}`)
	}))
	defer server.Close()

	embedder := embeddings.NewOpenAIEmbedder(embeddings.Options{
		Model:         "text-embedding-3-small",
		Dimension:     1536,
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: server.URL,
	})

	_, err := embedder.Embed(context.Background(), []string{"chunk"})
	require.ErrorContains(t, err, "dimension")
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	embedder := embeddings.NewOpenAIEmbedder(embeddings.Options{OpenAIAPIKey: "sk-test"})

	vectors, err := embedder.Embed(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, vectors)
}

func TestOllamaEmbedderEmbedsSequentially(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode embeddings request: %v", err)
			return
		}
		prompts = append(prompts, req.Prompt)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"embedding": [0.5, %d]}`, len(prompts))
	}))
	defer server.Close()

	embedder := embeddings.NewOllamaEmbedder(embeddings.Options{
		Model:      "nomic-embed-text",
		Dimension:  2,
		OllamaHost: server.URL,
	})

	vectors, err := embedder.Embed(context.Background(), []string{"chunk one", "chunk two"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0.5, 1}, {0.5, 2}}, vectors)
	require.Equal(t, []string{"chunk one", "chunk two"}, prompts)
}

func TestOllamaEmbedderSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	embedder := embeddings.NewOllamaEmbedder(embeddings.Options{
		Model:      "missing-model",
		OllamaHost: server.URL,
	})

	_, err := embedder.Embed(context.Background(), []string{"chunk"})
	require.ErrorContains(t, err, "404")
}

func TestOllamaEmbedderSurfacesBodyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error": "context window exceeded"}`)
	}))
	defer server.Close()

	embedder := embeddings.NewOllamaEmbedder(embeddings.Options{
		Model:      "nomic-embed-text",
		OllamaHost: server.URL,
	})

	_, err := embedder.Embed(context.Background(), []string{"chunk"})
	require.ErrorContains(t, err, "context window exceeded")
}
