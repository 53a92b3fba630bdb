package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type LLMConfig struct {
	Provider       string
	GeneratorModel string
	EvaluatorModel string
}

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type GuardianConfig struct {
	APIURL        string
	APIKey        string
	FromDate      string
	ToDate        string
	PageSize      int
	ArticleTarget int
}

type RetrievalConfig struct {
	// ArticleCount is the number of full articles handed to the generator;
	// the chunk fanout is ArticleCount * Multiplier because several chunks
	// commonly collapse onto one article.
	ArticleCount    int
	Multiplier      int
	MaxArticleChars int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	MinBodyChars int
}

type Config struct {
	PostgresDSN string

	LLM        LLMConfig
	Embeddings EmbeddingsConfig
	Guardian   GuardianConfig
	Retrieval  RetrievalConfig
	Ingest     IngestConfig

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	APIAddr     string
	RawDataPath string
	QueriesPath string
	ResultsPath string
}

func Load() Config {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	return Config{
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/news-rag?sslmode=disable"),
		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", ProviderOpenAI),
			GeneratorModel: getEnv("GENERATOR_MODEL", "gpt-4o-mini"),
			EvaluatorModel: getEnv("EVALUATOR_MODEL", "gpt-4o"),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 1536),
		},
		Guardian: GuardianConfig{
			APIURL:        getEnv("GUARDIAN_API_URL", "https://content.guardianapis.com/search"),
			APIKey:        getEnv("GUARDIAN_API_KEY", ""),
			FromDate:      getEnv("GUARDIAN_FROM_DATE", "2015-01-01"),
			ToDate:        getEnv("GUARDIAN_TO_DATE", "2015-12-31"),
			PageSize:      getEnvInt("GUARDIAN_PAGE_SIZE", 50),
			ArticleTarget: getEnvInt("GUARDIAN_TOTAL_ARTICLES_TO_FETCH", 200),
		},
		Retrieval: RetrievalConfig{
			ArticleCount:    getEnvInt("RETRIEVAL_ARTICLE_COUNT", 7),
			Multiplier:      getEnvInt("RETRIEVAL_MULTIPLIER", 2),
			MaxArticleChars: getEnvInt("RETRIEVAL_MAX_ARTICLE_CHARS", 50000),
		},
		Ingest: IngestConfig{
			ChunkSize:    getEnvInt("CHUNK_SIZE", 512),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 64),
			MinBodyChars: getEnvInt("MIN_BODY_CHARS", 500),
		},
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		APIAddr:       getEnv("API_ADDR", "127.0.0.1:5001"),
		RawDataPath:   getEnv("RAW_DATA_PATH", "data/guardian_articles.jsonl"),
		QueriesPath:   getEnv("TEST_QUERIES_PATH", "test_queries.json"),
		ResultsPath:   getEnv("RESULTS_PATH", "data/evaluation_results.jsonl"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
