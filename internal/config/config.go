package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	CorpusPath string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	OllamaURL        string
	OllamaEmbedModel string

	RerankerURL string

	RetrieveTopK         int
	RerankTopN           int
	VectorScoreThreshold float64

	APIRateLimitRPS   int
	APIRateLimitBurst int
	APIMaxInFlight    int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		CorpusPath: mustEnv("CORPUS_PATH", "./data/index/bm25_corpus.jsonl"),

		QdrantURL:        mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     mustEnv("QDRANT_API_KEY", ""),
		QdrantCollection: mustEnv("QDRANT_COLLECTION", "docs"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "all-minilm"),

		RerankerURL: mustEnv("RERANKER_URL", "http://localhost:8081"),

		RetrieveTopK:         mustEnvInt("RETRIEVE_TOP_K", 8),
		RerankTopN:           mustEnvInt("RERANK_TOP_N", 6),
		VectorScoreThreshold: mustEnvFloat("VECTOR_SCORE_THRESHOLD", 0.15),

		APIRateLimitRPS:   mustEnvInt("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 64),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
