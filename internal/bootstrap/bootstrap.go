package bootstrap

import (
	"fmt"

	"github.com/mkravets/docsqa/internal/config"
	"github.com/mkravets/docsqa/internal/core/ports"
	"github.com/mkravets/docsqa/internal/core/usecase"
	"github.com/mkravets/docsqa/internal/infrastructure/lexical"
	"github.com/mkravets/docsqa/internal/infrastructure/llm/ollama"
	"github.com/mkravets/docsqa/internal/infrastructure/rerank/tei"
	"github.com/mkravets/docsqa/internal/infrastructure/resilience"
	"github.com/mkravets/docsqa/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	RetrieveUC ports.ContextRetriever
}

// New wires the retrieval pipeline. The lexical index is loaded eagerly: a
// missing or empty corpus snapshot is a startup failure, not something to
// discover on the first request.
func New(cfg config.Config) (*App, error) {
	chunks, err := lexical.LoadCorpus(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus snapshot: %w", err)
	}
	index, err := lexical.NewIndex(chunks)
	if err != nil {
		return nil, fmt.Errorf("build lexical index: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	embedder := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, executor)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection, cfg.VectorScoreThreshold)
	reranker := tei.New(cfg.RerankerURL, executor)

	retrieveUC := usecase.NewRetrieveUseCase(embedder, vectorDB, index, reranker, usecase.RetrievalConfig{
		TopK:       cfg.RetrieveTopK,
		RerankTopN: cfg.RerankTopN,
	})

	return &App{
		Config:     cfg,
		RetrieveUC: retrieveUC,
	}, nil
}
