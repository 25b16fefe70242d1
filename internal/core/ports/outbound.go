package ports

import (
	"context"

	"github.com/mkravets/docsqa/internal/core/domain"
)

// QueryEmbedder maps a query string to a fixed-dimension vector matching the
// vector store's configured dimension.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher issues a k-nearest-neighbor query against the external
// vector store. Hits below the store-side similarity floor never appear in
// the result.
type VectorSearcher interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.Candidate, error)
}

// LexicalSearcher scores the in-memory corpus against query tokens. It is a
// pure computation over immutable state: no context, no error, safe for
// concurrent use after load.
type LexicalSearcher interface {
	Search(queryTokens []string, limit int) []domain.Candidate
}

// RerankModel scores a batch of (query, text) pairs jointly. The returned
// slice is index-aligned with texts, and every score is a finite number.
type RerankModel interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}
