package ports

import (
	"context"

	"github.com/mkravets/docsqa/internal/core/domain"
)

// ContextRetriever is the inbound contract for hybrid retrieval: one call per
// incoming query, returning reranked contexts and their citation URLs.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) (*domain.RetrievalResult, error)
}
