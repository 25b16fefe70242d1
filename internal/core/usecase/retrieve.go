package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mkravets/docsqa/internal/core/domain"
	"github.com/mkravets/docsqa/internal/core/ports"
)

const (
	defaultTopK      = 8
	defaultRerankTop = 6
)

type RetrievalConfig struct {
	// TopK bounds per-source retrieval breadth before fusion. Zero means 8.
	TopK int
	// RerankTopN is the final context count. Zero means 6. It is independent
	// of TopK: k widens the candidate pool, not the answer context.
	RerankTopN int
}

func (c RetrievalConfig) normalize() RetrievalConfig {
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	if c.RerankTopN <= 0 {
		c.RerankTopN = defaultRerankTop
	}
	return c
}

// RetrieveUseCase is the hybrid retrieval pipeline: concurrent vector and
// BM25 searches, set-based fusion, then one batched cross-encoder pass.
type RetrieveUseCase struct {
	embedder ports.QueryEmbedder
	vectorDB ports.VectorSearcher
	index    ports.LexicalSearcher
	reranker ports.RerankModel
	cfg      RetrievalConfig
}

func NewRetrieveUseCase(
	embedder ports.QueryEmbedder,
	vectorDB ports.VectorSearcher,
	index ports.LexicalSearcher,
	reranker ports.RerankModel,
	cfg RetrievalConfig,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		vectorDB: vectorDB,
		index:    index,
		reranker: reranker,
		cfg:      cfg.normalize(),
	}
}

func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string, k int) (*domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve", errors.New("query is empty"))
	}
	if k <= 0 {
		k = uc.cfg.TopK
	}

	var (
		vectorHits  []domain.Candidate
		lexicalHits []domain.Candidate
	)

	// The two searches have no data dependency; run them side by side and
	// join before fusion. The vector branch is the only one that can fail.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		queryVector, err := uc.embedder.EmbedQuery(gctx, query)
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		hits, err := uc.vectorDB.Search(gctx, queryVector, k)
		if err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
		vectorHits = hits
		return nil
	})
	g.Go(func() error {
		// Whitespace split, matching how the BM25 corpus was tokenized.
		lexicalHits = uc.index.Search(strings.Fields(query), k)
		return nil
	})
	vectorErr := g.Wait()

	degraded := false
	if vectorErr != nil {
		if len(lexicalHits) == 0 {
			return nil, domain.WrapError(domain.ErrBackendUnavailable, "hybrid retrieve", vectorErr)
		}
		// Lexical candidates alone still make a usable answer.
		slog.Warn("vector_search_degraded", "error", vectorErr)
		degraded = true
		vectorHits = nil
	}

	fused := fuseCandidates(vectorHits, lexicalHits, k)
	if len(fused) == 0 {
		return &domain.RetrievalResult{
			Contexts: []domain.RankedContext{},
			Sources:  []string{},
			Degraded: degraded,
		}, nil
	}

	contexts, rerankFallback := uc.rerankCandidates(ctx, query, fused)

	return &domain.RetrievalResult{
		Contexts:       contexts,
		Sources:        collectSources(contexts),
		Degraded:       degraded,
		RerankFallback: rerankFallback,
	}, nil
}

// rerankCandidates scores all (query, text) pairs in one batched model call
// and keeps the top N. A failed model call degrades to the fused set ordered
// by original source score rather than failing the request.
func (uc *RetrieveUseCase) rerankCandidates(ctx context.Context, query string, fused []domain.Candidate) ([]domain.RankedContext, bool) {
	topN := uc.cfg.RerankTopN

	texts := make([]string, len(fused))
	for i, cand := range fused {
		texts[i] = cand.Text
	}

	scores, err := uc.reranker.Score(ctx, query, texts)
	if err == nil && len(scores) != len(fused) {
		err = domain.WrapError(domain.ErrRerankUnavailable, "rerank",
			fmt.Errorf("got %d scores for %d candidates", len(scores), len(fused)))
	}
	if err != nil {
		slog.Warn("rerank_fallback", "error", err, "candidates", len(fused))
		return fallbackBySourceScore(fused, topN), true
	}

	ranked := make([]domain.RankedContext, len(fused))
	for i, cand := range fused {
		ranked[i] = domain.RankedContext{Candidate: cand, RerankScore: scores[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].RerankScore > ranked[b].RerankScore
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, false
}

func fallbackBySourceScore(fused []domain.Candidate, topN int) []domain.RankedContext {
	ranked := make([]domain.RankedContext, len(fused))
	for i, cand := range fused {
		ranked[i] = domain.RankedContext{Candidate: cand}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// collectSources keeps the first occurrence of every distinct non-empty URL,
// in context order, for citations.
func collectSources(contexts []domain.RankedContext) []string {
	seen := make(map[string]struct{}, len(contexts))
	out := make([]string, 0, len(contexts))
	for _, c := range contexts {
		if c.URL == "" {
			continue
		}
		if _, dup := seen[c.URL]; dup {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c.URL)
	}
	return out
}
