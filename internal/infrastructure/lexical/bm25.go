package lexical

import (
	"errors"
	"math"
	"sort"

	"github.com/mkravets/docsqa/internal/core/domain"
)

// Okapi BM25 constants, matching the index the snapshot was built against.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Index is an in-memory BM25 index over the corpus snapshot. It is built once
// at startup and never mutated, so Search needs no synchronization.
type Index struct {
	chunks    []domain.Chunk
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgDocLen float64
}

// NewIndex tokenizes every chunk by whitespace (no stemming, no stopwords)
// and precomputes term and document frequencies.
func NewIndex(chunks []domain.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "build bm25 index", errors.New("empty corpus"))
	}

	idx := &Index{
		chunks:    chunks,
		termFreqs: make([]map[string]int, len(chunks)),
		docLens:   make([]int, len(chunks)),
		docFreq:   make(map[string]int, len(chunks)*8),
	}

	totalLen := 0
	for i, chunk := range chunks {
		tokens := Tokenize(chunk.Text)
		tf := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		for term := range tf {
			idx.docFreq[term]++
		}
		idx.termFreqs[i] = tf
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}
	idx.avgDocLen = float64(totalLen) / float64(len(chunks))

	return idx, nil
}

// Len reports the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Search scores every document against the query tokens and returns the top
// limit candidates by descending BM25 score. Ties keep corpus insertion
// order. An empty token list scores everything zero; the head of the corpus
// is returned rather than an error.
func (idx *Index) Search(queryTokens []string, limit int) []domain.Candidate {
	if limit <= 0 {
		return nil
	}

	scores := make([]float64, len(idx.chunks))
	for _, term := range queryTokens {
		df, ok := idx.docFreq[term]
		if !ok {
			continue
		}
		idf := idx.inverseDocFreq(df)
		for i := range idx.chunks {
			tf := idx.termFreqs[i][term]
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(idx.docLens[i])/idx.avgDocLen
			scores[i] += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	out := make([]domain.Candidate, 0, limit)
	for _, i := range order[:limit] {
		out = append(out, domain.Candidate{
			Chunk:  idx.chunks[i],
			Score:  scores[i],
			Source: domain.SourceLexical,
		})
	}
	return out
}

func (idx *Index) inverseDocFreq(df int) float64 {
	n := float64(len(idx.chunks))
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
}
