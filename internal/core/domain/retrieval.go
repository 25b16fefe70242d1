package domain

// CandidateSource tags which retrieval strategy produced a candidate.
type CandidateSource string

const (
	SourceVector  CandidateSource = "vector"
	SourceLexical CandidateSource = "lexical"
)

// Chunk is one indexed unit of crawled documentation text. URL, Title and
// SourcePath are optional; the empty string means the indexer did not supply
// them.
type Chunk struct {
	Text       string `json:"text"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	SourcePath string `json:"source_path,omitempty"`
	ChunkID    int    `json:"chunk_id,omitempty"`
}

// Candidate is a chunk with its retrieval-time score. Scores stay on the
// source's own scale (cosine similarity for vector hits, BM25 for lexical
// hits) and are never normalized across sources.
type Candidate struct {
	Chunk
	Score  float64         `json:"score"`
	Source CandidateSource `json:"source"`
}

// RankedContext is a candidate after the cross-encoder pass. Output order is
// significant: consumers cite sources in this order.
type RankedContext struct {
	Candidate
	RerankScore float64 `json:"rerank_score"`
}

// RetrievalResult is the engine's response to one query: the ranked contexts
// plus the deduplicated, ordered list of their distinct non-empty URLs.
type RetrievalResult struct {
	Contexts []RankedContext `json:"contexts"`
	Sources  []string        `json:"sources"`

	// Degraded is set when the vector backend failed and the result was
	// served from lexical candidates alone. RerankFallback is set when the
	// cross-encoder call failed and contexts are ordered by source score.
	Degraded       bool `json:"degraded,omitempty"`
	RerankFallback bool `json:"rerank_fallback,omitempty"`
}
