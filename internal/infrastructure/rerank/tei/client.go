package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/docsqa/internal/core/domain"
	"github.com/mkravets/docsqa/internal/infrastructure/resilience"
)

// Client scores (query, text) pairs against a cross-encoder served behind
// the text-embeddings-inference /rerank API. All pairs of one request go in
// a single batch; the model call dominates retrieval latency, so one round
// trip per request is the throughput knob that matters.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

// Score returns one relevance score per text, index-aligned with texts.
func (c *Client) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var scores []float64
	call := func(callCtx context.Context) error {
		ranked, err := c.rerank(callCtx, query, texts)
		if err != nil {
			return err
		}
		scores = ranked
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "rerank.score", call, classifyRerankError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrRerankUnavailable, "rerank score", err)
	}
	return scores, nil
}

func (c *Client) rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	reqBody := map[string]any{
		"query":      query,
		"texts":      texts,
		"raw_scores": true,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	var ranked []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ranked); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(ranked) != len(texts) {
		return nil, fmt.Errorf("rerank: got %d scores for %d texts", len(ranked), len(texts))
	}

	// The server returns pairs sorted by score; restore input order by index.
	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("rerank: index %d out of range for %d texts", r.Index, len(texts))
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("rerank: duplicate index %d in response", r.Index)
		}
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			return nil, fmt.Errorf("rerank: non-finite score for index %d", r.Index)
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	return scores, nil
}
