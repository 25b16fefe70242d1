package qdrant

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
)

// Client queries a fixed Qdrant collection over its HTTP API. The collection
// is provisioned by the indexing pipeline; this client only reads it.
type Client struct {
	baseURL        string
	apiKey         string
	collection     string
	scoreThreshold float64
	httpClient     *http.Client
}

type Options struct {
	// Timeout bounds a single search round trip. Zero means 15s.
	Timeout time.Duration
}

func New(baseURL, apiKey, collection string, scoreThreshold float64) *Client {
	return NewWithOptions(baseURL, apiKey, collection, scoreThreshold, Options{})
}

func NewWithOptions(baseURL, apiKey, collection string, scoreThreshold float64, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		collection:     collection,
		scoreThreshold: scoreThreshold,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// Search returns up to limit nearest neighbors under cosine similarity.
// The score_threshold is enforced store-side, so hits below the floor never
// reach this process. A hit without a text payload still comes back with an
// empty string; filtering it is the fusion layer's call, not the client's.
func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.Candidate, error) {
	reqBody := map[string]any{
		"vector":          queryVector,
		"limit":           limit,
		"with_payload":    true,
		"score_threshold": c.scoreThreshold,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, searchStatusError(resp)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.Candidate, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			return nil, fmt.Errorf("qdrant search: non-finite score in response")
		}
		out = append(out, domain.Candidate{
			Chunk: domain.Chunk{
				Text:  payloadString(r.Payload, "text"),
				URL:   payloadString(r.Payload, "url"),
				Title: payloadString(r.Payload, "title"),
			},
			Score:  r.Score,
			Source: domain.SourceVector,
		})
	}
	return out, nil
}

func searchStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("qdrant search status: %s: %s", resp.Status, msg)
	}
	return fmt.Errorf("qdrant search status: %s", resp.Status)
}

// payloadString tolerates absent and null payload values: both read as "".
func payloadString(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
