package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkravets/docsqa/internal/core/domain"
)

type retrieverFake struct {
	result *domain.RetrievalResult
	err    error
	query  string
	k      int
}

func (f *retrieverFake) Retrieve(_ context.Context, query string, k int) (*domain.RetrievalResult, error) {
	f.query = query
	f.k = k
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestHandler(fake *retrieverFake) http.Handler {
	return NewRouter(fake, nil, TrafficControl{}).Handler()
}

func TestRetrieveEndpointReturnsContexts(t *testing.T) {
	fake := &retrieverFake{result: &domain.RetrievalResult{
		Contexts: []domain.RankedContext{
			{
				Candidate: domain.Candidate{
					Chunk:  domain.Chunk{Text: "refund policy", URL: "https://docs.example.com/refunds", Title: "Refunds"},
					Score:  0.8,
					Source: domain.SourceVector,
				},
				RerankScore: 7.5,
			},
		},
		Sources: []string{"https://docs.example.com/refunds"},
	}}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"query":"how do I get a refund","k":4}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if fake.query != "how do I get a refund" || fake.k != 4 {
		t.Fatalf("unexpected retriever call: query=%q k=%d", fake.query, fake.k)
	}

	var body struct {
		Contexts []map[string]any `json:"contexts"`
		Sources  []string         `json:"sources"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Contexts) != 1 || len(body.Sources) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Contexts[0]["rerank_score"] != 7.5 || body.Contexts[0]["source"] != "vector" {
		t.Fatalf("unexpected context payload: %+v", body.Contexts[0])
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRetrieveEndpointRequiresQuery(t *testing.T) {
	handler := newTestHandler(&retrieverFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"query":"  "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestRetrieveEndpointRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(&retrieverFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestRetrieveEndpointRejectsGet(t *testing.T) {
	handler := newTestHandler(&retrieverFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/retrieve", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestRetrieveEndpointMapsBackendFailure(t *testing.T) {
	fake := &retrieverFake{err: domain.WrapError(domain.ErrBackendUnavailable, "hybrid retrieve", errors.New("qdrant down"))}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"query":"refund"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestRetrieveEndpointEmptyResultIsOK(t *testing.T) {
	fake := &retrieverFake{result: &domain.RetrievalResult{
		Contexts: []domain.RankedContext{},
		Sources:  []string{},
	}}
	handler := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"query":"nothing matches this"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty result, got %d", res.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if contexts, ok := body["contexts"].([]any); !ok || len(contexts) != 0 {
		t.Fatalf("expected empty contexts array, got %v", body["contexts"])
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&retrieverFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}
