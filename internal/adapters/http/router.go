package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/docsqa/internal/core/domain"
	"github.com/mkravets/docsqa/internal/core/ports"
	"github.com/mkravets/docsqa/internal/observability/metrics"
)

const serviceName = "docsqa-api"

type TrafficControl struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	retriever ports.ContextRetriever
	metrics   *metrics.HTTPServerMetrics
	traffic   TrafficControl
}

func NewRouter(retriever ports.ContextRetriever, m *metrics.HTTPServerMetrics, traffic TrafficControl) *Router {
	return &Router{
		retriever: retriever,
		metrics:   m,
		traffic:   traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/retrieve", rt.retrieve)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, time.Second)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
		K     int    `json:"k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	result, err := rt.retriever.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		rt.recordRetrieval(metrics.RetrievalFailed, 0, time.Since(start))
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.recordRetrieval(retrievalStatus(result), len(result.Contexts), time.Since(start))
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordRetrieval(status metrics.RetrievalStatus, contexts int, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordRetrieval(serviceName, status, contexts, duration)
}

func retrievalStatus(result *domain.RetrievalResult) metrics.RetrievalStatus {
	switch {
	case result.Degraded:
		return metrics.RetrievalDegraded
	case result.RerankFallback:
		return metrics.RetrievalRerankFallback
	default:
		return metrics.RetrievalOK
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
