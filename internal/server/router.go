package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rodeoai/ingest/internal/handlers"
	"github.com/rodeoai/ingest/internal/middleware"
)

// NewRouter constructs a ServeMux with the gateway API routes
// registered. The API key gate covers the ingestion and review routes;
// health and metrics stay open.
func NewRouter(h *handlers.IngestHandler, apiKey string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/v1/ingest", h.HandleIngest)
	api.HandleFunc("/api/v1/ingest/batch", h.HandleBatch)
	api.HandleFunc("/api/v1/review", h.HandleReviewList)
	api.HandleFunc("/api/v1/stats", h.HandleStats)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", middleware.APIKey(apiKey, api))

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
