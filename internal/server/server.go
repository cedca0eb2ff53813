// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/common/observability"
	"well-query-engine/internal/engine"
)

// Server is the thin HTTP surface in front of the engine. The real
// conversational transport is an external collaborator; this handler is the
// shape it talks to.
type Server struct {
	engine         *engine.QueryEngine
	logger         logger.Logger
	obs            *observability.Observability
	requestTimeout time.Duration
}

func New(qe *engine.QueryEngine, requestTimeout time.Duration, obs *observability.Observability, log logger.Logger) *Server {
	return &Server{
		engine:         qe,
		logger:         log.WithFields(map[string]interface{}{"component": "server"}),
		obs:            obs,
		requestTimeout: requestTimeout,
	}
}

type queryRequest struct {
	Text         string `json:"text"`
	UserIdentity string `json:"userIdentity"`
}

// Routes returns the handler with all endpoints mounted.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/query", s.handleQuery)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserIdentity) == "" {
		http.Error(w, "userIdentity is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	start := time.Now()
	result := s.engine.ProcessQuery(ctx, req.Text, req.UserIdentity)

	status := "ok"
	if len(result.Records) == 0 {
		status = "empty"
	}
	s.obs.RecordQueryProcessed(ctx, status)
	s.obs.RecordQueryDuration(ctx, time.Since(start), status)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.WithError(err).Error("failed to encode response", map[string]interface{}{
			"requestId": result.RequestID,
		})
	}
}
