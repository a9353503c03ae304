package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	askuc "github.com/kailas-cloud/askdex/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/askdex/internal/usecase/health"
)

const maxTopK = 50

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the query pipeline over HTTP.
type Server struct {
	ask           *askuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ask *askuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		ask:    ask,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		agentFailureHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeScopeNotFound),
		sentinelHandler(domain.ErrScopeEmpty, http.StatusNotFound, CodeScopeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProvider),
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/query", s.Query)
	r.Post("/classify", s.Classify)
	r.Post("/retrieve", s.Retrieve)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Query handles POST /query: classify the question and route it through
// retrieval, the SQL agent, or both.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Query is required")
		return
	}
	if req.TopK < 0 || req.TopK > maxTopK {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "top_k out of range")
		return
	}

	answer, err := s.ask.Ask(r.Context(), askuc.Request{
		Scope:  req.Scope,
		Query:  req.Query,
		TopK:   req.TopK,
		Tables: tablesFromDTO(req.Tables),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:          answer.Answer,
		Method:          answer.Method,
		Classification:  classificationToDTO(answer.Classification),
		Sources:         sourcesToDTO(answer.Sources),
		TablesUsed:      answer.TablesUsed,
		ToolInvocations: answer.ToolInvocations,
	})
}

// Classify handles POST /classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Query is required")
		return
	}

	c := s.ask.Classify(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, classificationToDTO(c))
}

// Retrieve handles POST /retrieve: ranked evidence without synthesis.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Query is required")
		return
	}
	if req.TopK < 0 || req.TopK > maxTopK {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "top_k out of range")
		return
	}

	candidates, err := s.ask.RetrieveOnly(r.Context(), req.Scope, req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RetrieveResponse{Sources: sourcesToDTO(candidates)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrScopeEmpty,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
		domain.ErrAgentExhausted,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// agentFailureHandler surfaces the user-facing explanation the retry
// controller attached to a terminal agent failure.
func agentFailureHandler(w http.ResponseWriter, err error, msg string) bool {
	var afe *domain.AgentFailureError
	if !errors.As(err, &afe) {
		return false
	}
	message := afe.UserMessage
	if message == "" {
		message = msg
	}
	writeError(w, http.StatusBadGateway, CodeAgentFailed, message)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
