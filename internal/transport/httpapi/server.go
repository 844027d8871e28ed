// Package httpapi exposes the answer pipeline over HTTP: the answer
// endpoint, tenant document refresh, cache invalidation and stats, and
// health.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/cache/contextcache"
	"github.com/voceria-ai/voceria/internal/cache/response"
	"github.com/voceria-ai/voceria/internal/domain"
	healthuc "github.com/voceria-ai/voceria/internal/usecase/health"
)

// Error response codes.
const (
	codeBadRequest            = "bad_request"
	codeValidationFailed      = "validation_failed"
	codeTenantNotLoaded       = "tenant_not_loaded"
	codeDocumentSourceFailed  = "document_source_failed"
	codeGenerationUnavailable = "generation_unavailable"
	codeUnauthorized          = "unauthorized"
	codeInternalError         = "internal_error"
)

// Answerer runs the answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, tenantID string, user domain.UserContext, branding domain.Branding, intent domain.Intent, query string) (domain.Answer, error)
}

// DocumentIndex manages per-tenant corpora.
type DocumentIndex interface {
	Refresh(ctx context.Context, tenantID, bucketURL string) (int, error)
	ClearTenant(tenantID string)
}

// ResponseCache is the cache-management surface of the response cache.
type ResponseCache interface {
	InvalidateTenant(ctx context.Context, tenantID string) (int, error)
	InvalidateIntent(ctx context.Context, tenantID string, intent domain.Intent) (int, error)
	Stats() response.Stats
}

// ContextCache is the cache-management surface of the context cache.
type ContextCache interface {
	ClearTenant(tenantID string)
	Stats() contextcache.Stats
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	answerer      Answerer
	index         DocumentIndex
	respCache     ResponseCache
	ctxCache      ContextCache
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(
	answerer Answerer,
	index DocumentIndex,
	respCache ResponseCache,
	ctxCache ContextCache,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		answerer:  answerer,
		index:     index,
		respCache: respCache,
		ctxCache:  ctxCache,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTenantNotLoaded, http.StatusNotFound, codeTenantNotLoaded),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusBadGateway, codeGenerationUnavailable),
	}
	return s
}

// Routes mounts all handlers on a router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Post("/answer", s.handleAnswer)
			r.Post("/documents/refresh", s.handleRefreshDocuments)
			r.Delete("/cache", s.handleInvalidateTenant)
			r.Delete("/cache/{intent}", s.handleInvalidateIntent)
		})
		r.Get("/cache/stats", s.handleCacheStats)
	})
	r.Get("/health", s.handleHealth)
}

// --- Request/response DTOs ---

type userContextDTO struct {
	Name           string `json:"name,omitempty"`
	City           string `json:"city,omitempty"`
	SessionContext string `json:"session_context,omitempty"`
}

type brandingDTO struct {
	CandidateName string `json:"candidate_name,omitempty"`
	ContactName   string `json:"contact_name,omitempty"`
}

type answerRequest struct {
	Query       string         `json:"query"`
	Intent      string         `json:"intent,omitempty"`
	UserContext userContextDTO `json:"user_context"`
	Branding    brandingDTO    `json:"branding"`
}

type verificationDTO struct {
	IsVerified        bool     `json:"is_verified"`
	Confidence        float64  `json:"confidence"`
	HallucinationRisk float64  `json:"hallucination_risk"`
	UnsupportedClaims []string `json:"unsupported_claims,omitempty"`
	SourcesUsed       []string `json:"sources_used,omitempty"`
	Recommendation    string   `json:"recommendation"`
}

type answerResponse struct {
	Text              string          `json:"text"`
	WithCitations     string          `json:"with_citations,omitempty"`
	CacheHit          bool            `json:"cache_hit"`
	Sanitized         bool            `json:"sanitized"`
	Changes           []string        `json:"changes,omitempty"`
	Verification      verificationDTO `json:"verification"`
	ConfidenceMessage string          `json:"confidence_message"`
}

type refreshRequest struct {
	BucketURL string `json:"bucket_url"`
}

type refreshResponse struct {
	Documents int `json:"documents"`
}

type invalidateResponse struct {
	Removed int `json:"removed"`
}

type cacheStatsResponse struct {
	ResponseCache response.Stats     `json:"response_cache"`
	ContextCache  contextcache.Stats `json:"context_cache"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// handleAnswer handles POST /v1/tenants/{tenantID}/answer.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user := domain.UserContext{
		Name:           req.UserContext.Name,
		City:           req.UserContext.City,
		SessionContext: req.UserContext.SessionContext,
	}
	branding := domain.Branding{
		CandidateName: req.Branding.CandidateName,
		ContactName:   req.Branding.ContactName,
	}

	answer, err := s.answerer.Answer(r.Context(), tenantID, user, branding, domain.Intent(req.Intent), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Text:              answer.Text,
		WithCitations:     answer.WithCitations,
		CacheHit:          answer.CacheHit,
		Sanitized:         answer.Sanitized,
		Changes:           answer.Changes,
		ConfidenceMessage: answer.ConfidenceMessage,
		Verification: verificationDTO{
			IsVerified:        answer.Verification.IsVerified,
			Confidence:        answer.Verification.Confidence,
			HallucinationRisk: answer.Verification.HallucinationRisk,
			UnsupportedClaims: answer.Verification.UnsupportedClaims,
			SourcesUsed:       answer.Verification.SourcesUsed,
			Recommendation:    answer.Verification.Recommendation,
		},
	})
}

// handleRefreshDocuments handles POST /v1/tenants/{tenantID}/documents/refresh.
func (s *Server) handleRefreshDocuments(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.BucketURL == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "bucket_url is required")
		return
	}

	n, err := s.index.Refresh(r.Context(), tenantID, req.BucketURL)
	if err != nil {
		s.logger.Error("document refresh failed",
			zap.String("tenant_id", tenantID), zap.Error(err))
		writeError(w, http.StatusBadGateway, codeDocumentSourceFailed, "failed to load tenant documents")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Documents: n})
}

// handleInvalidateTenant handles DELETE /v1/tenants/{tenantID}/cache.
func (s *Server) handleInvalidateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	n, err := s.respCache.InvalidateTenant(r.Context(), tenantID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.ctxCache.ClearTenant(tenantID)

	writeJSON(w, http.StatusOK, invalidateResponse{Removed: n})
}

// handleInvalidateIntent handles DELETE /v1/tenants/{tenantID}/cache/{intent}.
func (s *Server) handleInvalidateIntent(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	intent := domain.Intent(chi.URLParam(r, "intent"))

	n, err := s.respCache.InvalidateIntent(r.Context(), tenantID, intent)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invalidateResponse{Removed: n})
}

// handleCacheStats handles GET /v1/cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cacheStatsResponse{
		ResponseCache: s.respCache.Stats(),
		ContextCache:  s.ctxCache.Stats(),
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrTenantNotLoaded,
		domain.ErrEmptyQuery,
		domain.ErrGenerationUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}
