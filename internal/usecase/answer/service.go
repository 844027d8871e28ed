// Package answer orchestrates the verified-answer pipeline: cache lookups,
// retrieval, generation, verification, sanitization, citations, and
// write-through to both caches.
package answer

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/cache/contextcache"
	"github.com/voceria-ai/voceria/internal/domain"
	"github.com/voceria-ai/voceria/internal/metrics"
	"github.com/voceria-ai/voceria/internal/retriever"
	"github.com/voceria-ai/voceria/internal/sanitizer"
	"github.com/voceria-ai/voceria/internal/verifier"
)

// User-facing fallback texts. The user never sees a raw error.
const (
	noDocumentsResponse = "Lo siento, no encontré información relevante en los documentos disponibles para responder tu pregunta. ¿Podrías reformularla o hacer una pregunta más específica?"
	unavailableResponse = "Lo siento, el servicio de IA no está disponible en este momento."
	recNoDocuments      = "No hay documentos disponibles"
	recUnavailable      = "Servicio de generación no disponible"
)

// Config holds the orchestrator's collaborators and tuning.
type Config struct {
	Documents     DocumentProvider
	Retriever     *retriever.Retriever
	Verifier      *verifier.Verifier
	Sanitizer     *sanitizer.Sanitizer
	Generator     Generator
	ResponseCache ResponseCache
	ContextCache  ContextCache
	Logger        *zap.Logger

	MaxDocuments    int
	MaxContextChars int
	EnableCitations bool
}

// Service is the single entry point the transport layer calls.
type Service struct {
	cfg Config
}

// New creates the answer service.
func New(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// cachedAnswer is the serialized form stored in the response cache.
type cachedAnswer struct {
	Text          string                    `json:"text"`
	WithCitations string                    `json:"with_citations,omitempty"`
	Verification  domain.VerificationResult `json:"verification"`
}

// Answer runs the full pipeline for one query. Collaborator failures
// degrade to fallback responses; the only errors returned are input errors
// and an unloaded tenant.
func (s *Service) Answer(ctx context.Context, tenantID string, user domain.UserContext, branding domain.Branding, intent domain.Intent, query string) (domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, domain.ErrEmptyQuery
	}

	log := s.cfg.Logger.With(
		zap.String("tenant_id", tenantID),
		zap.String("intent", string(intent.OrGeneral())),
	)

	// Shared response cache first: the cheapest full answer.
	if raw, ok := s.cfg.ResponseCache.Get(ctx, tenantID, query, intent); ok {
		var cached cachedAnswer
		if err := json.Unmarshal(raw, &cached); err == nil {
			log.Debug("response cache hit")
			return domain.Answer{
				Text:              cached.Text,
				WithCitations:     cached.WithCitations,
				Verification:      cached.Verification,
				CacheHit:          true,
				ConfidenceMessage: s.cfg.Verifier.ConfidenceMessage(cached.Verification),
			}, nil
		}
		log.Warn("discarding malformed cache entry")
	}

	// Then the per-user personalized tier.
	if personalized, ok := s.cfg.ContextCache.Get(tenantID, user, intent, query); ok {
		log.Debug("context cache hit")
		return domain.Answer{Text: personalized, CacheHit: true}, nil
	}

	documents, err := s.cfg.Documents.Documents(tenantID)
	if err != nil {
		return domain.Answer{}, err
	}

	results := s.cfg.Retriever.Search(documents, query, s.cfg.MaxDocuments)
	if len(results) == 0 {
		log.Info("no relevant documents for query")
		return domain.Answer{
			Text: noDocumentsResponse,
			Verification: domain.VerificationResult{
				IsVerified:     false,
				Recommendation: recNoDocuments,
			},
		}, nil
	}

	docContext := s.cfg.Retriever.AssembleContext(results, s.cfg.MaxContextChars)
	prompt := buildPrompt(query, docContext, user, branding)

	text, err := s.cfg.Generator.Generate(ctx, prompt)
	if err != nil {
		log.Error("generation failed, returning fallback", zap.Error(err))
		return domain.Answer{
			Text: unavailableResponse,
			Verification: domain.VerificationResult{
				IsVerified:        false,
				HallucinationRisk: 1,
				Recommendation:    recUnavailable,
			},
		}, nil
	}

	verification := s.cfg.Verifier.Verify(text, results)
	metrics.HallucinationRisk.Observe(verification.HallucinationRisk)

	sanitized, changes := s.cfg.Sanitizer.Sanitize(text, results, &verification)
	for _, change := range changes {
		metrics.SanitizerChangesTotal.WithLabelValues(changeKind(change)).Inc()
	}

	answer := domain.Answer{
		Text:              sanitized,
		Verification:      verification,
		Retrieved:         results,
		Sanitized:         len(changes) > 0,
		Changes:           changes,
		ConfidenceMessage: s.cfg.Verifier.ConfidenceMessage(verification),
	}
	if s.cfg.EnableCitations {
		answer.WithCitations = s.cfg.Verifier.AddCitations(sanitized, results)
	}

	// Write-through happens only after the whole pipeline succeeded, so a
	// cancelled request never leaves a partial entry.
	if raw, err := json.Marshal(cachedAnswer{
		Text:          answer.Text,
		WithCitations: answer.WithCitations,
		Verification:  verification,
	}); err == nil {
		s.cfg.ResponseCache.Put(ctx, tenantID, query, raw, intent, 0)
	}
	s.cfg.ContextCache.Put(tenantID, user, intent, query, contextcache.Personalize(answer.Text, user, branding))

	log.Info("answer pipeline completed",
		zap.Int("documents", len(results)),
		zap.Float64("hallucination_risk", verification.HallucinationRisk),
		zap.Bool("sanitized", answer.Sanitized))

	return answer, nil
}

// changeKind maps a change log entry to its metric label, the part before
// the first colon.
func changeKind(change string) string {
	if i := strings.IndexByte(change, ':'); i > 0 {
		return change[:i]
	}
	return change
}
