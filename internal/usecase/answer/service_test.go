package answer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/domain"
	"github.com/voceria-ai/voceria/internal/retriever"
	"github.com/voceria-ai/voceria/internal/sanitizer"
	"github.com/voceria-ai/voceria/internal/verifier"
)

// --- Mocks ---

type mockDocs struct {
	docs []domain.Document
	err  error
}

func (m *mockDocs) Documents(string) ([]domain.Document, error) {
	return m.docs, m.err
}

type mockGenerator struct {
	text  string
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockResponseCache struct {
	entries map[string][]byte
	puts    int
}

func newMockResponseCache() *mockResponseCache {
	return &mockResponseCache{entries: make(map[string][]byte)}
}

func (m *mockResponseCache) key(tenantID, query string, intent domain.Intent) string {
	return tenantID + ":" + string(intent.OrGeneral()) + ":" + query
}

func (m *mockResponseCache) Get(_ context.Context, tenantID, query string, intent domain.Intent) ([]byte, bool) {
	v, ok := m.entries[m.key(tenantID, query, intent)]
	return v, ok
}

func (m *mockResponseCache) Put(_ context.Context, tenantID, query string, value []byte, intent domain.Intent, _ time.Duration) {
	m.puts++
	m.entries[m.key(tenantID, query, intent)] = value
}

type mockContextCache struct {
	entries map[string]string
	puts    int
}

func newMockContextCache() *mockContextCache {
	return &mockContextCache{entries: make(map[string]string)}
}

func (m *mockContextCache) key(tenantID string, user domain.UserContext, intent domain.Intent, query string) string {
	return tenantID + ":" + string(intent.OrGeneral()) + ":" + user.Name + ":" + user.City + ":" + query
}

func (m *mockContextCache) Get(tenantID string, user domain.UserContext, intent domain.Intent, query string) (string, bool) {
	v, ok := m.entries[m.key(tenantID, user, intent, query)]
	return v, ok
}

func (m *mockContextCache) Put(tenantID string, user domain.UserContext, intent domain.Intent, query, response string) {
	m.puts++
	m.entries[m.key(tenantID, user, intent, query)] = response
}

func campaignCorpus() []domain.Document {
	return []domain.Document{
		{ID: "1", Filename: "faq.md", Content: "El candidato propone mejorar la salud y la educación"},
	}
}

func newService(docs *mockDocs, gen *mockGenerator, rc *mockResponseCache, cc *mockContextCache) *Service {
	return New(Config{
		Documents:       docs,
		Retriever:       retriever.New(),
		Verifier:        verifier.New(),
		Sanitizer:       sanitizer.New(false),
		Generator:       gen,
		ResponseCache:   rc,
		ContextCache:    cc,
		Logger:          zap.NewNop(),
		MaxDocuments:    5,
		MaxContextChars: 3000,
		EnableCitations: true,
	})
}

func TestAnswer_FullPipeline(t *testing.T) {
	gen := &mockGenerator{text: "El candidato propone mejorar la salud y la educación."}
	rc := newMockResponseCache()
	cc := newMockContextCache()
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, rc, cc)

	got, err := svc.Answer(context.Background(), "t1", domain.UserContext{Name: "ana"}, domain.Branding{}, domain.IntentKnowCandidate, "salud")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if got.CacheHit {
		t.Error("first call must not be a cache hit")
	}
	if !got.Verification.IsVerified {
		t.Errorf("expected verified answer, got %+v", got.Verification)
	}
	if len(got.Retrieved) != 1 {
		t.Errorf("retrieved = %d documents, want 1", len(got.Retrieved))
	}
	if got.WithCitations == "" || !strings.Contains(got.WithCitations, "faq.md") {
		t.Errorf("citations missing: %q", got.WithCitations)
	}
	if rc.puts != 1 || cc.puts != 1 {
		t.Errorf("cache writes = %d/%d, want 1/1", rc.puts, cc.puts)
	}
	if !strings.Contains(got.ConfidenceMessage, "Alta confiabilidad") {
		t.Errorf("confidence message = %q", got.ConfidenceMessage)
	}
}

func TestAnswer_ResponseCacheHit(t *testing.T) {
	gen := &mockGenerator{text: "irrelevante"}
	rc := newMockResponseCache()
	cc := newMockContextCache()
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, rc, cc)

	cached, _ := json.Marshal(cachedAnswer{
		Text:         "respuesta cacheada",
		Verification: domain.VerificationResult{IsVerified: true, Confidence: 1},
	})
	rc.entries[rc.key("t1", "salud", domain.IntentKnowCandidate)] = cached

	got, err := svc.Answer(context.Background(), "t1", domain.UserContext{}, domain.Branding{}, domain.IntentKnowCandidate, "salud")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !got.CacheHit || got.Text != "respuesta cacheada" {
		t.Errorf("answer = %+v, want cached response", got)
	}
	if gen.calls != 0 {
		t.Error("generator called despite cache hit")
	}
}

func TestAnswer_ContextCacheHit(t *testing.T) {
	gen := &mockGenerator{text: "irrelevante"}
	rc := newMockResponseCache()
	cc := newMockContextCache()
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, rc, cc)

	user := domain.UserContext{Name: "ana", City: "bogotá"}
	cc.entries[cc.key("t1", user, domain.IntentGeneral, "salud")] = "Hola Ana, respuesta personalizada"

	got, err := svc.Answer(context.Background(), "t1", user, domain.Branding{}, domain.IntentGeneral, "salud")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !got.CacheHit || got.Text != "Hola Ana, respuesta personalizada" {
		t.Errorf("answer = %+v, want personalized cache hit", got)
	}
	if gen.calls != 0 {
		t.Error("generator called despite cache hit")
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	svc := newService(&mockDocs{docs: campaignCorpus()}, &mockGenerator{}, newMockResponseCache(), newMockContextCache())

	_, err := svc.Answer(context.Background(), "t1", domain.UserContext{}, domain.Branding{}, domain.IntentGeneral, "   ")
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestAnswer_TenantNotLoaded(t *testing.T) {
	svc := newService(&mockDocs{err: domain.ErrTenantNotLoaded}, &mockGenerator{}, newMockResponseCache(), newMockContextCache())

	_, err := svc.Answer(context.Background(), "ghost", domain.UserContext{}, domain.Branding{}, domain.IntentGeneral, "salud")
	if !errors.Is(err, domain.ErrTenantNotLoaded) {
		t.Errorf("err = %v, want ErrTenantNotLoaded", err)
	}
}

func TestAnswer_NoRelevantDocuments(t *testing.T) {
	gen := &mockGenerator{text: "irrelevante"}
	rc := newMockResponseCache()
	cc := newMockContextCache()
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, rc, cc)

	got, err := svc.Answer(context.Background(), "t1", domain.UserContext{}, domain.Branding{}, domain.IntentGeneral, "criptomonedas extraterrestres")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got.Text != noDocumentsResponse {
		t.Errorf("text = %q, want reformulation suggestion", got.Text)
	}
	if got.Verification.IsVerified {
		t.Error("no-documents answer must not claim verification")
	}
	if gen.calls != 0 {
		t.Error("generator called without documents")
	}
	if rc.puts != 0 || cc.puts != 0 {
		t.Error("fallback answers must not be cached")
	}
}

func TestAnswer_GenerationFailureFallback(t *testing.T) {
	gen := &mockGenerator{err: domain.ErrGenerationUnavailable}
	rc := newMockResponseCache()
	cc := newMockContextCache()
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, rc, cc)

	got, err := svc.Answer(context.Background(), "t1", domain.UserContext{}, domain.Branding{}, domain.IntentGeneral, "salud")
	if err != nil {
		t.Fatalf("fallback must not surface the error, got %v", err)
	}
	if got.Text != unavailableResponse {
		t.Errorf("text = %q, want apology fallback", got.Text)
	}
	if rc.puts != 0 || cc.puts != 0 {
		t.Error("failed pipeline must not write caches")
	}
}

func TestAnswer_SanitizesGeneratedText(t *testing.T) {
	gen := &mockGenerator{text: "Creo que el candidato propone mejorar la salud y la educación."}
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, newMockResponseCache(), newMockContextCache())

	got, err := svc.Answer(context.Background(), "t1", domain.UserContext{}, domain.Branding{}, domain.IntentGeneral, "salud")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if strings.Contains(got.Text, "Creo que") {
		t.Errorf("opinion phrase survived sanitization: %q", got.Text)
	}
	if !got.Sanitized || len(got.Changes) == 0 {
		t.Errorf("sanitization not reported: %+v", got)
	}
}

func TestAnswer_PersonalizedWriteThrough(t *testing.T) {
	gen := &mockGenerator{text: "Hola {name}, el candidato propone mejorar la salud y la educación."}
	cc := newMockContextCache()
	svc := newService(&mockDocs{docs: campaignCorpus()}, gen, newMockResponseCache(), cc)

	user := domain.UserContext{Name: "ana", City: "bogotá"}
	_, err := svc.Answer(context.Background(), "t1", user, domain.Branding{}, domain.IntentGeneral, "salud")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	stored, ok := cc.Get("t1", user, domain.IntentGeneral, "salud")
	if !ok {
		t.Fatal("context cache entry missing")
	}
	if !strings.Contains(stored, "Hola Ana") {
		t.Errorf("stored entry not personalized: %q", stored)
	}
}

func TestBuildPrompt(t *testing.T) {
	user := domain.UserContext{Name: "Ana", SessionContext: "Preguntó antes por educación."}
	branding := domain.Branding{CandidateName: "VoceBot", ContactName: "María Gómez"}

	prompt := buildPrompt("¿Qué propone en salud?", "**faq.md** (relevancia: 200.0):\ncontenido", user, branding)

	for _, want := range []string{
		"VoceBot",
		"María Gómez",
		"El usuario se llama Ana.",
		"Preguntó antes por educación.",
		"¿Qué propone en salud?",
		"**DOCUMENTOS DISPONIBLES:**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_Defaults(t *testing.T) {
	prompt := buildPrompt("pregunta", "docs", domain.UserContext{}, domain.Branding{})

	if !strings.Contains(prompt, defaultContactName) {
		t.Error("default contact name missing")
	}
	if !strings.Contains(prompt, defaultCandidateName) {
		t.Error("default candidate name missing")
	}
}
