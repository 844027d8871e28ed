package sanitizer

import (
	"strings"
	"testing"

	"github.com/voceria-ai/voceria/internal/domain"
)

func campaignDocs(contents ...string) []domain.SearchResult {
	var out []domain.SearchResult
	for i, c := range contents {
		out = append(out, domain.SearchResult{
			DocID:    string(rune('1' + i)),
			Filename: "doc.md",
			Content:  c,
		})
	}
	return out
}

func TestSanitize_OpinionAndUnverifiedNumber(t *testing.T) {
	s := New(false)
	docs := campaignDocs("El candidato propone mejorar la salud y la educación")

	got, changes := s.Sanitize("Hola, creo que esto cuesta aproximadamente 500 pesos", docs, nil)

	if strings.Contains(got, "creo que") {
		t.Errorf("opinion phrase not removed: %q", got)
	}
	if strings.Contains(got, "aproximadamente") {
		t.Errorf("speculative phrase not removed: %q", got)
	}
	if !strings.Contains(got, "500*") {
		t.Errorf("unverified number not marked: %q", got)
	}
	if !strings.Contains(got, numbersFootnote) {
		t.Errorf("missing footnote: %q", got)
	}
	if strings.Count(got, strings.TrimSpace(numbersFootnote)) != 1 {
		t.Errorf("footnote appended more than once: %q", got)
	}

	var sawOpinion, sawMarked bool
	for _, c := range changes {
		if strings.HasPrefix(c, changeOpinion) {
			sawOpinion = true
		}
		if strings.HasPrefix(c, changeMarkedNumber) {
			sawMarked = true
		}
	}
	if !sawOpinion || !sawMarked {
		t.Errorf("changes = %v, want removed_opinion and marked_unverified_number entries", changes)
	}
}

func TestSanitize_VerifiedNumberUntouched(t *testing.T) {
	s := New(false)
	docs := campaignDocs("El presupuesto del programa es de 500 pesos por familia")

	got, changes := s.Sanitize("El programa cuesta 500 pesos", docs, nil)

	if got != "El programa cuesta 500 pesos" {
		t.Errorf("verified number was modified: %q", got)
	}
	if len(changes) != 0 {
		t.Errorf("unexpected changes: %v", changes)
	}
}

func TestSanitize_SeparatorInsensitiveNumberMatch(t *testing.T) {
	s := New(false)
	docs := campaignDocs("La inversión total será de 1500 millones")

	got, _ := s.Sanitize("La inversión será de 1.500 millones", docs, nil)

	if strings.Contains(got, "*") {
		t.Errorf("number with separators should match stripped document text: %q", got)
	}
}

func TestSanitize_AggressiveRedactsNumbers(t *testing.T) {
	s := New(true)
	docs := campaignDocs("contenido sin cifras")

	got, changes := s.Sanitize("Cuesta 500 pesos", docs, nil)

	if !strings.Contains(got, unverifiedPlaceholder) {
		t.Errorf("number not redacted: %q", got)
	}
	if strings.Contains(got, "500") {
		t.Errorf("number still present: %q", got)
	}

	found := false
	for _, c := range changes {
		if strings.HasPrefix(c, changeRemovedNumber) {
			found = true
		}
	}
	if !found {
		t.Errorf("changes = %v, want removed_unverified_number entry", changes)
	}
}

func TestSanitize_SpeculativeReplacement(t *testing.T) {
	s := New(false)

	got, changes := s.Sanitize("El costo podría ser alto este año", nil, nil)

	if !strings.Contains(got, "es alto") {
		t.Errorf("weak affirmation not applied: %q", got)
	}
	if len(changes) != 1 || !strings.HasPrefix(changes[0], changeSpeculative) {
		t.Errorf("changes = %v", changes)
	}
}

func TestSanitize_SpeculativeIdempotent(t *testing.T) {
	s := New(false)
	input := "Probablemente el plan cubre aproximadamente la mitad, tal vez más"

	once, _ := s.Sanitize(input, nil, nil)
	twice, _ := s.Sanitize(once, nil, nil)

	if once != twice {
		t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestSanitize_CriticalDisclaimer(t *testing.T) {
	s := New(false)
	v := &domain.VerificationResult{IsVerified: false, HallucinationRisk: 0.6}

	got, changes := s.Sanitize("Texto con riesgo alto", nil, v)

	if !strings.HasSuffix(got, disclaimerCritical) {
		t.Errorf("missing critical disclaimer: %q", got)
	}
	if strings.Contains(got, disclaimerSoft) {
		t.Error("both banners appended")
	}

	found := false
	for _, c := range changes {
		if c == changeDisclaimerAdded {
			found = true
		}
	}
	if !found {
		t.Errorf("changes = %v, want disclaimer_added", changes)
	}
}

func TestSanitize_SoftDisclaimer(t *testing.T) {
	s := New(false)
	v := &domain.VerificationResult{
		IsVerified:        false,
		HallucinationRisk: 0.4,
		UnsupportedClaims: []string{"uno", "dos", "tres"},
	}

	got, _ := s.Sanitize("Texto con varios avisos", nil, v)

	if !strings.HasSuffix(got, disclaimerSoft) {
		t.Errorf("missing soft disclaimer: %q", got)
	}
	if strings.Contains(got, disclaimerCritical) {
		t.Error("both banners appended")
	}
}

func TestSanitize_NoDisclaimerWhenVerified(t *testing.T) {
	s := New(false)
	v := &domain.VerificationResult{IsVerified: true}

	got, changes := s.Sanitize("Respuesta limpia", nil, v)

	if got != "Respuesta limpia" {
		t.Errorf("verified response modified: %q", got)
	}
	if len(changes) != 0 {
		t.Errorf("unexpected changes: %v", changes)
	}
}

func TestCleanFormatting(t *testing.T) {
	s := New(false)

	got := s.CleanFormatting("  Hola   mundo\n\n\n\nAdiós  ")
	want := "Hola mundo\n\nAdiós"
	if got != want {
		t.Errorf("CleanFormatting = %q, want %q", got, want)
	}
}

func TestEnsureCitations(t *testing.T) {
	s := New(false)

	_, ok := s.EnsureCitations("Según [Documento 1] y [Fuente 2], el plan avanza", 2)
	if !ok {
		t.Error("expected enough citations")
	}

	_, ok = s.EnsureCitations("Sin ninguna cita", 1)
	if ok {
		t.Error("expected missing citations")
	}
}

func TestEnsureCitations_AggressiveAppendsWarning(t *testing.T) {
	s := New(true)

	got, ok := s.EnsureCitations("Sin citas", 1)
	if ok {
		t.Error("expected missing citations")
	}
	if !strings.HasSuffix(got, noCitationsWarning) {
		t.Errorf("missing warning: %q", got)
	}
}

func TestSplitClaims(t *testing.T) {
	s := New(false)

	claims := s.SplitClaims("El candidato propone mejorar la salud. ¿Qué más hará después? Sí. Construirá nuevos parques públicos.")
	if len(claims) != 3 {
		t.Errorf("claims = %v, want 3", claims)
	}
}

func TestVerifyClaimSupport(t *testing.T) {
	s := New(false)
	docs := campaignDocs("El candidato propone construir hospitales nuevos en cada municipio")

	if !s.VerifyClaimSupport("propone construir hospitales nuevos", docs) {
		t.Error("expected supported claim")
	}
	if s.VerifyClaimSupport("regalará aviones dorados brillantes", docs) {
		t.Error("expected unsupported claim")
	}
}
