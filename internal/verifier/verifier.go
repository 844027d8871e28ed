// Package verifier checks generated answers against the source documents
// they claim to be based on. Each sentence-level claim is matched by word
// overlap; the unsupported fraction becomes the hallucination risk.
package verifier

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/voceria-ai/voceria/internal/domain"
)

const (
	// minClaimWords filters out fragments too short to assert anything.
	minClaimWords = 3

	// supportThreshold is the fraction of a claim's significant words that
	// must appear in a document for the claim to count as supported.
	supportThreshold = 0.6

	// riskVerifiedBound: below this unsupported fraction the answer is
	// considered verified.
	riskVerifiedBound = 0.3

	// riskHighBound: at or above this fraction the answer is flagged as
	// high hallucination risk.
	riskHighBound = 0.5
)

// Recommendation messages, tiered by risk.
const (
	recVerified  = "✅ Respuesta verificada y fundamentada en documentos"
	recPartial   = "⚠️ Respuesta parcialmente verificada, algunos claims no tienen soporte claro"
	recHighRisk  = "❌ Respuesta con alto riesgo de alucinación, mayoría de claims sin soporte"
	recNoSources = "No hay documentos fuente para verificar la respuesta"
	recNoClaims  = "Respuesta sin claims específicos"
)

// Intentionally narrower than the retriever's stopword list; the two are
// tuned separately.
var claimStopwords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {},
	"de": {}, "del": {}, "a": {}, "al": {}, "en": {}, "por": {},
	"para": {}, "con": {}, "que": {}, "es": {}, "son": {},
}

var wordPattern = regexp.MustCompile(`\p{L}+|\d+`)

// Verifier validates responses against retrieved documents.
type Verifier struct{}

// New creates a Verifier.
func New() *Verifier {
	return &Verifier{}
}

// Verify checks each claim in response against the documents and returns
// the aggregated result. No documents means nothing can be trusted (risk 1,
// confidence 0); no extractable claims means nothing can be falsified
// (verified, risk 0, confidence 1).
func (v *Verifier) Verify(response string, documents []domain.SearchResult) domain.VerificationResult {
	if len(documents) == 0 {
		return domain.VerificationResult{
			IsVerified:        false,
			Confidence:        0,
			HallucinationRisk: 1,
			Recommendation:    recNoSources,
		}
	}

	claims := extractClaims(response)
	if len(claims) == 0 {
		return domain.VerificationResult{
			IsVerified:        true,
			Confidence:        1,
			HallucinationRisk: 0,
			Recommendation:    recNoClaims,
		}
	}

	var unsupported []string
	confidenceSum := 0.0
	sourceSet := make(map[string]struct{})

	for _, claim := range claims {
		maxConfidence := 0.0
		supported := false

		for _, doc := range documents {
			ok, confidence := claimSupport(claim, doc.Content)
			if ok {
				supported = true
				if confidence > maxConfidence {
					maxConfidence = confidence
				}
				sourceSet[doc.DocID] = struct{}{}
			}
		}

		if supported {
			confidenceSum += maxConfidence
		} else {
			unsupported = append(unsupported, claim)
		}
	}

	risk := float64(len(unsupported)) / float64(len(claims))
	verified := risk < riskVerifiedBound

	recommendation := recHighRisk
	switch {
	case verified:
		recommendation = recVerified
	case risk < riskHighBound:
		recommendation = recPartial
	}

	sources := make([]string, 0, len(sourceSet))
	for id := range sourceSet {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	return domain.VerificationResult{
		IsVerified:        verified,
		Confidence:        confidenceSum / float64(len(claims)),
		UnsupportedClaims: unsupported,
		SourcesUsed:       sources,
		HallucinationRisk: risk,
		Recommendation:    recommendation,
	}
}

// extractClaims splits the response into sentences and keeps those with at
// least minClaimWords words.
func extractClaims(response string) []string {
	var claims []string
	for _, s := range splitSentences(response) {
		if len(strings.Fields(s)) >= minClaimWords {
			claims = append(claims, s)
		}
	}
	return claims
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. A period preceded by an uppercase letter is treated as part
// of an abbreviation ("Sr. García") and does not split; decimals never
// split because the digit after the dot is not whitespace.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && i > 0 && unicode.IsUpper(runes[i-1]) {
			continue
		}

		if s := strings.TrimSpace(string(runes[start:i])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(strings.TrimRight(string(runes[start:]), ".?!")); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// claimSupport measures what fraction of the claim's significant words
// appear in the document. Words shorter than four characters or in the
// stopword list are not significant.
func claimSupport(claim, content string) (bool, float64) {
	contentLower := strings.ToLower(content)

	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(claim), -1) {
		if _, stop := claimStopwords[w]; stop {
			continue
		}
		if len([]rune(w)) <= 3 {
			continue
		}
		words[w] = struct{}{}
	}
	if len(words) == 0 {
		return false, 0
	}

	found := 0
	for w := range words {
		if strings.Contains(contentLower, w) {
			found++
		}
	}

	confidence := float64(found) / float64(len(words))
	return confidence >= supportThreshold, confidence
}
