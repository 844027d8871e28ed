// Package sanitizer is the last filter before an answer reaches the user.
// It strips speculative language and personal opinions, flags numbers that
// do not appear in the source documents, and injects a disclaimer banner
// when verification flagged the answer.
package sanitizer

import (
	"regexp"
	"strings"

	"github.com/voceria-ai/voceria/internal/domain"
)

// Change log entry prefixes.
const (
	changeSpeculative      = "removed_speculative: "
	changeMarkedNumber     = "marked_unverified_number: "
	changeRemovedNumber    = "removed_unverified_number: "
	changeOpinion          = "removed_opinion: "
	changeDisclaimerAdded  = "disclaimer_added"
	unverifiedPlaceholder  = "[dato no verificado]"
	numbersFootnote        = "\n\n*Nota: Algunos datos numéricos requieren verificación con el equipo de campaña."
	disclaimerCritical     = "\n\n⚠️ **Nota importante:** Esta respuesta puede contener información que requiere verificación adicional con el equipo de campaña."
	disclaimerSoft         = "\n\n💡 **Sugerencia:** Para información más detallada, contacta directamente al equipo de campaña."
	noCitationsWarning     = "\n\n⚠️ **Nota:** Esta información requiere verificación de fuentes con el equipo de campaña."
	softDisclaimerWarnings = 2 // more unsupported claims than this earns the soft banner
)

type speculativeRule struct {
	pattern *regexp.Regexp
	repl    string
	name    string
}

func mustRule(expr, repl string) speculativeRule {
	return speculativeRule{
		pattern: regexp.MustCompile(`(?i)` + expr),
		repl:    repl,
		name:    expr,
	}
}

// Hedging lead-ins. Order matters: rules apply top to bottom and each
// feeds the next.
var speculativeRules = []speculativeRule{
	mustRule(`\baproximadamente\s+`, ""),
	mustRule(`\balrededor de\s+`, ""),
	mustRule(`\bmás o menos\s+`, ""),
	mustRule(`\bcercano a\s+`, ""),
	mustRule(`\bpodría ser\s+`, "es "),
	mustRule(`\bposiblemente\s+`, ""),
	mustRule(`\bprobablemente\s+`, ""),
	mustRule(`\bquizás\s+`, ""),
	mustRule(`\btal vez\s+`, ""),
}

var opinionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)creo que\s+`),
	regexp.MustCompile(`(?i)pienso que\s+`),
	regexp.MustCompile(`(?i)me parece que\s+`),
	regexp.MustCompile(`(?i)en mi opinión,?\s+`),
	regexp.MustCompile(`(?i)personalmente,?\s+`),
	regexp.MustCompile(`(?i)yo considero que\s+`),
	regexp.MustCompile(`(?i)desde mi punto de vista,?\s+`),
}

var numberPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`)

// Sanitizer cleans generated answers. Aggressive mode redacts unverified
// numbers instead of marking them.
type Sanitizer struct {
	aggressive bool
}

// New creates a Sanitizer.
func New(aggressive bool) *Sanitizer {
	return &Sanitizer{aggressive: aggressive}
}

// Sanitize runs the ordered transform pipeline over response. It returns
// the cleaned text and an append-only log of applied changes. Deterministic
// for identical inputs; verification may be nil.
func (s *Sanitizer) Sanitize(response string, documents []domain.SearchResult, verification *domain.VerificationResult) (string, []string) {
	var changes []string

	sanitized, specChanges := removeSpeculative(response)
	changes = append(changes, specChanges...)

	if len(documents) > 0 {
		var numChanges []string
		sanitized, numChanges = s.sanitizeNumbers(sanitized, documents)
		changes = append(changes, numChanges...)
	}

	sanitized, opinionChanges := removeOpinions(sanitized)
	changes = append(changes, opinionChanges...)

	if verification != nil && !verification.IsVerified {
		var added bool
		sanitized, added = addDisclaimer(sanitized, *verification)
		if added {
			changes = append(changes, changeDisclaimerAdded)
		}
	}

	return sanitized, changes
}

func removeSpeculative(response string) (string, []string) {
	var changes []string
	sanitized := response
	for _, rule := range speculativeRules {
		if rule.pattern.MatchString(sanitized) {
			sanitized = rule.pattern.ReplaceAllString(sanitized, rule.repl)
			changes = append(changes, changeSpeculative+rule.name)
		}
	}
	return sanitized, changes
}

// sanitizeNumbers checks every numeric token against the concatenated
// document text with separators stripped, so "1.500" in the answer matches
// "1500" in a document. In aggressive mode unverified numbers are redacted;
// otherwise they get a trailing asterisk plus one shared footnote.
func (s *Sanitizer) sanitizeNumbers(response string, documents []domain.SearchResult) (string, []string) {
	var contents []string
	for _, doc := range documents {
		contents = append(contents, doc.Content)
	}
	docsText := stripNumberSeparators(strings.Join(contents, " "))

	var changes []string
	sanitized := response
	seen := make(map[string]struct{})

	for _, number := range numberPattern.FindAllString(response, -1) {
		if _, dup := seen[number]; dup {
			continue
		}
		seen[number] = struct{}{}

		if strings.Contains(docsText, stripNumberSeparators(number)) {
			continue
		}

		if s.aggressive {
			sanitized = strings.ReplaceAll(sanitized, number, unverifiedPlaceholder)
			changes = append(changes, changeRemovedNumber+number)
		} else {
			sanitized = strings.ReplaceAll(sanitized, number, number+"*")
			changes = append(changes, changeMarkedNumber+number)
		}
	}

	if strings.Contains(sanitized, "*") && !strings.Contains(response, "*") {
		sanitized += numbersFootnote
	}

	return sanitized, changes
}

func removeOpinions(response string) (string, []string) {
	var changes []string
	sanitized := response
	for _, pat := range opinionPatterns {
		if pat.MatchString(sanitized) {
			sanitized = pat.ReplaceAllString(sanitized, "")
			changes = append(changes, changeOpinion+pat.String())
		}
	}
	return sanitized, changes
}

// addDisclaimer appends exactly one banner: the strong one for high
// hallucination risk, the soft one when enough claims lacked support.
func addDisclaimer(response string, verification domain.VerificationResult) (string, bool) {
	if verification.HallucinationRisk >= 0.5 {
		return response + disclaimerCritical, true
	}
	if len(verification.UnsupportedClaims) > softDisclaimerWarnings {
		return response + disclaimerSoft, true
	}
	return response, false
}

func stripNumberSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}
