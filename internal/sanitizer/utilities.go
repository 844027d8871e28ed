package sanitizer

import (
	"regexp"
	"strings"

	"github.com/voceria-ai/voceria/internal/domain"
)

var (
	multiSpace  = regexp.MustCompile(` +`)
	multiBlank  = regexp.MustCompile(`\n\n\n+`)
	sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\[Documento\s+\d+\]`),
		regexp.MustCompile(`(?i)\[Doc\s+\d+\]`),
		regexp.MustCompile(`(?i)\[Fuente\s+\d+\]`),
	}

	claimWordPattern = regexp.MustCompile(`\p{L}+|\d+`)
)

// CleanFormatting collapses runs of spaces and blank lines and trims the
// result.
func (s *Sanitizer) CleanFormatting(response string) string {
	cleaned := multiSpace.ReplaceAllString(response, " ")
	cleaned = multiBlank.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// EnsureCitations counts citation markers of the recognized forms and
// reports whether at least minCitations are present. In aggressive mode a
// missing-citations warning is appended when under the threshold.
func (s *Sanitizer) EnsureCitations(response string, minCitations int) (string, bool) {
	total := 0
	for _, pat := range citationPatterns {
		total += len(pat.FindAllString(response, -1))
	}

	enough := total >= minCitations
	if !enough && s.aggressive {
		response += noCitationsWarning
	}
	return response, enough
}

// SplitClaims segments the response into sentence-level claims of at least
// three words.
func (s *Sanitizer) SplitClaims(response string) []string {
	var claims []string
	for _, part := range sentenceEnd.Split(response, -1) {
		part = strings.TrimSpace(part)
		if len(strings.Fields(part)) >= 3 {
			claims = append(claims, part)
		}
	}
	return claims
}

// VerifyClaimSupport reports whether any document contains at least 60% of
// the claim's words longer than three characters.
func (s *Sanitizer) VerifyClaimSupport(claim string, documents []domain.SearchResult) bool {
	words := make(map[string]struct{})
	for _, w := range claimWordPattern.FindAllString(strings.ToLower(claim), -1) {
		if len([]rune(w)) > 3 {
			words[w] = struct{}{}
		}
	}
	if len(words) == 0 {
		return false
	}

	for _, doc := range documents {
		content := strings.ToLower(doc.Content)
		found := 0
		for w := range words {
			if strings.Contains(content, w) {
				found++
			}
		}
		if float64(found)/float64(len(words)) >= 0.6 {
			return true
		}
	}
	return false
}
