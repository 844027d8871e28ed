// Package retriever ranks tenant documents against a user query with a
// rule-ordered scoring scheme: exact phrase, filename, partial phrase,
// weighted keywords, fuzzy. It is pure and deterministic for fixed inputs.
package retriever

import (
	"regexp"
	"sort"
	"strings"

	"github.com/voceria-ai/voceria/internal/domain"
)

// Scores per match rule. The first matching rule wins; rules are not
// cumulative except keyword accumulation inside its own pass.
const (
	scoreExactPhrase     = 200.0
	scoreFilenameMatch   = 150.0
	scoreFilenamePartial = 100.0
	scorePartialPhrase   = 80.0
	scoreKeywordContent  = 10.0
	scoreKeywordFilename = 20.0
	scoreFuzzyExact      = 5.0
	scoreFuzzyClose      = 3.0

	keywordBonusFactor = 0.2
	fuzzyMaxDiff       = 2
	minTokenLen        = 2 // tokens this short or shorter are discarded
	minFuzzyTokenLen   = 4 // fuzzy pass only considers longer tokens
)

// Retriever scores and ranks documents against queries.
type Retriever struct{}

// New creates a Retriever.
func New() *Retriever {
	return &Retriever{}
}

// Search ranks documents against the query and returns at most maxResults
// hits, ordered by descending score with input order breaking ties. A blank
// query or empty corpus yields an empty result, not an error.
func (r *Retriever) Search(documents []domain.Document, query string, maxResults int) []domain.SearchResult {
	if len(documents) == 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	queryClean := strings.ToLower(strings.TrimSpace(query))
	variants := expandQuery(queryClean)

	var results []domain.SearchResult
	for _, doc := range documents {
		bestScore := 0.0
		bestType := domain.MatchNone

		for _, v := range variants {
			score, matchType := scoreDocument(doc, v)
			if score > bestScore {
				bestScore = score
				bestType = matchType
			}
		}

		if bestScore > 0 {
			results = append(results, domain.SearchResult{
				DocID:     doc.ID,
				Filename:  doc.Filename,
				Content:   doc.Content,
				Score:     bestScore,
				MatchType: bestType,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// scoreDocument applies the scoring rules in priority order and returns the
// first match. Phrase rules require at least two significant tokens so that
// single-word queries are scored by the keyword pass.
func scoreDocument(doc domain.Document, query string) (float64, domain.MatchType) {
	content := strings.ToLower(doc.Content)
	filename := strings.ToLower(doc.Filename)

	tokens := significantTokens(query)

	// 1. Exact phrase
	if len(tokens) >= 2 {
		if strings.Contains(content, query) {
			return scoreExactPhrase, domain.MatchExactPhrase
		}
		if strings.Contains(filename, query) {
			return scoreFilenameMatch, domain.MatchFilename
		}

		// 2. Adjacent two-token windows
		for i := 0; i < len(tokens)-1; i++ {
			phrase := tokens[i] + " " + tokens[i+1]
			if strings.Contains(content, phrase) {
				return scorePartialPhrase, domain.MatchPartialPhrase
			}
			if strings.Contains(filename, phrase) {
				return scoreFilenamePartial, domain.MatchFilenamePartial
			}
		}
	}

	// 3. Keyword pass
	keywordScore := 0.0
	matched := 0
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			keywordScore += scoreKeywordContent
			matched++
		}
		if strings.Contains(filename, tok) {
			keywordScore += scoreKeywordFilename
			matched++
		}
	}
	if matched > 0 {
		keywordScore *= 1 + float64(matched)*keywordBonusFactor
		return keywordScore, domain.MatchKeyword
	}

	// 4. Fuzzy pass
	contentRunes := []rune(content)
	for _, tok := range tokens {
		if len([]rune(tok)) <= minFuzzyTokenLen {
			continue
		}
		if score := fuzzyScan(contentRunes, []rune(tok)); score > 0 {
			return score, domain.MatchFuzzy
		}
	}

	return 0, domain.MatchNone
}

// fuzzyScan slides the token across the content and returns the score of
// the first window that matches exactly or differs in at most fuzzyMaxDiff
// positions.
func fuzzyScan(content, token []rune) float64 {
	for i := 0; i+len(token) <= len(content); i++ {
		window := content[i : i+len(token)]
		diff := 0
		for j := range token {
			if window[j] != token[j] {
				diff++
				if diff > fuzzyMaxDiff {
					break
				}
			}
		}
		if diff == 0 {
			return scoreFuzzyExact
		}
		if diff <= fuzzyMaxDiff {
			return scoreFuzzyClose
		}
	}
	return 0
}

// significantTokens splits the query into lower-case tokens, dropping
// stopwords and tokens of length <= minTokenLen.
func significantTokens(query string) []string {
	var tokens []string
	for _, w := range strings.Fields(query) {
		if len([]rune(w)) <= minTokenLen || isStopword(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Spanish question lead-ins whose remainder is usually the actual topic.
var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`que es lo de (.+)`),
	regexp.MustCompile(`que es (.+)`),
	regexp.MustCompile(`qué es (.+)`),
	regexp.MustCompile(`habla sobre (.+)`),
	regexp.MustCompile(`información sobre (.+)`),
	regexp.MustCompile(`cuéntame sobre (.+)`),
}

// expandQuery produces search variants for a cleaned query: the query
// itself, question-pattern extractions, and individual significant tokens.
// Multi-token windows are left to the partial-phrase rule so that variant
// expansion never upgrades a window to a full exact-phrase hit. Order is
// deterministic and duplicates are dropped.
func expandQuery(query string) []string {
	variants := []string{query}

	for _, pat := range questionPatterns {
		if m := pat.FindStringSubmatch(query); m != nil {
			extracted := strings.TrimSpace(m[1])
			if len([]rune(extracted)) > minTokenLen {
				variants = append(variants, extracted)
			}
		}
	}

	variants = append(variants, significantTokens(query)...)

	seen := make(map[string]struct{}, len(variants))
	unique := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
