package domain

// MatchType classifies which retrieval rule produced a search hit.
type MatchType string

const (
	MatchExactPhrase     MatchType = "exact_phrase"
	MatchFilename        MatchType = "filename_match"
	MatchPartialPhrase   MatchType = "partial_phrase"
	MatchFilenamePartial MatchType = "filename_partial"
	MatchKeyword         MatchType = "keyword_match"
	MatchFuzzy           MatchType = "fuzzy_match"
	MatchNone            MatchType = "no_match"
)

// SearchResult is a single ranked retrieval hit. Ephemeral; discarded after
// context assembly.
type SearchResult struct {
	DocID     string
	Filename  string
	Content   string
	Score     float64
	MatchType MatchType
}
