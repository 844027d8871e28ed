package domain

// Answer is the orchestrator's reply to one query.
type Answer struct {
	Text          string
	WithCitations string
	Verification  VerificationResult
	Retrieved     []SearchResult
	CacheHit      bool
	Sanitized     bool
	Changes       []string // sanitizer change log, empty when Sanitized is false

	// ConfidenceMessage is the user-facing reliability line derived from
	// Verification. Empty for personalized cache hits, which carry no
	// verification data.
	ConfidenceMessage string
}
