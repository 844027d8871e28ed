package domain

// VerificationResult is the outcome of checking a generated answer against
// its source documents. HallucinationRisk is the fraction of claims without
// document support; IsVerified holds exactly when the risk is below 0.3.
type VerificationResult struct {
	IsVerified        bool
	Confidence        float64 // [0,1], mean per-claim support ratio
	UnsupportedClaims []string
	SourcesUsed       []string // doc ids that supported at least one claim
	HallucinationRisk float64  // [0,1]
	Recommendation    string
}
