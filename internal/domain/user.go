package domain

// UserContext carries the per-user attributes the pipeline personalizes
// with. Name and City also participate in the context cache key so two
// users asking the same question get independent personalized entries.
type UserContext struct {
	Name           string
	City           string
	SessionContext string // prior-conversation summary, included in prompts
}

// Branding holds tenant presentation settings used by prompt building and
// personalization.
type Branding struct {
	CandidateName string
	ContactName   string
}
