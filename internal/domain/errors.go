package domain

import "errors"

var (
	// ErrTenantNotLoaded signals that no corpus has been loaded for a tenant.
	ErrTenantNotLoaded = errors.New("tenant documents not loaded")
	// ErrGenerationUnavailable signals that the generation provider failed or
	// timed out; callers fall back to a templated response.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	// ErrEmptyQuery signals a blank or whitespace-only query.
	ErrEmptyQuery = errors.New("empty query")
)
