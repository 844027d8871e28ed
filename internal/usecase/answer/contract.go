package answer

import (
	"context"
	"time"

	"github.com/voceria-ai/voceria/internal/domain"
)

// Generator produces answer text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DocumentProvider reads a tenant's loaded corpus.
type DocumentProvider interface {
	Documents(tenantID string) ([]domain.Document, error)
}

// ResponseCache caches finished answers by tenant, query and intent.
type ResponseCache interface {
	Get(ctx context.Context, tenantID, query string, intent domain.Intent) ([]byte, bool)
	Put(ctx context.Context, tenantID, query string, value []byte, intent domain.Intent, ttlOverride time.Duration)
}

// ContextCache caches personalized answers by user context.
type ContextCache interface {
	Get(tenantID string, user domain.UserContext, intent domain.Intent, query string) (string, bool)
	Put(tenantID string, user domain.UserContext, intent domain.Intent, query, response string)
}
