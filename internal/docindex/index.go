// Package docindex owns the per-tenant document corpus. Documents are
// loaded by an external preprocessing cycle through a Source and held in
// memory; the retriever only ever reads them.
package docindex

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/domain"
)

// Source loads a tenant's documents from its storage location.
type Source interface {
	LoadDocuments(ctx context.Context, bucketURL string) ([]domain.Document, error)
}

// Index holds each tenant's loaded documents.
type Index struct {
	mu      sync.RWMutex
	tenants map[string][]domain.Document
	source  Source
	logger  *zap.Logger
}

// New creates an empty Index backed by the given Source.
func New(source Source, logger *zap.Logger) *Index {
	return &Index{
		tenants: make(map[string][]domain.Document),
		source:  source,
		logger:  logger,
	}
}

// Refresh reloads the tenant's corpus from its bucket and swaps it in
// wholesale. The previous corpus stays in place when loading fails.
func (i *Index) Refresh(ctx context.Context, tenantID, bucketURL string) (int, error) {
	docs, err := i.source.LoadDocuments(ctx, bucketURL)
	if err != nil {
		return 0, err
	}

	i.mu.Lock()
	i.tenants[tenantID] = docs
	i.mu.Unlock()

	i.logger.Info("tenant documents refreshed",
		zap.String("tenant_id", tenantID), zap.Int("documents", len(docs)))
	return len(docs), nil
}

// Documents returns the tenant's corpus. ErrTenantNotLoaded signals that no
// refresh cycle has run for this tenant yet.
func (i *Index) Documents(tenantID string) ([]domain.Document, error) {
	i.mu.RLock()
	docs, ok := i.tenants[tenantID]
	i.mu.RUnlock()

	if !ok {
		return nil, domain.ErrTenantNotLoaded
	}
	return docs, nil
}

// ClearTenant drops the tenant's corpus.
func (i *Index) ClearTenant(tenantID string) {
	i.mu.Lock()
	delete(i.tenants, tenantID)
	i.mu.Unlock()
}

// TenantCount reports how many tenants have a loaded corpus.
func (i *Index) TenantCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.tenants)
}
