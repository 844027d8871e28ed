package docindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/domain"
)

// Text formats the bucket source can ingest directly. Binary formats
// (PDF, Office) are extracted upstream by the preprocessing job.
var textExtensions = []string{".txt", ".md"}

const maxDocumentBytes = 2 << 20 // 2 MiB per document

// manifestEntry is one document listed by the bucket manifest.
type manifestEntry struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// BucketSource loads documents over HTTP: a JSON manifest listing the
// bucket's objects, then one download per text document. Individual
// download failures skip that document and never abort the whole load.
type BucketSource struct {
	client *http.Client
	logger *zap.Logger
}

// NewBucketSource creates a BucketSource with the given fetch timeout.
func NewBucketSource(timeout time.Duration, logger *zap.Logger) *BucketSource {
	return &BucketSource{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// LoadDocuments lists the manifest at bucketURL and downloads every text
// document it names.
func (s *BucketSource) LoadDocuments(ctx context.Context, bucketURL string) ([]domain.Document, error) {
	entries, err := s.fetchManifest(ctx, bucketURL)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, entry := range entries {
		if !isTextDocument(entry.Filename) {
			continue
		}

		content, err := s.download(ctx, entry.URL)
		if err != nil {
			s.logger.Warn("skipping document",
				zap.String("filename", entry.Filename), zap.Error(err))
			continue
		}

		docs = append(docs, domain.Document{
			ID:       entry.Filename,
			Filename: entry.Filename,
			Content:  content,
		})
	}

	return docs, nil
}

// fetchManifest accepts either a bare JSON array of entries or an object
// with a "documents" field.
func (s *BucketSource) fetchManifest(ctx context.Context, url string) ([]manifestEntry, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}

	var entries []manifestEntry
	if err := json.Unmarshal(body, &entries); err == nil {
		return entries, nil
	}

	var wrapper struct {
		Documents []manifestEntry `json:"documents"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return wrapper.Documents, nil
}

func (s *BucketSource) download(ctx context.Context, url string) (string, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *BucketSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
}

func isTextDocument(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range textExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
