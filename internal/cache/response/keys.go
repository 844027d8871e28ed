package response

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/voceria-ai/voceria/internal/domain"
)

// Queries longer than this are keyed by content hash to bound key size.
const maxKeyQueryLen = 100

const keyNamespace = "chat_response:"

// cacheKey derives the deterministic cache key for a (tenant, query,
// intent) triple. The query is normalized first so formatting differences
// collapse onto one entry; long queries are replaced by their hash.
func cacheKey(prefix, tenantID, query string, intent domain.Intent) string {
	q := normalizeQuery(query)
	if len(q) > maxKeyQueryLen {
		sum := sha256.Sum256([]byte(q))
		q = hex.EncodeToString(sum[:])
	}
	return prefix + keyNamespace + tenantID + ":" + string(intent.OrGeneral()) + ":" + q
}

// tenantPrefix is the scan prefix covering every key of one tenant.
func tenantPrefix(prefix, tenantID string) string {
	return prefix + keyNamespace + tenantID + ":"
}

// intentPrefix is the scan prefix covering one tenant's keys for one intent.
func intentPrefix(prefix, tenantID string, intent domain.Intent) string {
	return tenantPrefix(prefix, tenantID) + string(intent.OrGeneral()) + ":"
}

// normalizeQuery lower-cases, trims, and collapses internal whitespace.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
