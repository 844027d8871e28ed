// Package contextcache caches personalized answers keyed by user context.
// Unlike the response cache it folds the user's name and city into the key,
// so two users asking the same question keep independent entries. Entries
// live in process memory with one fixed TTL checked lazily on read.
package contextcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/domain"
	"github.com/voceria-ai/voceria/internal/metrics"
)

const keyPrefix = "intelligent:"

// TTL is the fixed lifetime of every entry, deliberately independent of
// the response cache's per-intent policy.
const TTL = time.Hour

type entry struct {
	response  string
	timestamp time.Time
}

// Stats reports cache sizes for the stats endpoint.
type Stats struct {
	Entries   int `json:"entries"`
	Templates int `json:"personalized_templates"`
}

// Cache is the per-user personalized answer cache.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	templates map[string]map[domain.Intent]string
	now       func() time.Time
	logger    *zap.Logger
}

// New creates an empty Cache.
func New(logger *zap.Logger) *Cache {
	return NewWithClock(logger, time.Now)
}

// NewWithClock creates a Cache with an injected clock (test-only).
func NewWithClock(logger *zap.Logger, now func() time.Time) *Cache {
	return &Cache{
		entries:   make(map[string]entry),
		templates: make(map[string]map[domain.Intent]string),
		now:       now,
		logger:    logger,
	}
}

// Get returns the cached personalized answer for the user and query, or
// false on a miss. Expired entries are removed on read.
func (c *Cache) Get(tenantID string, user domain.UserContext, intent domain.Intent, query string) (string, bool) {
	key := cacheKey(tenantID, user, intent, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.ContextCacheTotal.WithLabelValues("miss").Inc()
		return "", false
	}
	if c.now().Sub(e.timestamp) >= TTL {
		delete(c.entries, key)
		metrics.ContextCacheTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	metrics.ContextCacheTotal.WithLabelValues("hit").Inc()
	c.logger.Debug("context cache hit",
		zap.String("tenant_id", tenantID), zap.String("intent", string(intent)))
	return e.response, true
}

// Put stores a personalized answer for the user and query.
func (c *Cache) Put(tenantID string, user domain.UserContext, intent domain.Intent, query, response string) {
	key := cacheKey(tenantID, user, intent, query)

	c.mu.Lock()
	c.entries[key] = entry{response: response, timestamp: c.now()}
	c.mu.Unlock()
}

// PersonalizedTemplate returns the stored template for this user and
// intent, if any.
func (c *Cache) PersonalizedTemplate(tenantID string, user domain.UserContext, intent domain.Intent) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	templates, ok := c.templates[userKey(tenantID, user)]
	if !ok {
		return "", false
	}
	tpl, ok := templates[intent]
	return tpl, ok
}

// CachePersonalizedTemplate stores a response template for this user and
// intent.
func (c *Cache) CachePersonalizedTemplate(tenantID string, user domain.UserContext, intent domain.Intent, template string) {
	key := userKey(tenantID, user)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.templates[key] == nil {
		c.templates[key] = make(map[domain.Intent]string)
	}
	c.templates[key][intent] = template
}

// Personalize substitutes user and branding placeholders into a template.
// Missing values leave their placeholders untouched.
func Personalize(template string, user domain.UserContext, branding domain.Branding) string {
	out := template

	if user.Name != "" {
		name := titleCase(user.Name)
		out = strings.ReplaceAll(out, "{name}", name)
		out = strings.ReplaceAll(out, "{user_name}", name)
	}
	if user.City != "" {
		city := titleCase(user.City)
		out = strings.ReplaceAll(out, "{city}", city)
		out = strings.ReplaceAll(out, "{user_city}", city)
	}
	if branding.ContactName != "" {
		out = strings.ReplaceAll(out, "{contact_name}", branding.ContactName)
	}

	return out
}

// ClearTenant drops the tenant's entries and personalized templates.
func (c *Cache) ClearTenant(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if strings.HasPrefix(k, keyPrefix+tenantID+":") {
			delete(c.entries, k)
		}
	}
	for k := range c.templates {
		if strings.HasPrefix(k, tenantID+":") {
			delete(c.templates, k)
		}
	}

	c.logger.Info("context cache cleared", zap.String("tenant_id", tenantID))
}

// Stats reports current cache sizes.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Templates: len(c.templates)}
}

func cacheKey(tenantID string, user domain.UserContext, intent domain.Intent, query string) string {
	sum := sha256.Sum256([]byte(query))
	qhash := hex.EncodeToString(sum[:])[:8]
	return keyPrefix + tenantID + ":" + string(intent.OrGeneral()) + ":" + user.Name + ":" + user.City + ":" + qhash
}

func userKey(tenantID string, user domain.UserContext) string {
	return tenantID + ":" + user.Name + ":" + user.City
}

// titleCase upper-cases the first letter of every word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
