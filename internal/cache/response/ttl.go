package response

import (
	"time"

	"github.com/voceria-ai/voceria/internal/domain"
)

// NeverCache is the TTL value that suppresses the cache write entirely.
// It is a hard "do not cache" signal, not "cache for zero seconds".
const NeverCache time.Duration = 0

// DefaultTTL applies to intents absent from the policy table.
const DefaultTTL = 10 * time.Minute

// TTLPolicy maps intents to cache lifetimes. Static-information intents
// keep long TTLs; transactional and moderation intents are never cached
// because their answers depend on per-user state.
type TTLPolicy map[domain.Intent]time.Duration

// DefaultTTLPolicy returns the standard per-intent TTL table.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		domain.IntentKnowCandidate:     time.Hour,
		domain.IntentGreetingSupport:   30 * time.Minute,
		domain.IntentVolunteering:      30 * time.Minute,
		domain.IntentCampaignEvent:     15 * time.Minute,
		domain.IntentFunctionalRequest: 10 * time.Minute,
		domain.IntentComplaint:         NeverCache,
		domain.IntentMalicious:         NeverCache,
		domain.IntentHumanHandoff:      NeverCache,
		domain.IntentInternalTeam:      NeverCache,
		domain.IntentRegistration:      NeverCache,
		domain.IntentDataUpdate:        NeverCache,
	}
}

// For returns the TTL for an intent, falling back to DefaultTTL for
// unknown intents. A zero return means never cache.
func (p TTLPolicy) For(intent domain.Intent) time.Duration {
	if ttl, ok := p[intent.OrGeneral()]; ok {
		return ttl
	}
	return DefaultTTL
}
