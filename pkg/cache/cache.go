package cache

import "time"

// Cache stores decoded values keyed by a stable name.
// Callers only cache immutable data, so entries are never invalidated on write.
type Cache interface {
	// Get returns (value, true) when the key is present.
	Get(key string) (any, bool)

	// Set stores a value with a TTL. Zero TTL means no expiry.
	// Returns false when the value was dropped by admission policy.
	Set(key string, value any, ttl time.Duration) bool

	Delete(key string)

	Clear()

	Close()
}
