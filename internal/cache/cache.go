// Package cache implements the TTL result cache with two interchangeable
// backends: a shared Redis store and a process-local in-memory map.
//
// The backend is chosen once at startup (Redis ping probe) and injected;
// nothing re-checks availability per call. Backend I/O errors are logged and
// degrade to a cache miss — they never reach the search path.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"jobpulse/search-service/internal/model"
)

// Store is the cache contract shared by both backends.
type Store interface {
	// Get returns the value for key, or ok=false on miss, expiry or error.
	Get(ctx context.Context, key string) (value []byte, ok bool)
	// Set stores value under key for ttl. Errors are swallowed (logged).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Stats reports the entry count and backend name.
	Stats(ctx context.Context) (count int64, backend string)
}

// Key derives the deterministic cache key for one search: an md5 hex digest
// of the category, the normalised query text and the canonical JSON encoding
// of the filter set. md5 is used as a compact non-cryptographic fingerprint.
func Key(category model.Category, query string, filters model.Filters) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	canonical, _ := json.Marshal(filters)

	sum := md5.Sum([]byte(string(category) + ":" + normalized + ":" + string(canonical)))
	return hex.EncodeToString(sum[:])
}
