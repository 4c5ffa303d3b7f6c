// Package cache stores routed responses keyed by exact query text so a
// repeated query skips analysis, selection and the provider round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/juyterman1000/smartllm-router/models"
)

// Cache is the response cache consulted before routing and written after a
// successful completion.
type Cache interface {
	// Get returns the cached response for the exact query text, or false
	// when absent or expired.
	Get(ctx context.Context, query string) (*models.RouterResponse, bool, error)

	// Put stores a response under the query text.
	Put(ctx context.Context, query string, resp models.RouterResponse) error
}

// Key returns the cache key for a query: the hex SHA-256 of its exact text.
// No normalization is applied, so queries differing by a single byte cache
// independently.
func Key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// entry is a stored response plus the query text it was stored under. The
// query is kept so a hash collision cannot serve another query's response.
type entry struct {
	Query    string                `json:"query"`
	Response models.RouterResponse `json:"response"`
	StoredAt time.Time             `json:"stored_at"`
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRate returns hits over total lookups, zero when nothing was looked up.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
