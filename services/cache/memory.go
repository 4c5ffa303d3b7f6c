package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
)

// Memory is an in-process TTL cache. Expired entries are evicted lazily on
// lookup; there is no background sweeper.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	hits    int64
	misses  int64
	logger  *zap.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewMemory creates an in-memory cache with the given TTL.
func NewMemory(ttl time.Duration, logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Get implements Cache. Expiry uses the stored timestamp only; a hit does
// not extend an entry's lifetime.
func (m *Memory) Get(_ context.Context, query string) (*models.RouterResponse, bool, error) {
	key := Key(query)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, false, nil
	}
	if m.now().Sub(e.StoredAt) >= m.ttl {
		delete(m.entries, key)
		m.misses++
		return nil, false, nil
	}
	if e.Query != query {
		// Hash collision with a different query. Treat as a miss.
		m.logger.Warn("cache key collision", zap.String("key", key))
		m.misses++
		return nil, false, nil
	}

	m.hits++
	resp := e.Response
	resp.Cached = true
	return &resp, true, nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, query string, resp models.RouterResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[Key(query)] = entry{
		Query:    query,
		Response: resp,
		StoredAt: m.now(),
	}
	return nil
}

// Stats returns the hit/miss counters.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Hits: m.hits, Misses: m.misses}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
