package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
)

// keyPrefix namespaces router entries in a shared Redis.
const keyPrefix = "smartllm:cache:"

// Redis is a shared response cache backed by Redis. Expiry is enforced
// server side via the key TTL, so Get never needs a timestamp check.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis creates a Redis-backed cache. It pings the server so a bad
// address fails at startup rather than on the first request.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, ttl: ttl, logger: logger}, nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, query string) (*models.RouterResponse, bool, error) {
	key := keyPrefix + Key(query)

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// A corrupt entry should not fail the request.
		r.logger.Warn("cache entry is not valid JSON, dropping", zap.String("key", key))
		r.client.Del(ctx, key)
		return nil, false, nil
	}
	if e.Query != query {
		r.logger.Warn("cache key collision", zap.String("key", key))
		return nil, false, nil
	}

	resp := e.Response
	resp.Cached = true
	return &resp, true, nil
}

// Put implements Cache.
func (r *Redis) Put(ctx context.Context, query string, resp models.RouterResponse) error {
	raw, err := json.Marshal(entry{
		Query:    query,
		Response: resp,
		StoredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+Key(query), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
