package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store is a nil-tolerant JSON cache over Redis. A Store with a nil client
// never hits and never stores.
type Store struct {
	client *redis.Client
}

// NewStore wraps client, which may be nil.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Enabled reports whether a Redis client is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// Invalidate deletes keys, logging rather than failing when Redis errors.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// Aside returns the cached value under key, or calls fetch on a miss and
// stores its result for ttl. Cache read and write errors degrade to fetch.
func Aside[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	family := keyFamily(key)

	var cached T
	found, err := s.GetJSON(ctx, key, &cached)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return cached, nil
	}
	if s.Enabled() {
		observability.CacheLookups.WithLabelValues(family, "miss").Inc()
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if err := s.SetJSON(ctx, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}
