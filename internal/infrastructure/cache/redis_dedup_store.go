// Package cache implements duplicate suppression for webhook change keys.
// The provider retries webhook deliveries, so the same change key can arrive
// more than once within a short window.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erp/optilog-connector/internal/domain/shared"
)

// RedisDedupStore implements shared.IdempotencyStore using Redis. Suitable
// when several connector instances receive deliveries behind one load
// balancer and must share suppression state.
type RedisDedupStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ shared.IdempotencyStore = (*RedisDedupStore)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDedupStore creates a Redis-backed duplicate suppression store
func NewRedisDedupStore(cfg RedisConfig) (*RedisDedupStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDedupStore{
		client:    client,
		keyPrefix: "optilog:dedup:",
	}, nil
}

// NewRedisDedupStoreWithClient creates a store with an existing Redis
// client, useful for testing or when sharing a client across components
func NewRedisDedupStoreWithClient(client *redis.Client, keyPrefix string) *RedisDedupStore {
	if keyPrefix == "" {
		keyPrefix = "optilog:dedup:"
	}
	return &RedisDedupStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a change key as seen with a TTL. Returns true if the
// key was newly marked, false if it was already present. SETNX keeps the
// check-and-set atomic across instances.
func (s *RedisDedupStore) MarkProcessed(ctx context.Context, changeKey string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+changeKey, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark change as seen: %w", err)
	}
	return result, nil
}

// IsProcessed checks if a change key has already been seen
func (s *RedisDedupStore) IsProcessed(ctx context.Context, changeKey string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+changeKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check change key: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisDedupStore) Close() error {
	return s.client.Close()
}
