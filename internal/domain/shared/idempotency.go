package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed notification keys to prevent duplicate
// remote loads when the provider re-delivers the same event
type IdempotencyStore interface {
	// MarkProcessed marks a notification as processed with a TTL
	// Returns true if the notification was newly marked, false if it was
	// already processed within the TTL window
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a notification has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for duplicate-notification suppression
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed notification keys
	TTL time.Duration

	// Enabled determines whether duplicate suppression is enabled.
	// Disabled by default: the webhook contract counts every decodable
	// event, and suppression only short-circuits the remote reload.
	Enabled bool
}

// DefaultIdempotencyConfig returns the default suppression configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     10 * time.Minute,
		Enabled: false,
	}
}
