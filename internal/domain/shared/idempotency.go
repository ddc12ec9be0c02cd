package shared

import (
	"context"
	"time"
)

// IdempotencyStore records which events a consumer group has already
// processed. MarkProcessed must be atomic: it returns false when another
// delivery of the same event won the race.
type IdempotencyStore interface {
	// MarkProcessed atomically marks an event as processed.
	// Returns true if this call claimed the event, false if it was
	// already processed (or claimed) by a previous delivery.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event was already processed.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release removes the processed mark so the event can be retried.
	// Used when the handler fails after the mark was claimed.
	Release(ctx context.Context, eventID string) error
}

// IdempotencyConfig controls dedup behavior for a consumer
type IdempotencyConfig struct {
	// TTL is how long processed-event marks are retained. It must be
	// longer than the broker's maximum redelivery window.
	TTL time.Duration

	// KeyPrefix namespaces the marks per consumer group
	KeyPrefix string
}

// DefaultIdempotencyConfig returns sensible defaults
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:       24 * time.Hour,
		KeyPrefix: "idempotency:",
	}
}
