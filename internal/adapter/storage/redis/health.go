package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const healthKeyTTL = 30 * time.Second

// HealthCheck implements ports.HealthChecker for Redis. A bare PING passes
// on a read-only replica, but the ledger cannot record idempotency entries
// or rate limit counters there, so the check writes a short-lived key.
type HealthCheck struct {
	client goredis.Cmdable
	key    string
}

// NewHealthCheck creates a Redis health checker that writes under ks.
func NewHealthCheck(client goredis.Cmdable, ks Keyspace) *HealthCheck {
	return &HealthCheck{client: client, key: ks.Key("health")}
}

// Ping sets the health key and reads it back.
func (h *HealthCheck) Ping(ctx context.Context) error {
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := h.client.Set(ctx, h.key, stamp, healthKeyTTL).Err(); err != nil {
		return fmt.Errorf("redis health write: %w", err)
	}
	got, err := h.client.Get(ctx, h.key).Result()
	if err != nil {
		return fmt.Errorf("redis health read: %w", err)
	}
	if got != stamp {
		return fmt.Errorf("redis health read: got %q, wrote %q", got, stamp)
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "redis"
}
