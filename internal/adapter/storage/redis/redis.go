package redis

import (
	"context"
	"fmt"
	"strings"

	"checked-ledger/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Keyspace is the prefix under which the ledger writes its Redis keys, so
// several ledgers (or environments) can share one Redis database.
type Keyspace string

// DefaultKeyspace is used when redis.key_prefix is empty.
const DefaultKeyspace Keyspace = "ckl:"

// NewKeyspace normalizes prefix into a Keyspace ending in ':'.
func NewKeyspace(prefix string) Keyspace {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return DefaultKeyspace
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return Keyspace(prefix)
}

// Key joins parts with ':' under the keyspace.
func (k Keyspace) Key(parts ...string) string {
	return string(k) + strings.Join(parts, ":")
}

// NewClient connects to the Redis backing the idempotency cache and rate
// limiter, and returns the keyspace those stores must write under.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, Keyspace, error) {
	ks := NewKeyspace(cfg.KeyPrefix)
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, "", fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Str("keyspace", string(ks)).
		Msg("Redis ready for idempotency and rate limiting")

	return client, ks, nil
}
