// Package replay provides a Redis-backed fast path in front of the
// durable ledger for the per-message nonce canary (§4.3). Handshake
// timestamp freshness is not handled here; the validator checks it
// against its clock. It is an optimization layer only — the
// ledger's sequence-number check (§4.4 item 7) remains the source of
// truth for ordering; this package guards against replaying the same
// wire nonce within its TTL window, grounded on the teacher's
// internal/repository/nonce_store/redis_session.go.
package replay

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// NonceCache deduplicates message nonce canaries for a bounded TTL.
type NonceCache struct {
	cli     *redis.Client
	ttl     time.Duration
	keyPref string
}

// NewNonceCache builds a NonceCache against a Redis instance at addr.
func NewNonceCache(addr string, ttl time.Duration) *NonceCache {
	return &NonceCache{
		cli:     redis.NewClient(&redis.Options{Addr: addr}),
		ttl:     ttl,
		keyPref: "msgnonce:",
	}
}

// Seen reports whether nonce was already observed within the TTL
// window. On a Redis error it fails closed (treats the nonce as seen)
// the same way the teacher's redisSessionNonceStore.Has does.
func (c *NonceCache) Seen(ctx context.Context, nonce []byte) bool {
	key := c.keyPref + hex.EncodeToString(nonce)
	exists, err := c.cli.Exists(ctx, key).Result()
	if err != nil {
		logrus.Errorf("replay.NonceCache.Seen: %v", err)
		return true
	}
	return exists > 0
}

// Remember stores nonce with NX semantics and the cache's TTL.
func (c *NonceCache) Remember(ctx context.Context, nonce []byte) {
	key := c.keyPref + hex.EncodeToString(nonce)
	if err := c.cli.SetNX(ctx, key, "1", c.ttl).Err(); err != nil {
		logrus.Errorf("replay.NonceCache.Remember: %v", err)
	}
}
