package directory

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached wraps a Lookup with an in-process TTL cache, the same
// patrickmn/go-cache the teacher uses for its failed-attempt throttle
// (internal/middleware/attempt_limiter.go), applied here to avoid a
// directory round-trip on every handshake signature verification.
type Cached struct {
	inner Lookup
	cache *cache.Cache
}

// NewCached builds a caching directory with the given TTL.
func NewCached(inner Lookup, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: cache.New(ttl, ttl/2)}
}

func (c *Cached) SigningKey(ctx context.Context, userID string) (*rsa.PublicKey, error) {
	if v, ok := c.cache.Get(userID); ok {
		if v == nil {
			return nil, ErrNotFound
		}
		return v.(*rsa.PublicKey), nil
	}

	pub, err := c.inner.SigningKey(ctx, userID)
	if err != nil {
		if err == ErrNotFound {
			c.cache.SetDefault(userID, nil)
		}
		return nil, err
	}
	c.cache.SetDefault(userID, pub)
	return pub, nil
}
